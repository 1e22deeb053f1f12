package coordination

import (
	"github.com/millern/kafdrop/internal/coordination/common"
	_ "github.com/millern/kafdrop/internal/coordination/etcd"
	_ "github.com/millern/kafdrop/internal/coordination/memory"
	"github.com/millern/kafdrop/internal/extension"
)

func NewCoordinator(opts *common.Options) (common.Coordinator, error) {
	return extension.GetCoordinator(opts.Driver, opts.Internal)
}
