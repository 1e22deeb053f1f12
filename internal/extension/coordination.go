package extension

import (
	"fmt"

	coordination "github.com/millern/kafdrop/internal/coordination/common"
)

type CoordinatorFactory = func(coordination.InternalOptions) (coordination.Coordinator, error)

var coordinators = make(map[string]CoordinatorFactory)

func SetCoordinator(driver string, factory CoordinatorFactory) {
	coordinators[driver] = factory
}

func GetCoordinator(driver string, options coordination.InternalOptions) (coordination.Coordinator, error) {
	if coordinators[driver] != nil {
		return coordinators[driver](options)
	}
	return nil, fmt.Errorf("coordinator for %s does not exist", driver)
}
