package monitor

import (
	"github.com/millern/kafdrop/internal/gateway"
	"github.com/millern/kafdrop/pkg/defaults"
)

type Options struct {
	GatewayOpts *gateway.Options `default:"-"`
	Codec       Codec            `default:"-"`
}

func defaultOptions() *Options {
	options := &Options{}
	defaults.MustSet(options)

	options.GatewayOpts = gateway.NewOptions()
	options.Codec = JSONCodec{}
	return options
}

func NewOptions(opts ...Option) *Options {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return options
}

type Option func(*Options)

func WithGateway(opts ...gateway.Option) Option {
	return func(o *Options) {
		o.GatewayOpts = gateway.NewOptions(opts...)
	}
}

func WithCodec(codec Codec) Option {
	return func(o *Options) {
		o.Codec = codec
	}
}
