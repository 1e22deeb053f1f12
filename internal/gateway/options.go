package gateway

import (
	"github.com/millern/kafdrop/pkg/defaults"
)

type RetryOptions struct {
	MaxAttempts   int   `default:"3"`
	BackoffMillis int64 `default:"1000"`
}

type Options struct {
	ClientID string `default:"kafdrop"`
	PoolSize int    `default:"10"`
	Retry    RetryOptions

	Selector Selector      `default:"-"`
	Opener   ChannelOpener `default:"-"`
}

func defaultOptions() *Options {
	opts := &Options{}
	defaults.MustSet(opts)
	return opts
}

func NewOptions(opts ...Option) *Options {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return options
}

type Option func(*Options)

func WithClientID(id string) Option {
	return func(o *Options) {
		o.ClientID = id
	}
}

func WithPoolSize(size int) Option {
	return func(o *Options) {
		o.PoolSize = size
	}
}

func WithMaxAttempts(n int) Option {
	return func(o *Options) {
		o.Retry.MaxAttempts = n
	}
}

func WithBackoffMillis(ms int64) Option {
	return func(o *Options) {
		o.Retry.BackoffMillis = ms
	}
}

func WithSelector(s Selector) Option {
	return func(o *Options) {
		o.Selector = s
	}
}

func WithOpener(open ChannelOpener) Option {
	return func(o *Options) {
		o.Opener = open
	}
}
