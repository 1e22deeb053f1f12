package common

import (
	"github.com/millern/kafdrop/pkg/defaults"
)

type InternalOptions struct {
	NameSpace     string   `default:"/kafka"`
	Address       []string `default:"[\"127.0.0.1:2379\"]"`
	DialTimeoutMs int64    `default:"5000"`
	ClientID      string   `default:"kafdrop"`
}

type Options struct {
	Driver   string `default:"etcd"`
	Internal InternalOptions
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

func WithDriver(driver string) Option {
	return func(opts *Options) {
		opts.Driver = driver
	}
}

// Option for InternalOptions.
func WithNameSpace(namespace string) Option {
	return func(opts *Options) {
		opts.Internal.NameSpace = namespace
	}
}

func WithAddress(address []string) Option {
	return func(opts *Options) {
		opts.Internal.Address = address
	}
}

func WithDialTimeoutMs(ms int64) Option {
	return func(opts *Options) {
		opts.Internal.DialTimeoutMs = ms
	}
}

func WithClientID(id string) Option {
	return func(opts *Options) {
		opts.Internal.ClientID = id
	}
}
