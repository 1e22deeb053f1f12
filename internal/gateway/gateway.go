// Package gateway runs units of work against cluster brokers over
// transient channels, under a bounded retry policy. A retry re-runs the
// whole select-open-run sequence, so a transient failure against one
// broker may succeed against another.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/millern/kafdrop/internal/cluster"
	"github.com/millern/kafdrop/internal/logger"
)

// AnyBroker lets the gateway pick a broker via its selector.
const AnyBroker = -1

// BrokerSource resolves broker ids against the live broker table.
type BrokerSource interface {
	Brokers() []cluster.Broker
	Broker(id int) (cluster.Broker, bool)
}

// UnitOfWork runs against an open channel. The channel is only valid for
// the duration of the call.
type UnitOfWork func(ch Channel) error

type Gateway struct {
	opts     *Options
	source   BrokerSource
	selector Selector
	opener   ChannelOpener
	slots    chan struct{} // fixed-size concurrency pool
}

func New(source BrokerSource, opts *Options) *Gateway {
	g := &Gateway{
		opts:     opts,
		source:   source,
		selector: opts.Selector,
		opener:   opts.Opener,
		slots:    make(chan struct{}, opts.PoolSize),
	}
	if g.selector == nil {
		g.selector = RandomSelector{}
	}
	if g.opener == nil {
		g.opener = kafkaOpener(opts.ClientID)
	}
	return g
}

// WithBroker resolves a broker (AnyBroker selects one at random), opens a
// channel to it, runs the unit of work and closes the channel, retrying
// the whole sequence per the configured policy.
func (g *Gateway) WithBroker(ctx context.Context, brokerID int, work UnitOfWork) error {
	select {
	case g.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-g.slots }()

	policy := Policy{
		MaxAttempts: g.opts.Retry.MaxAttempts,
		Backoff:     time.Duration(g.opts.Retry.BackoffMillis) * time.Millisecond,
		Retryable:   retryable,
	}
	return policy.Execute(ctx, func() error {
		return g.attempt(ctx, brokerID, work)
	})
}

func (g *Gateway) attempt(ctx context.Context, brokerID int, work UnitOfWork) error {
	broker, err := g.resolve(brokerID)
	if err != nil {
		return err
	}

	ch, err := g.opener(ctx, broker.Host, broker.Port)
	if err != nil {
		logger.Warnf("broker %d channel open failed: %v", broker.ID, err)
		return err
	}
	defer ch.Close()

	return work(ch)
}

func (g *Gateway) resolve(brokerID int) (cluster.Broker, error) {
	if brokerID == AnyBroker {
		broker, ok := g.selector.Select(g.source.Brokers())
		if !ok {
			return cluster.Broker{}, ErrNoBrokersAvailable
		}
		return broker, nil
	}

	broker, ok := g.source.Broker(brokerID)
	if !ok {
		return cluster.Broker{}, fmt.Errorf("broker %d is not available: %w", brokerID, ErrBrokerNotFound)
	}
	return broker, nil
}

// retryable: interruption propagates immediately, broker resolution
// failures are the caller's problem, everything else is worth another
// attempt.
func retryable(err error) bool {
	if errors.Is(err, ErrBrokerNotFound) || errors.Is(err, ErrNoBrokersAvailable) {
		return false
	}
	return DefaultRetryable(err)
}
