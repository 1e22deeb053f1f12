package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/millern/kafdrop/internal/cluster"
)

type fakeSource struct {
	brokers []cluster.Broker
}

func (s *fakeSource) Brokers() []cluster.Broker { return s.brokers }

func (s *fakeSource) Broker(id int) (cluster.Broker, bool) {
	return cluster.FindBroker(s.brokers, id)
}

type fakeChannel struct {
	closed int
}

func (c *fakeChannel) TopicMetadata(context.Context, ...string) (map[string]*cluster.Topic, error) {
	return nil, nil
}

func (c *fakeChannel) PartitionSizes(context.Context, string) (map[int]PartitionSize, error) {
	return nil, nil
}

func (c *fakeChannel) Records(context.Context, cluster.TopicPartition, int64, int, cluster.Deserializer) ([]cluster.Message, error) {
	return nil, nil
}

func (c *fakeChannel) Close() error {
	c.closed++
	return nil
}

func newTestGateway(source BrokerSource, opener ChannelOpener) *Gateway {
	return New(source, NewOptions(
		WithBackoffMillis(1),
		WithOpener(opener),
	))
}

func TestWithBrokerRetriesThenSucceeds(t *testing.T) {
	source := &fakeSource{brokers: []cluster.Broker{{ID: 1, Host: "a", Port: 9092}}}
	var channels []*fakeChannel
	gw := newTestGateway(source, func(ctx context.Context, host string, port int) (Channel, error) {
		ch := &fakeChannel{}
		channels = append(channels, ch)
		return ch, nil
	})

	attempts := 0
	err := gw.WithBroker(context.Background(), AnyBroker, func(ch Channel) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	for i, ch := range channels {
		if ch.closed != 1 {
			t.Errorf("channel %d closed %d times, want 1", i, ch.closed)
		}
	}
}

func TestWithBrokerExhaustsAttempts(t *testing.T) {
	source := &fakeSource{brokers: []cluster.Broker{{ID: 1}}}
	gw := newTestGateway(source, func(ctx context.Context, host string, port int) (Channel, error) {
		return &fakeChannel{}, nil
	})

	attempts := 0
	boom := errors.New("boom")
	err := gw.WithBroker(context.Background(), AnyBroker, func(ch Channel) error {
		attempts++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected last failure surfaced, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithBrokerInterruptionNotRetried(t *testing.T) {
	source := &fakeSource{brokers: []cluster.Broker{{ID: 1}}}
	gw := newTestGateway(source, func(ctx context.Context, host string, port int) (Channel, error) {
		return &fakeChannel{}, nil
	})

	attempts := 0
	err := gw.WithBroker(context.Background(), AnyBroker, func(ch Channel) error {
		attempts++
		return context.Canceled
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation surfaced, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want exactly 1", attempts)
	}
}

func TestWithBrokerNoBrokersAvailable(t *testing.T) {
	gw := newTestGateway(&fakeSource{}, func(ctx context.Context, host string, port int) (Channel, error) {
		t.Fatal("opened a channel with no broker selected")
		return nil, nil
	})

	err := gw.WithBroker(context.Background(), AnyBroker, func(ch Channel) error { return nil })
	if !errors.Is(err, ErrNoBrokersAvailable) {
		t.Fatalf("expected ErrNoBrokersAvailable, got %v", err)
	}
}

func TestWithBrokerExplicitIDNotFound(t *testing.T) {
	source := &fakeSource{brokers: []cluster.Broker{{ID: 1}}}
	opens := 0
	gw := newTestGateway(source, func(ctx context.Context, host string, port int) (Channel, error) {
		opens++
		return &fakeChannel{}, nil
	})

	err := gw.WithBroker(context.Background(), 7, func(ch Channel) error { return nil })
	if !errors.Is(err, ErrBrokerNotFound) {
		t.Fatalf("expected ErrBrokerNotFound, got %v", err)
	}
	if opens != 0 {
		t.Errorf("opened %d channels for an unresolvable id, want 0", opens)
	}
}

func TestWithBrokerChannelClosedOnWorkError(t *testing.T) {
	source := &fakeSource{brokers: []cluster.Broker{{ID: 1}}}
	ch := &fakeChannel{}
	gw := New(source, NewOptions(
		WithBackoffMillis(1),
		WithMaxAttempts(1),
		WithOpener(func(ctx context.Context, host string, port int) (Channel, error) {
			return ch, nil
		}),
	))

	err := gw.WithBroker(context.Background(), 1, func(Channel) error {
		return errors.New("business failure")
	})
	if err == nil {
		t.Fatal("expected the work error surfaced")
	}
	if ch.closed != 1 {
		t.Errorf("channel closed %d times, want 1", ch.closed)
	}
}

func TestRandomSelectorCoversTable(t *testing.T) {
	brokers := []cluster.Broker{{ID: 1}, {ID: 2}, {ID: 3}}
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		b, ok := RandomSelector{}.Select(brokers)
		if !ok {
			t.Fatal("selection failed on a non-empty table")
		}
		seen[b.ID] = true
	}
	if len(seen) != len(brokers) {
		t.Errorf("200 selections hit %d of %d brokers", len(seen), len(brokers))
	}
	if _, ok := (RandomSelector{}).Select(nil); ok {
		t.Error("selected a broker from an empty table")
	}
}
