package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/millern/kafdrop/internal/cluster"
	coordination "github.com/millern/kafdrop/internal/coordination/common"
	"github.com/millern/kafdrop/internal/gateway"
)

// stubChannel serves canned metadata so the whole read path, mirror →
// gateway → channel, runs without a broker.
type stubChannel struct {
	topics   map[string]*cluster.Topic
	sizes    map[string]map[int]gateway.PartitionSize
	messages []cluster.Message
	closed   *int
}

func (c *stubChannel) TopicMetadata(_ context.Context, names ...string) (map[string]*cluster.Topic, error) {
	if len(names) == 0 {
		out := make(map[string]*cluster.Topic, len(c.topics))
		for name, topic := range c.topics {
			out[name] = copyTopic(topic)
		}
		return out, nil
	}
	out := make(map[string]*cluster.Topic)
	for _, name := range names {
		if topic, ok := c.topics[name]; ok {
			out[name] = copyTopic(topic)
		}
	}
	return out, nil
}

func (c *stubChannel) PartitionSizes(_ context.Context, topic string) (map[int]gateway.PartitionSize, error) {
	return c.sizes[topic], nil
}

func (c *stubChannel) Records(_ context.Context, tp cluster.TopicPartition, offset int64, max int, d cluster.Deserializer) ([]cluster.Message, error) {
	if max > len(c.messages) {
		max = len(c.messages)
	}
	return c.messages[:max], nil
}

func (c *stubChannel) Close() error {
	if c.closed != nil {
		*c.closed++
	}
	return nil
}

func copyTopic(t *cluster.Topic) *cluster.Topic {
	out := &cluster.Topic{Name: t.Name}
	out.Partitions = append(out.Partitions, t.Partitions...)
	return out
}

func newTopicFixture() *stubChannel {
	return &stubChannel{
		topics: map[string]*cluster.Topic{
			"orders": {Name: "orders", Partitions: []cluster.Partition{
				{ID: 0, Leader: 1, Replicas: []int{1, 2}, ISR: []int{1, 2}},
				{ID: 1, Leader: 2, Replicas: []int{2, 1}, ISR: []int{2}},
			}},
			"audit": {Name: "audit", Partitions: []cluster.Partition{
				{ID: 0, Leader: 1, Replicas: []int{1}, ISR: []int{1}},
			}},
		},
		sizes: map[string]map[int]gateway.PartitionSize{
			"orders": {
				0: {FirstOffset: 5, LastOffset: 42},
				1: {FirstOffset: 0, LastOffset: 7},
			},
			"audit": {0: {FirstOffset: 0, LastOffset: 3}},
		},
	}
}

func newTopicMonitor(t *testing.T, ch *stubChannel) (*Monitor, *stubCoordinator) {
	t.Helper()
	m, coord := newTestMonitor(t, WithGateway(
		gateway.WithBackoffMillis(1),
		gateway.WithOpener(func(ctx context.Context, host string, port int) (gateway.Channel, error) {
			return ch, nil
		}),
	))
	coord.syncAll()
	addBroker(coord, 1, "kafka-1", 9092)
	return m, coord
}

func TestGetTopics(t *testing.T) {
	closed := 0
	ch := newTopicFixture()
	ch.closed = &closed
	m, coord := newTopicMonitor(t, ch)

	coord.fire(TopicConfigPath, &coordination.Event{
		Type: coordination.NodeAdded,
		Nodes: []coordination.Node{{
			Path: TopicConfigPath + "/orders",
			Data: []byte(`{"version":1,"config":{"retention.ms":"86400000"}}`),
		}},
	})

	topics, err := m.GetTopics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 2 {
		t.Fatalf("topics = %+v", topics)
	}
	if topics[0].Name != "audit" || topics[1].Name != "orders" {
		t.Errorf("not sorted by name: %s, %s", topics[0].Name, topics[1].Name)
	}

	orders := topics[1]
	if orders.Partitions[0].FirstOffset != 5 || orders.Partitions[0].Size != 42 {
		t.Errorf("sizes not attached: %+v", orders.Partitions[0])
	}
	if orders.Partitions[0].Records() != 37 {
		t.Errorf("records = %d, want 37", orders.Partitions[0].Records())
	}
	if orders.Config["retention.ms"] != "86400000" {
		t.Errorf("config overrides not merged: %+v", orders.Config)
	}
	if orders.UnderReplicatedCount() != 1 {
		t.Errorf("under-replicated = %d, want 1", orders.UnderReplicatedCount())
	}
	if closed == 0 {
		t.Error("channel never released")
	}
}

func TestGetTopicNotFound(t *testing.T) {
	m, _ := newTopicMonitor(t, newTopicFixture())

	if _, err := m.GetTopic(context.Background(), "nope"); !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("expected ErrTopicNotFound, got %v", err)
	}

	topic, err := m.GetTopic(context.Background(), "orders")
	if err != nil {
		t.Fatal(err)
	}
	if topic.Name != "orders" || len(topic.Partitions) != 2 {
		t.Errorf("topic = %+v", topic)
	}
}

func TestGetTopicsNotReady(t *testing.T) {
	m, _ := newTestMonitor(t, WithGateway(
		gateway.WithOpener(func(ctx context.Context, host string, port int) (gateway.Channel, error) {
			t.Fatal("gateway reached before the barrier cleared")
			return nil, nil
		}),
	))

	if _, err := m.GetTopics(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if _, err := m.GetMessages(context.Background(), cluster.TopicPartition{Topic: "t"}, 0, 10, nil); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestGetMessages(t *testing.T) {
	ch := newTopicFixture()
	ch.messages = []cluster.Message{
		{Key: "k1", Value: "v1", Offset: 10},
		{Key: "k2", Value: "v2", Offset: 11},
		{Key: "k3", Value: "v3", Offset: 12},
	}
	m, _ := newTopicMonitor(t, ch)

	messages, err := m.GetMessages(context.Background(), cluster.TopicPartition{Topic: "orders", Partition: 0}, 10, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 2 || messages[0].Key != "k1" || messages[1].Offset != 11 {
		t.Errorf("messages = %+v", messages)
	}

	// empty fetch is an empty slice, never nil
	ch.messages = nil
	messages, err = m.GetMessages(context.Background(), cluster.TopicPartition{Topic: "orders", Partition: 0}, 0, 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if messages == nil {
		t.Fatal("expected an empty slice, got nil")
	}
}

func TestGetTopicsNoBrokers(t *testing.T) {
	m, coord := newTestMonitor(t, WithGateway(
		gateway.WithBackoffMillis(1),
		gateway.WithOpener(func(ctx context.Context, host string, port int) (gateway.Channel, error) {
			return newTopicFixture(), nil
		}),
	))
	coord.syncAll()

	if _, err := m.GetTopics(context.Background()); !errors.Is(err, gateway.ErrNoBrokersAvailable) {
		t.Fatalf("expected ErrNoBrokersAvailable, got %v", err)
	}
}
