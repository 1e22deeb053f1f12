package gateway

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/millern/kafdrop/internal/cluster"
	"github.com/segmentio/kafka-go"
)

const (
	dialTimeout      = 10 * time.Second
	fetchMinBytes    = 1
	fetchMaxBytes    = 10 * 1024 * 1024
	fetchMaxWaitTime = 10 * time.Second
)

// PartitionSize is the live offset range of one partition.
type PartitionSize struct {
	FirstOffset int64
	LastOffset  int64
}

// Channel is a transient RPC channel to one broker. Opened per call,
// closed by the gateway on every exit path, never shared.
type Channel interface {
	// TopicMetadata describes the named topics, or every topic when no
	// name is given.
	TopicMetadata(ctx context.Context, topics ...string) (map[string]*cluster.Topic, error)
	// PartitionSizes reads first/last offsets for each partition of the
	// topic from the partition leaders.
	PartitionSizes(ctx context.Context, topic string) (map[int]PartitionSize, error)
	// Records fetches up to max records starting at offset. The result is
	// ordered and possibly empty, never nil.
	Records(ctx context.Context, tp cluster.TopicPartition, offset int64, max int, d cluster.Deserializer) ([]cluster.Message, error)

	Close() error
}

type ChannelOpener func(ctx context.Context, host string, port int) (Channel, error)

func kafkaOpener(clientID string) ChannelOpener {
	return func(ctx context.Context, host string, port int) (Channel, error) {
		dialer := &kafka.Dialer{
			ClientID:  clientID,
			Timeout:   dialTimeout,
			DualStack: true,
		}
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		return &kafkaChannel{addr: addr, conn: conn, dialer: dialer}, nil
	}
}

type kafkaChannel struct {
	addr   string
	conn   *kafka.Conn
	dialer *kafka.Dialer
}

func (c *kafkaChannel) Close() error {
	return c.conn.Close()
}

func (c *kafkaChannel) TopicMetadata(ctx context.Context, topics ...string) (map[string]*cluster.Topic, error) {
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	}
	partitions, err := c.conn.ReadPartitions(topics...)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*cluster.Topic)
	for _, p := range partitions {
		topic, ok := out[p.Topic]
		if !ok {
			topic = &cluster.Topic{Name: p.Topic}
			out[p.Topic] = topic
		}
		topic.Partitions = append(topic.Partitions, cluster.Partition{
			ID:       p.ID,
			Leader:   p.Leader.ID,
			Replicas: brokerIDs(p.Replicas),
			ISR:      brokerIDs(p.Isr),
		})
	}
	for _, topic := range out {
		topic.SortPartitions()
	}
	return out, nil
}

func (c *kafkaChannel) PartitionSizes(ctx context.Context, topic string) (map[int]PartitionSize, error) {
	partitions, err := c.conn.ReadPartitions(topic)
	if err != nil {
		return nil, err
	}

	sizes := make(map[int]PartitionSize, len(partitions))
	for _, p := range partitions {
		leaderConn, err := c.dialer.DialLeader(ctx, "tcp", c.addr, topic, p.ID)
		if err != nil {
			return nil, err
		}
		first, err := leaderConn.ReadFirstOffset()
		if err != nil {
			leaderConn.Close()
			return nil, err
		}
		last, err := leaderConn.ReadLastOffset()
		leaderConn.Close()
		if err != nil {
			return nil, err
		}
		sizes[p.ID] = PartitionSize{FirstOffset: first, LastOffset: last}
	}
	return sizes, nil
}

func (c *kafkaChannel) Records(ctx context.Context, tp cluster.TopicPartition, offset int64, max int, d cluster.Deserializer) ([]cluster.Message, error) {
	if d == nil {
		d = cluster.StringDeserializer{}
	}

	leaderConn, err := c.dialer.DialLeader(ctx, "tcp", c.addr, tp.Topic, tp.Partition)
	if err != nil {
		return nil, err
	}
	defer leaderConn.Close()

	if _, err := leaderConn.Seek(offset, kafka.SeekAbsolute); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(fetchMaxWaitTime)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	leaderConn.SetDeadline(deadline)

	batch := leaderConn.ReadBatch(fetchMinBytes, fetchMaxBytes)
	defer batch.Close()

	messages := make([]cluster.Message, 0, max)
	for len(messages) < max {
		msg, err := batch.ReadMessage()
		if err != nil {
			// the batch is drained or the deadline hit; what we have is
			// what the caller gets
			break
		}
		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		messages = append(messages, cluster.Message{
			Key:     d.Deserialize(msg.Key),
			Value:   d.Deserialize(msg.Value),
			Headers: headers,
			Offset:  msg.Offset,
			Time:    msg.Time,
		})
	}
	return messages, nil
}

func brokerIDs(brokers []kafka.Broker) []int {
	ids := make([]int, 0, len(brokers))
	for _, b := range brokers {
		ids = append(ids, b.ID)
	}
	return ids
}
