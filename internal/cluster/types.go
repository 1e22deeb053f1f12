// Package cluster holds the read-side views of cluster metadata: brokers,
// topics, partitions and the aggregate summary. Broker references inside
// partitions are weak — ids looked up against the current broker table,
// never ownership edges — so a stale replica assignment resolves to
// nothing instead of failing.
package cluster

import (
	"sort"
	"time"
)

// NoLeader marks a partition without an elected leader.
const NoLeader = -1

type Broker struct {
	ID         int
	Host       string
	Port       int
	Controller bool
}

type Topic struct {
	Name       string
	Partitions []Partition // ordered by ascending id
	Config     map[string]string
}

type Partition struct {
	ID       int
	Leader   int   // broker id, NoLeader when none
	Replicas []int // assignment order; Replicas[0] is the preferred leader
	ISR      []int

	FirstOffset int64
	Size        int64 // offset past the last record
}

// TopicPartition names one partition of one topic.
type TopicPartition struct {
	Topic     string
	Partition int
}

type Message struct {
	Key     string
	Value   string
	Headers map[string]string
	Offset  int64
	Time    time.Time
}

// ConsumerGroup is a consumer group registration from the coordination
// tree: the group name and its currently registered member ids.
type ConsumerGroup struct {
	Name    string
	Members []string
}

// Deserializer turns a raw record key or value into a displayable string.
type Deserializer interface {
	Deserialize([]byte) string
}

type StringDeserializer struct{}

func (StringDeserializer) Deserialize(data []byte) string { return string(data) }

func (p Partition) HasLeader() bool { return p.Leader != NoLeader }

// PreferredLeader reports the first assigned replica, false when the
// assignment is empty.
func (p Partition) PreferredLeader() (int, bool) {
	if len(p.Replicas) == 0 {
		return NoLeader, false
	}
	return p.Replicas[0], true
}

// LeaderPreferred reports whether the current leader is the preferred one.
func (p Partition) LeaderPreferred() bool {
	preferred, ok := p.PreferredLeader()
	return ok && p.HasLeader() && p.Leader == preferred
}

// UnderReplicated reports whether the in-sync set is smaller than the
// assignment.
func (p Partition) UnderReplicated() bool {
	return len(p.ISR) < len(p.Replicas)
}

// Records reports how many records the partition currently holds.
func (p Partition) Records() int64 { return p.Size - p.FirstOffset }

func (t *Topic) UnderReplicatedCount() int {
	n := 0
	for _, p := range t.Partitions {
		if p.UnderReplicated() {
			n++
		}
	}
	return n
}

// PreferredReplicaPercent is the share (0-100) of partitions led by their
// preferred replica. A topic without partitions reports 100.
func (t *Topic) PreferredReplicaPercent() float64 {
	if len(t.Partitions) == 0 {
		return 100
	}
	preferred := 0
	for _, p := range t.Partitions {
		if p.LeaderPreferred() {
			preferred++
		}
	}
	return float64(preferred) / float64(len(t.Partitions)) * 100
}

// SortPartitions orders a topic's partitions by ascending id in place.
func (t *Topic) SortPartitions() {
	sort.Slice(t.Partitions, func(i, j int) bool {
		return t.Partitions[i].ID < t.Partitions[j].ID
	})
}

// FindBroker resolves a weak broker reference against a broker list.
func FindBroker(brokers []Broker, id int) (Broker, bool) {
	for _, b := range brokers {
		if b.ID == id {
			return b, true
		}
	}
	return Broker{}, false
}
