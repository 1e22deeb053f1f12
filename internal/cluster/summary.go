package cluster

// ClusterSummary is the whole-cluster rollup of a set of topic views.
// Computed per request, owned by the caller.
type ClusterSummary struct {
	TopicCount              int
	PartitionCount          int
	UnderReplicatedCount    int
	PreferredReplicaPercent float64

	// per broker id: partitions it currently leads / should lead
	BrokerLeaderPartitions          map[int]int
	BrokerPreferredLeaderPartitions map[int]int
	// every broker id referenced by any replica assignment
	ExpectedBrokerIDs map[int]struct{}
}

func newClusterSummary() *ClusterSummary {
	return &ClusterSummary{
		BrokerLeaderPartitions:          make(map[int]int),
		BrokerPreferredLeaderPartitions: make(map[int]int),
		ExpectedBrokerIDs:               make(map[int]struct{}),
	}
}

// Summarize reduces topic views into one summary. Order independent; the
// empty input yields the zero summary rather than a division by zero.
func Summarize(topics []*Topic) *ClusterSummary {
	summary := newClusterSummary()
	if len(topics) == 0 {
		return summary
	}

	percentSum := 0.0
	for _, topic := range topics {
		summary.PartitionCount += len(topic.Partitions)
		summary.UnderReplicatedCount += topic.UnderReplicatedCount()
		percentSum += topic.PreferredReplicaPercent()

		for _, p := range topic.Partitions {
			if p.HasLeader() {
				summary.BrokerLeaderPartitions[p.Leader]++
			}
			if preferred, ok := p.PreferredLeader(); ok {
				summary.BrokerPreferredLeaderPartitions[preferred]++
			}
			for _, replica := range p.Replicas {
				summary.ExpectedBrokerIDs[replica] = struct{}{}
			}
		}
	}

	summary.TopicCount = len(topics)
	summary.PreferredReplicaPercent = percentSum / float64(len(topics))
	return summary
}
