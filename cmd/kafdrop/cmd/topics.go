package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/millern/kafdrop/internal/monitor"
	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List topics with partition and replication detail",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMonitor(func(ctx context.Context, m *monitor.Monitor) error {
			topics, err := m.GetTopics(ctx)
			if err != nil {
				return err
			}
			for _, t := range topics {
				fmt.Printf("%s\t%d partitions\t%d under-replicated\t%.0f%% preferred\n",
					t.Name, len(t.Partitions), t.UnderReplicatedCount(), t.PreferredReplicaPercent())
			}
			return nil
		})
	},
}

var topicCmd = &cobra.Command{
	Use:   "topic <name>",
	Short: "Show one topic's partitions, offsets and config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMonitor(func(ctx context.Context, m *monitor.Monitor) error {
			topic, err := m.GetTopic(ctx, args[0])
			if err != nil {
				return err
			}
			for _, p := range topic.Partitions {
				fmt.Printf("partition %d\tleader %d\treplicas %v\tisr %v\toffsets %d-%d\n",
					p.ID, p.Leader, p.Replicas, p.ISR, p.FirstOffset, p.Size)
			}
			keys := make([]string, 0, len(topic.Config))
			for k := range topic.Config {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("config %s=%s\n", k, topic.Config[k])
			}
			return nil
		})
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the cluster-wide rollup",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMonitor(func(ctx context.Context, m *monitor.Monitor) error {
			topics, err := m.GetTopics(ctx)
			if err != nil {
				return err
			}
			summary, err := m.GetClusterSummary(topics)
			if err != nil {
				return err
			}
			fmt.Printf("topics: %d\n", summary.TopicCount)
			fmt.Printf("partitions: %d\n", summary.PartitionCount)
			fmt.Printf("under-replicated: %d\n", summary.UnderReplicatedCount)
			fmt.Printf("preferred replica: %.1f%%\n", summary.PreferredReplicaPercent)
			ids := make([]int, 0, len(summary.BrokerLeaderPartitions))
			for id := range summary.BrokerLeaderPartitions {
				ids = append(ids, id)
			}
			sort.Ints(ids)
			for _, id := range ids {
				fmt.Printf("broker %d: leads %d, preferred for %d\n",
					id, summary.BrokerLeaderPartitions[id], summary.BrokerPreferredLeaderPartitions[id])
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(topicCmd)
	rootCmd.AddCommand(summaryCmd)
}
