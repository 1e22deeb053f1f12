package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/millern/kafdrop/internal/cluster"
	"github.com/millern/kafdrop/internal/monitor"
	"github.com/spf13/cobra"
)

var (
	messagesOffset int64
	messagesCount  int
)

var messagesCmd = &cobra.Command{
	Use:   "messages <topic> <partition>",
	Short: "Fetch records from a partition",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		partition, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("partition must be an integer: %w", err)
		}
		return withMonitor(func(ctx context.Context, m *monitor.Monitor) error {
			tp := cluster.TopicPartition{Topic: args[0], Partition: partition}
			messages, err := m.GetMessages(ctx, tp, messagesOffset, messagesCount, cluster.StringDeserializer{})
			if err != nil {
				return err
			}
			for _, msg := range messages {
				fmt.Printf("%d\t%s\t%s\n", msg.Offset, msg.Key, msg.Value)
			}
			return nil
		})
	},
}

func init() {
	messagesCmd.Flags().Int64Var(&messagesOffset, "offset", 0, "offset to start from")
	messagesCmd.Flags().IntVar(&messagesCount, "count", 10, "max records to fetch")
	rootCmd.AddCommand(messagesCmd)
}
