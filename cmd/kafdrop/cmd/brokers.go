package cmd

import (
	"context"
	"fmt"

	"github.com/millern/kafdrop/internal/monitor"
	"github.com/spf13/cobra"
)

var brokersCmd = &cobra.Command{
	Use:   "brokers",
	Short: "List the cluster's brokers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMonitor(func(ctx context.Context, m *monitor.Monitor) error {
			brokers, err := m.GetBrokers()
			if err != nil {
				return err
			}
			for _, b := range brokers {
				marker := ""
				if b.Controller {
					marker = " (controller)"
				}
				fmt.Printf("%d\t%s:%d%s\n", b.ID, b.Host, b.Port, marker)
			}
			return nil
		})
	},
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List registered consumer groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMonitor(func(ctx context.Context, m *monitor.Monitor) error {
			groups, err := m.GetConsumerGroups()
			if err != nil {
				return err
			}
			for _, g := range groups {
				fmt.Printf("%s\t%d members\n", g.Name, len(g.Members))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(brokersCmd)
	rootCmd.AddCommand(groupsCmd)
}
