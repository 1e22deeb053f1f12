package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/millern/kafdrop/internal/coordination"
	coordcommon "github.com/millern/kafdrop/internal/coordination/common"
	"github.com/millern/kafdrop/internal/gateway"
	"github.com/millern/kafdrop/internal/logger"
	"github.com/millern/kafdrop/internal/monitor"
	"github.com/spf13/cobra"
)

var (
	endpoints      []string
	namespace      string
	clientID       string
	poolSize       int
	retryAttempts  int
	retryBackoffMs int64
	readyTimeout   time.Duration
	logLevel       string
)

var rootCmd = &cobra.Command{
	Use:   "kafdrop",
	Short: "Inspect a Kafka cluster through its coordination metadata",
	Long: `kafdrop mirrors the cluster's coordination metadata (brokers, topics,
controller, consumer groups) from etcd and fetches live per-partition
facts from the brokers themselves.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetLevel(logLevel)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSliceVar(&endpoints, "endpoints", []string{"127.0.0.1:2379"}, "coordination service endpoints")
	flags.StringVar(&namespace, "namespace", "/kafka", "coordination namespace holding the cluster tree")
	flags.StringVar(&clientID, "client-id", "kafdrop", "client identifier sent to brokers")
	flags.IntVar(&poolSize, "pool-size", 10, "max concurrent broker calls")
	flags.IntVar(&retryAttempts, "retry-attempts", 3, "max attempts per broker call")
	flags.Int64Var(&retryBackoffMs, "retry-backoff-ms", 1000, "fixed backoff between attempts")
	flags.DurationVar(&readyTimeout, "ready-timeout", 30*time.Second, "how long to wait for the mirror to prime")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// withMonitor wires a coordinator and a primed monitor, runs fn, and
// tears everything down.
func withMonitor(fn func(ctx context.Context, m *monitor.Monitor) error) error {
	coord, err := coordination.NewCoordinator(coordcommon.NewOptions(
		coordcommon.WithAddress(endpoints),
		coordcommon.WithNameSpace(namespace),
		coordcommon.WithClientID(clientID),
	))
	if err != nil {
		return err
	}
	defer coord.Close()

	m := monitor.New(coord, monitor.NewOptions(monitor.WithGateway(
		gateway.WithClientID(clientID),
		gateway.WithPoolSize(poolSize),
		gateway.WithMaxAttempts(retryAttempts),
		gateway.WithBackoffMillis(retryBackoffMs),
	)))
	if err := m.Start(); err != nil {
		return err
	}
	defer m.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()
	if err := m.WaitReady(ctx); err != nil {
		return fmt.Errorf("cluster not ready: %w", err)
	}
	return fn(ctx, m)
}
