package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	csvadapter "github.com/iho/payengine/internal/adapter/csv"
	"github.com/iho/payengine/internal/domain"
	"github.com/iho/payengine/internal/engine"
	"github.com/iho/payengine/internal/infrastructure/config"
	"github.com/iho/payengine/internal/infrastructure/logger"
	"github.com/iho/payengine/internal/infrastructure/metrics"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "payengine",
		Short: "Payengine ledger event processor",
		Long: `Applies a stream of ledger events (deposits, withdrawals, disputes,
resolves, chargebacks) to per-client accounts and prints the final
account states as CSV.`,
	}

	processCmd := &cobra.Command{
		Use:          "process <transactions.csv>",
		Short:        "Process a transactions file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.Context(), args[0], os.Stdout)
		},
	}

	rootCmd.AddCommand(processCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runProcess(ctx context.Context, path string, dst io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	m := metrics.New(prometheus.NewRegistry())

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open transactions file: %w", err)
	}
	defer file.Close()

	start := time.Now()

	entries := make(chan domain.Entry, cfg.WorkerQueueSize)
	dispatcher := engine.NewDispatcher(entries, engine.Options{
		Workers:   cfg.WorkerCount,
		QueueSize: cfg.WorkerQueueSize,
		Logger:    log,
		Metrics:   m,
	})

	// Stream closes the entries channel on return, which is what tells
	// the pool the input is exhausted.
	if err := csvadapter.NewReader(log, m).Stream(ctx, file, entries); err != nil {
		return fmt.Errorf("read transactions: %w", err)
	}

	accounts, err := dispatcher.CollectResults(ctx)
	if err != nil {
		return fmt.Errorf("process transactions: %w", err)
	}

	if err := csvadapter.NewWriter().Write(dst, accounts); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	locked := 0
	for _, acc := range accounts {
		if acc.Locked {
			locked++
		}
	}

	log.Info().
		Int("accounts", len(accounts)).
		Int("locked", locked).
		Dur("elapsed", time.Since(start)).
		Msg("processing complete")

	return nil
}
