package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/oryndra/jobradar/internal/alert"
	"github.com/oryndra/jobradar/internal/config"
	"github.com/oryndra/jobradar/internal/pipeline"
	"github.com/oryndra/jobradar/internal/reconcile"
	"github.com/oryndra/jobradar/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ingestion batch",
	Long: "Ingest every active company's board, reconcile against the store, and " +
		"send the alert email if new postings match the relevance policy. " +
		"Exits non-zero when any company's ingestion failed.",
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	// Scheduled runs may overlap when a batch overruns the cadence; the
	// lock makes the late run a no-op instead of a concurrent writer.
	lock := flock.New(cfg.LockFile)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another run holds %s", cfg.LockFile)
	}
	defer lock.Unlock()

	st, err := store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	policy := setupPolicy(cfg)
	mailer := setupMailer(cfg, logger)

	var outbox alert.Outbox
	if cfg.Alert.Delivery == config.DeliveryAtLeastOnce {
		outbox = st
	}
	dispatcher := alert.New(policy, mailer, outbox, logger)

	runner := pipeline.NewRunner(
		st,
		setupClient(cfg),
		reconcile.New(st, logger),
		dispatcher,
		cfg.Workers,
		cfg.CompanyTimeout,
		cfg.StaleAfter,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	for _, s := range report.Summaries {
		if s.Err != nil {
			logger.Error("company failed", "company", s.Company, "error", s.Err)
		}
	}

	if failed := report.FailedCompanies(); failed > 0 {
		// Partial failure: the scheduler's monitoring should see it.
		fmt.Fprintf(os.Stderr, "run finished with %d failed companies\n", failed)
		os.Exit(1)
	}
	if report.AlertErr != nil {
		return report.AlertErr
	}
	return nil
}
