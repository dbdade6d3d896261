package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oryndra/jobradar/internal/discover"
	"github.com/oryndra/jobradar/internal/store"
)

var discoverLimit int

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover ATS boards for seeded companies",
	Long:  "Crawl company websites looking for a known ATS board URL and record the result on each company.",
	RunE:  runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 50, "max companies to process in one pass")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := discover.New(setupClient(cfg), logger)
	return d.Run(ctx, st, discoverLimit)
}
