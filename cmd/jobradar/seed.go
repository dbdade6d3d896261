package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oryndra/jobradar/internal/seed"
	"github.com/oryndra/jobradar/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed <holdings.csv>",
	Short: "Seed companies from an index-holdings CSV",
	Long: "Parse an iShares PCF holdings file and upsert one company per ticker. " +
		"Rerunnable: existing companies keep their discovered ATS details.",
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	holdings, err := seed.LoadFile(args[0])
	if err != nil {
		return err
	}
	logger.Info("parsed holdings", "companies", len(holdings))
	if len(holdings) == 0 {
		return fmt.Errorf("no companies parsed from %s", args[0])
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	withWebsite := 0
	for _, c := range seed.Companies(holdings) {
		if err := st.UpsertCompany(ctx, c); err != nil {
			return err
		}
		if c.WebsiteURL != "" {
			withWebsite++
		}
	}

	logger.Info("companies seeded", "total", len(holdings), "with_website", withWebsite)
	return nil
}
