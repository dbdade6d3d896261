package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oryndra/jobradar/internal/review"
	"github.com/oryndra/jobradar/internal/store"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse stored postings interactively (TUI)",
	Long:  "Shows the company picker, then a list of stored postings with their relevance-policy status.",
	RunE:  runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	companies, err := st.ListCompanies(ctx)
	if err != nil {
		return err
	}
	if len(companies) == 0 {
		fmt.Println("No companies in the store. Run `jobradar seed` first.")
		return nil
	}

	policy := setupPolicy(cfg)

	for {
		choice, err := review.RunCompanyPicker(companies)
		if err != nil {
			return err
		}
		if choice < 0 {
			return nil
		}

		var companyID int64 // 0 = all companies
		if choice < len(companies) {
			companyID = companies[choice].ID
		}

		jobs, err := st.ListJobs(ctx, companyID, 0)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Println("No stored postings yet for that selection.")
			continue
		}

		if err := review.Run(jobs, policy); err != nil {
			return err
		}
	}
}
