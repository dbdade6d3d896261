package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oryndra/jobradar/internal/alert"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a test alert email",
	Long:  "Sends a canned posting through the configured mailer to verify the SMTP integration.",
	RunE:  runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	mailer := setupMailer(cfg, logger)
	if err := alert.SendTestAlert(context.Background(), mailer); err != nil {
		return err
	}
	logger.Info("test alert sent", "to", cfg.Alert.SMTP.To)
	return nil
}
