package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oryndra/jobradar/internal/adapter"
	"github.com/oryndra/jobradar/internal/alert"
	"github.com/oryndra/jobradar/internal/config"
	"github.com/oryndra/jobradar/internal/filter"
	"github.com/oryndra/jobradar/internal/model"
	"github.com/oryndra/jobradar/internal/ratelimit"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobradar",
	Short: "Track new job postings across company ATS boards",
	Long:  "JobRadar ingests ASX-company job boards, detects newly appeared postings, and emails an alert when a posting matches the relevance policy.",
	// Default to `run` so a bare `jobradar` under cron does one batch run.
	RunE:          runRun,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBRADAR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit flag > JOBRADAR_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBRADAR_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupClient(cfg *config.Config) *adapter.Client {
	limiter := ratelimit.NewHostLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	return adapter.NewClient(&http.Client{Timeout: 30 * time.Second}, limiter)
}

func setupPolicy(cfg *config.Config) *filter.Policy {
	return filter.NewPolicy(cfg.Policy.TitleKeywords, cfg.Policy.Locations, cfg.Policy.Departments)
}

func setupMailer(cfg *config.Config, logger *slog.Logger) model.Mailer {
	if cfg.Alert.SMTP.Host == "" {
		logger.Info("no SMTP host configured, using log mailer")
		return alert.NewLogMailer(logger)
	}
	return alert.NewSMTPMailer(cfg.Alert.SMTP)
}
