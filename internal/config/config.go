package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Delivery semantics for alert email.
const (
	DeliveryAtMostOnce  = "at_most_once"  // fire and forget; a failed send is logged and lost
	DeliveryAtLeastOnce = "at_least_once" // outbox-backed; a failed send is retried next run
)

// Config is the root configuration for the JobRadar pipeline.
type Config struct {
	Database       string
	LockFile       string
	Workers        int
	CompanyTimeout time.Duration
	StaleAfter     time.Duration
	Policy         PolicyConfig
	Alert          AlertConfig
	RateLimit      RateLimitConfig
}

// PolicyConfig enumerates the relevance rules. Categories combine with AND;
// keywords inside a category combine with OR. An empty category matches all.
type PolicyConfig struct {
	TitleKeywords []string `yaml:"title_keywords"`
	Locations     []string `yaml:"locations"`
	Departments   []string `yaml:"departments"`
}

func (p PolicyConfig) empty() bool {
	return len(p.TitleKeywords) == 0 && len(p.Locations) == 0 && len(p.Departments) == 0
}

// DefaultPolicy targets senior technology leadership roles in Australia.
// It applies only when the config file carries no policy block at all;
// an explicit empty category still means "match everything".
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		TitleKeywords: []string{
			"chief", "cio", "cto", "cdo", "head", "director",
			"general manager", "gm", "transformation",
			"technology", "digital", "data", "information",
		},
		Locations: []string{
			"australia", "melbourne", "sydney", "brisbane",
			"perth", "adelaide", "canberra", "remote",
		},
	}
}

// AlertConfig controls alert delivery.
type AlertConfig struct {
	Delivery string
	SMTP     SMTPConfig
}

// SMTPConfig holds the email collaborator settings. Secrets come in via
// ${VAR} expansion at load time.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// Addr returns the host:port dial address.
func (s SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RateLimitConfig bounds outbound requests per ATS hostname.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Database       string          `yaml:"database"`
	LockFile       string          `yaml:"lock_file"`
	Workers        int             `yaml:"workers"`
	CompanyTimeout string          `yaml:"company_timeout"`
	StaleAfter     string          `yaml:"stale_after"`
	Policy         PolicyConfig    `yaml:"policy"`
	Alert          rawAlertConfig  `yaml:"alert"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

type rawAlertConfig struct {
	Delivery string     `yaml:"delivery"`
	SMTP     SMTPConfig `yaml:"smtp"`
}

// Load reads and parses the YAML config file at path, applies defaults,
// validates, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables (SMTP credentials live in the env).
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		Database:       raw.Database,
		LockFile:       raw.LockFile,
		Workers:        raw.Workers,
		CompanyTimeout: 5 * time.Minute,
		StaleAfter:     30 * 24 * time.Hour,
		Policy:         raw.Policy,
		Alert: AlertConfig{
			Delivery: raw.Alert.Delivery,
			SMTP:     raw.Alert.SMTP,
		},
		RateLimit: raw.RateLimit,
	}

	if cfg.Database == "" {
		cfg.Database = "jobradar.db"
	}
	if cfg.LockFile == "" {
		cfg.LockFile = cfg.Database + ".lock"
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.Alert.Delivery == "" {
		cfg.Alert.Delivery = DeliveryAtMostOnce
	}
	if cfg.Policy.empty() {
		cfg.Policy = DefaultPolicy()
	}
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 2
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 1
	}
	if cfg.Alert.SMTP.Port == 0 {
		cfg.Alert.SMTP.Port = 587
	}
	if cfg.Alert.SMTP.From == "" {
		cfg.Alert.SMTP.From = cfg.Alert.SMTP.Username
	}

	if raw.CompanyTimeout != "" {
		cfg.CompanyTimeout, err = time.ParseDuration(raw.CompanyTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse company_timeout %q: %w", raw.CompanyTimeout, err)
		}
	}
	if raw.StaleAfter != "" {
		cfg.StaleAfter, err = time.ParseDuration(raw.StaleAfter)
		if err != nil {
			return nil, fmt.Errorf("parse stale_after %q: %w", raw.StaleAfter, err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.CompanyTimeout <= 0 {
		return fmt.Errorf("company_timeout must be positive, got %v", cfg.CompanyTimeout)
	}
	if cfg.StaleAfter < 24*time.Hour {
		return fmt.Errorf("stale_after must be at least 24h, got %v", cfg.StaleAfter)
	}

	switch cfg.Alert.Delivery {
	case DeliveryAtMostOnce, DeliveryAtLeastOnce:
	default:
		return fmt.Errorf("alert.delivery must be %q or %q, got %q",
			DeliveryAtMostOnce, DeliveryAtLeastOnce, cfg.Alert.Delivery)
	}

	if cfg.Alert.SMTP.Host != "" {
		missing := []string{}
		if cfg.Alert.SMTP.Username == "" {
			missing = append(missing, "username")
		}
		if cfg.Alert.SMTP.Password == "" {
			missing = append(missing, "password")
		}
		if cfg.Alert.SMTP.To == "" {
			missing = append(missing, "to")
		}
		if len(missing) > 0 {
			return fmt.Errorf("alert.smtp.%s required when alert.smtp.host is set", strings.Join(missing, ", alert.smtp."))
		}
	}

	if cfg.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("rate_limit.requests_per_second must not be negative")
	}

	return nil
}
