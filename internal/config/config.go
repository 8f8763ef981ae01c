// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"quote-to-cash/internal/core"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

const day = 24 * time.Hour

type Config struct {
	Env            string
	StoreDriver    string
	DatabaseURL    string
	Port           string
	AllowedOrigins string

	Settings core.Settings

	SweepInterval  time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	OpenAIAPIKey string
	OpenAIModel  string
}

// Load reads .env when present, then the environment. Explicit env vars win
// over .env entries; unset keys take their defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Port:           getEnv("SERVER_PORT", "8080"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o"),
		Settings:       core.DefaultSettings(),
	}

	cfg.StoreDriver = strings.ToLower(os.Getenv("STORE_DRIVER"))
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = DriverMemory
		if cfg.DatabaseURL != "" {
			cfg.StoreDriver = DriverPostgres
		}
	}
	switch cfg.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("STORE_DRIVER=postgres requires DATABASE_URL")
		}
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMemory, DriverPostgres, cfg.StoreDriver)
	}

	var err error
	if v := os.Getenv("TAX_RATE"); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TAX_RATE %q: %w", v, err)
		}
		if err := core.ValidateTaxRate(rate); err != nil {
			return nil, fmt.Errorf("TAX_RATE: %w", err)
		}
		cfg.Settings.TaxRate = rate
	}

	validity, err := getInt("QUOTE_VALIDITY_DAYS", 30)
	if err != nil {
		return nil, err
	}
	dueDays, err := getInt("INVOICE_DUE_DAYS", 30)
	if err != nil {
		return nil, err
	}
	if validity <= 0 || dueDays <= 0 {
		return nil, fmt.Errorf("QUOTE_VALIDITY_DAYS and INVOICE_DUE_DAYS must be positive")
	}
	cfg.Settings.QuoteValidity = time.Duration(validity) * day
	cfg.Settings.InvoiceDueIn = time.Duration(dueDays) * day

	policy, err := core.NewCreationPolicy(
		splitList(getEnv("ORDER_SOURCE_STATUSES", "approved")),
		splitList(getEnv("INVOICE_SOURCE_STATUSES", "confirmed,delivered")),
	)
	if err != nil {
		return nil, fmt.Errorf("creation policy: %w", err)
	}
	cfg.Settings.Policy = policy

	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}
	rps := getEnv("RATE_LIMIT_RPS", "10")
	if cfg.RateLimitRPS, err = strconv.ParseFloat(rps, 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", rps, err)
	}

	return cfg, nil
}

// IsProduction reports whether APP_ENV selects production logging.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
