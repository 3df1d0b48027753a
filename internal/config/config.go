// Package config loads runtime settings from the environment.
// The source registry and keyword rules live in the YAML file
// pointed to by SourcesPath and are handled by internal/sources.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Registry / output paths
	SourcesPath string
	OutputPath  string
	JokesPath   string

	// Feed settings
	MaxEntriesPerFeed int
	MaxFlatItems      int
	NewsMaxAge        time.Duration

	// Dedupe history settings
	DedupePersist  bool
	DedupeStateDSN string // Postgres connection string; file backend when empty
	DedupeStateDir string
	DedupeTTLHours int

	// Translation settings
	DeepLAPIKey     string
	DeepLAPIURL     string // explicit endpoint override
	GeminiAPIKey    string
	MaxTranslations int // per-run budget across providers (0 = unlimited)

	// Enrichment settings
	ScrapeConcurrency int
	ScrapeMaxArticles int

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	UserAgent      string
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		SourcesPath:       "config/sources.yml",
		OutputPath:        "data/news.json",
		JokesPath:         "data/jokes_ro.txt",
		MaxEntriesPerFeed: 50,
		MaxFlatItems:      60,
		NewsMaxAge:        72 * time.Hour,
		DedupePersist:     true,
		DedupeStateDir:    "data",
		DedupeTTLHours:    72,
		MaxTranslations:   30,
		ScrapeConcurrency: 4,
		ScrapeMaxArticles: 10,
		RequestTimeout:    20 * time.Second,
		RetryAttempts:     3,
		RetryDelay:        3 * time.Second,
		UserAgent:         "vesti-bune-bot/1.0 (+https://vcarciu.github.io/vesti-bune/)",
	}

	cfg.SourcesPath = getEnvOrDefault("SOURCES_PATH", cfg.SourcesPath)
	cfg.OutputPath = getEnvOrDefault("OUTPUT_PATH", cfg.OutputPath)
	cfg.JokesPath = getEnvOrDefault("JOKES_PATH", cfg.JokesPath)

	cfg.DeepLAPIKey = os.Getenv("DEEPL_API_KEY")
	cfg.DeepLAPIURL = os.Getenv("DEEPL_API_URL")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	cfg.DedupeStateDSN = os.Getenv("DATABASE_URL")
	cfg.DedupeStateDir = getEnvOrDefault("DEDUPE_STATE_DIR", cfg.DedupeStateDir)
	cfg.DedupeTTLHours = getEnvIntOrDefault("DEDUPE_TTL_HOURS", cfg.DedupeTTLHours)

	if v := os.Getenv("DEDUPE_PERSIST"); v == "false" {
		cfg.DedupePersist = false
	}

	if v := os.Getenv("MAX_ENTRIES_PER_FEED"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.MaxEntriesPerFeed = val
		}
	}
	if v := os.Getenv("MAX_FLAT_ITEMS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.MaxFlatItems = val
		}
	}
	if v := os.Getenv("NEWS_MAX_AGE_HOURS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.NewsMaxAge = time.Duration(val) * time.Hour
		}
	}
	if v := os.Getenv("MAX_TRANSLATIONS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.MaxTranslations = val
		}
	}
	if v := os.Getenv("SCRAPE_CONCURRENCY"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.ScrapeConcurrency = val
		}
	}
	if v := os.Getenv("SCRAPE_MAX_ARTICLES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.ScrapeMaxArticles = val
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("RETRY_ATTEMPTS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetryAttempts = val
		}
	}
	if v := os.Getenv("RETRY_DELAY_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.RetryDelay = time.Duration(val) * time.Second
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.SourcesPath == "" {
		return fmt.Errorf("SOURCES_PATH is required")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("OUTPUT_PATH is required")
	}
	if c.DedupeTTLHours <= 0 {
		return fmt.Errorf("DEDUPE_TTL_HOURS must be positive")
	}
	return nil
}
