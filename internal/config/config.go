package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	SecsegAPIKey string

	// EDGAR crawler
	EdgarBaseURL   string
	EdgarUserAgent string
	EdgarRateRPS   float64

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Output locations for batch jobs
	OutputDir string

	// Classifier heuristics. These are tunable thresholds, not constants:
	// title detection has no single right answer across filings.
	TitleMaxLen         int
	TitleMaxWords       int
	SupplementaryMaxLen int

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		SecsegAPIKey: os.Getenv("SECSEG_API_KEY"),

		EdgarBaseURL:   envOr("EDGAR_BASE_URL", "https://www.sec.gov/Archives/edgar/data"),
		EdgarUserAgent: os.Getenv("EDGAR_USER_AGENT"),
		EdgarRateRPS:   envFloat("EDGAR_RATE_RPS", 10),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		OutputDir: envOr("OUTPUT_DIR", "output"),

		TitleMaxLen:         envInt("TITLE_MAX_LEN", 120),
		TitleMaxWords:       envInt("TITLE_MAX_WORDS", 10),
		SupplementaryMaxLen: envInt("SUPPLEMENTARY_MAX_LEN", 40),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.EdgarRateRPS <= 0 {
		cfg.EdgarRateRPS = 10
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.SecsegAPIKey == "" {
		return fmt.Errorf("SECSEG_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
