package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds crawler configuration.
type Config struct {
	BaseURL       string
	BrandsFile    string
	DatasetFile   string
	ProgressDir   string
	ErrorsDir     string
	SelectorsFile string // optional YAML override for selector chains

	Brand     string // restrict the run to one brand by name, empty = all
	MaxBrands int    // 0 = no limit

	PageCeiling     int
	MaxRetries      int
	RetryBackoff    time.Duration
	RetryBackoffMax time.Duration
	NavTimeout      time.Duration
	SelectorTimeout time.Duration
	PoliteMin       time.Duration
	PoliteMax       time.Duration

	Headless       bool
	SlowMo         time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int

	SnapshotLimit int // duplicate-snapshot suppression window
	MetricsAddr   string
	Verbose       bool
}

// DefaultConfig returns the defaults used against the marketplace target.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "https://www.chrono24.com",
		BrandsFile:      "data/brands.json",
		DatasetFile:     "data/watches.json",
		ProgressDir:     "data/progress",
		ErrorsDir:       "data/errors",
		SelectorsFile:   "",
		Brand:           "",
		MaxBrands:       0,
		PageCeiling:     100,
		MaxRetries:      3,
		RetryBackoff:    2 * time.Second,
		RetryBackoffMax: 60 * time.Second,
		NavTimeout:      60 * time.Second,
		SelectorTimeout: 30 * time.Second,
		PoliteMin:       2 * time.Second,
		PoliteMax:       5 * time.Second,
		Headless:        true,
		SlowMo:          0,
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		ViewportWidth:   1920,
		ViewportHeight:  1080,
		SnapshotLimit:   128,
		MetricsAddr:     "",
		Verbose:         false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.BrandsFile == "" {
		return fmt.Errorf("brands file cannot be empty")
	}
	if c.DatasetFile == "" {
		return fmt.Errorf("dataset file cannot be empty")
	}
	if c.ProgressDir == "" {
		return fmt.Errorf("progress directory cannot be empty")
	}
	if c.ErrorsDir == "" {
		return fmt.Errorf("errors directory cannot be empty")
	}
	if c.MaxBrands < 0 {
		return fmt.Errorf("max brands cannot be negative")
	}
	if c.PageCeiling <= 0 {
		return fmt.Errorf("page ceiling must be positive")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max retries must be positive")
	}
	if c.RetryBackoff <= 0 {
		return fmt.Errorf("retry backoff must be positive")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.NavTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be positive")
	}
	if c.SelectorTimeout <= 0 {
		return fmt.Errorf("selector timeout must be positive")
	}
	if c.PoliteMin < 0 {
		return fmt.Errorf("polite delay minimum cannot be negative")
	}
	if c.PoliteMax < c.PoliteMin {
		return fmt.Errorf("polite delay maximum (%s) cannot be below minimum (%s)", c.PoliteMax, c.PoliteMin)
	}
	if c.SlowMo < 0 {
		return fmt.Errorf("slow motion delay cannot be negative")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("viewport dimensions must be positive")
	}
	if c.SnapshotLimit <= 0 {
		return fmt.Errorf("snapshot limit must be positive")
	}

	return nil
}
