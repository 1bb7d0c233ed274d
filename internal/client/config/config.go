package config

import "time"

// Config holds runtime settings for the grocery CLI.
//
// Fields:
//   - BaseURL: root of the backend HTTP API, including the /api prefix.
//   - RequestTimeout: per-request deadline for API calls.
//   - DatabasePath: SQLite file holding the local session.
//
// Units: RequestTimeout is a time.Duration (e.g., 30*time.Second).
type Config struct {
	BaseURL        string
	DatabasePath   string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8000/api"
	c.DatabasePath = "grocery.db"
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
