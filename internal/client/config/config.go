package config

import "time"

// Config holds runtime settings for the docadmin console.
type Config struct {
	// ServerURL is the base URL of the REST backend.
	ServerURL string
	// DatabasePath is the SQLite file holding the session token.
	DatabasePath string
	// DownloadDir receives downloaded files.
	DownloadDir string
	// PageSize is the initial page size of every list screen.
	PageSize int
	// RequestTimeout bounds each HTTP request; zero means no timeout.
	RequestTimeout time.Duration
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:2020"
	c.DatabasePath = "docadmin.db"
	c.DownloadDir = "downloads"
	c.PageSize = 5
	c.RequestTimeout = 0
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, then the JSON file, then the
// environment, then command-line flags. Later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
