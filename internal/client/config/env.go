package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "docadmin"

// EnvConfig maps DOCADMIN_* variables onto Config fields.
type EnvConfig struct {
	ServerURL      string        `envconfig:"SERVER_URL"`
	DatabasePath   string        `envconfig:"DATABASE_PATH"`
	DownloadDir    string        `envconfig:"DOWNLOAD_DIR"`
	PageSize       int           `envconfig:"PAGE_SIZE"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT"`
	LogLevel       string        `envconfig:"LOG_LEVEL"`
}

// parseEnv loads .env (when present) and overlays cfg with DOCADMIN_*
// variables. Unset variables keep the current value. Panics on malformed
// values.
func parseEnv(cfg *Config) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	ec := EnvConfig{
		ServerURL:      cfg.ServerURL,
		DatabasePath:   cfg.DatabasePath,
		DownloadDir:    cfg.DownloadDir,
		PageSize:       cfg.PageSize,
		RequestTimeout: cfg.RequestTimeout,
		LogLevel:       cfg.LogLevel,
	}
	if err := envconfig.Process(envPrefix, &ec); err != nil {
		panic(err)
	}

	cfg.ServerURL = ec.ServerURL
	cfg.DatabasePath = ec.DatabasePath
	cfg.DownloadDir = ec.DownloadDir
	cfg.PageSize = ec.PageSize
	cfg.RequestTimeout = ec.RequestTimeout
	cfg.LogLevel = ec.LogLevel
}
