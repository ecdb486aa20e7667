// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/quotafleet/quotafleet-tui/internal/engine"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath      string
	SnapshotPath      string
	UsageURL          string
	RefreshInterval   time.Duration
	PlaceholderLabels []string
	LogPath           string
	Notifications     bool
}

// Default values
const (
	defaultRefreshInterval = 30 * time.Second
)

// Load reads configuration from .env files and environment variables.
// Exactly one usage source is active: QFT_USAGE_URL when set, else the
// snapshot file at QFT_SNAPSHOT_PATH.
func Load() (*Config, error) {
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		DatabasePath:      getEnvString("QFT_DATABASE_PATH", getDefaultDatabasePath()),
		SnapshotPath:      getEnvString("QFT_SNAPSHOT_PATH", getDefaultSnapshotPath()),
		UsageURL:          getEnvString("QFT_USAGE_URL", ""),
		RefreshInterval:   getEnvDuration("QFT_REFRESH_INTERVAL", defaultRefreshInterval),
		PlaceholderLabels: getEnvList("QFT_PLACEHOLDER_LABELS", engine.DefaultPlaceholders()),
		LogPath:           getEnvString("QFT_LOG_PATH", ""),
		Notifications:     getEnvBool("QFT_NOTIFICATIONS", true),
	}

	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}
	if cfg.UsageURL == "" {
		if err := ensureDir(filepath.Dir(cfg.SnapshotPath)); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "quotafleet", ".env"),
		)
	}

	return paths
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "quotafleet.db"
	}
	return filepath.Join(home, ".config", "quotafleet", "quotafleet.db")
}

// getDefaultSnapshotPath returns the default path for the usage snapshot
// JSON file written by the collector.
func getDefaultSnapshotPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "quotafleet-accounts.json"
	}
	return filepath.Join(home, ".config", "quotafleet", "accounts.json")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated environment variable or returns
// the default. Empty entries are dropped.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
