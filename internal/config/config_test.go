package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestGetEnvString(t *testing.T) {
	key := "TEST_ENV_STRING"
	val := "test_value"
	os.Setenv(key, val)
	defer os.Unsetenv(key)

	if got := getEnvString(key, "default"); got != val {
		t.Errorf("getEnvString() = %q, want %q", got, val)
	}

	if got := getEnvString("NON_EXISTENT", "default"); got != "default" {
		t.Errorf("getEnvString() = %q, want %q", got, "default")
	}
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_ENV_DURATION"

	tests := []struct {
		name       string
		envVal     string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"ValidDuration", "1m", time.Second, time.Minute},
		{"ValidSeconds", "60", time.Second, 60 * time.Second},
		{"Invalid", "invalid", time.Second, time.Second},
		{"Empty", "", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envVal != "" {
				os.Setenv(key, tt.envVal)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			if got := getEnvDuration(key, tt.defaultVal); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_ENV_BOOL"

	tests := []struct {
		name       string
		envVal     string
		defaultVal bool
		want       bool
	}{
		{"True", "true", false, true},
		{"False", "false", true, false},
		{"One", "1", false, true},
		{"Invalid", "maybe", true, true},
		{"Empty", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envVal != "" {
				os.Setenv(key, tt.envVal)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			if got := getEnvBool(key, tt.defaultVal); got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvList(t *testing.T) {
	key := "TEST_ENV_LIST"
	def := []string{"requests", "tokens", "calls"}

	tests := []struct {
		name   string
		envVal string
		want   []string
	}{
		{"Empty", "", def},
		{"Single", "usage", []string{"usage"}},
		{"Multiple", "requests, tokens ,quota", []string{"requests", "tokens", "quota"}},
		{"OnlyCommas", ",,,", def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envVal != "" {
				os.Setenv(key, tt.envVal)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			if got := getEnvList(key, def); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("getEnvList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetDefaultPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Skipping test because user home dir cannot be found")
	}

	dbPath := getDefaultDatabasePath()
	expectedDb := filepath.Join(home, ".config", "quotafleet", "quotafleet.db")
	if dbPath != expectedDb {
		t.Errorf("getDefaultDatabasePath() = %q, want %q", dbPath, expectedDb)
	}

	snapPath := getDefaultSnapshotPath()
	expectedSnap := filepath.Join(home, ".config", "quotafleet", "accounts.json")
	if snapPath != expectedSnap {
		t.Errorf("getDefaultSnapshotPath() = %q, want %q", snapPath, expectedSnap)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	os.Setenv("QFT_DATABASE_PATH", filepath.Join(tmpDir, "db.sqlite"))
	os.Setenv("QFT_SNAPSHOT_PATH", filepath.Join(tmpDir, "accounts.json"))
	defer os.Unsetenv("QFT_DATABASE_PATH")
	defer os.Unsetenv("QFT_SNAPSHOT_PATH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.RefreshInterval != defaultRefreshInterval {
		t.Errorf("RefreshInterval = %v, want %v", cfg.RefreshInterval, defaultRefreshInterval)
	}
	if !cfg.Notifications {
		t.Error("Notifications should default to true")
	}
	if len(cfg.PlaceholderLabels) == 0 {
		t.Error("PlaceholderLabels should have defaults")
	}
}

func TestLoadPlaceholderOverride(t *testing.T) {
	tmpDir := t.TempDir()
	os.Setenv("QFT_DATABASE_PATH", filepath.Join(tmpDir, "db.sqlite"))
	os.Setenv("QFT_SNAPSHOT_PATH", filepath.Join(tmpDir, "accounts.json"))
	os.Setenv("QFT_PLACEHOLDER_LABELS", "usage,units")
	defer os.Unsetenv("QFT_DATABASE_PATH")
	defer os.Unsetenv("QFT_SNAPSHOT_PATH")
	defer os.Unsetenv("QFT_PLACEHOLDER_LABELS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	want := []string{"usage", "units"}
	if !reflect.DeepEqual(cfg.PlaceholderLabels, want) {
		t.Errorf("PlaceholderLabels = %v, want %v", cfg.PlaceholderLabels, want)
	}
}
