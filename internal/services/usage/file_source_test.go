package usage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileSourceFetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.json")
	content := `{
		"accounts": [
			{
				"id": "acct-1",
				"quotaSyncStatus": "live",
				"quota": {"fiveHour": {"limit": 100, "used": "25", "windowMinutes": 300}}
			}
		],
		"version": 1
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource() failed: %v", err)
	}
	defer func() { _ = src.Close() }()

	payload, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if len(payload.Accounts) != 1 {
		t.Fatalf("len(Accounts) = %d, want 1", len(payload.Accounts))
	}

	acct := payload.Accounts[0]
	if !acct.IsLive() {
		t.Error("IsLive() = false, want true")
	}
	if acct.Quota == nil || acct.Quota.FiveHour == nil {
		t.Fatal("quota window missing")
	}
	if !acct.Quota.FiveHour.Used.Valid || acct.Quota.FiveHour.Used.Value != 25 {
		t.Errorf("Used = %+v, want 25 (numeric string accepted)", acct.Quota.FiveHour.Used)
	}
}

func TestFileSourceFetchErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.json")

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource() failed: %v", err)
	}
	defer func() { _ = src.Close() }()

	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("Fetch() should fail when the file is missing")
	}

	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("Fetch() should fail on malformed JSON")
	}
}

func TestFileSourceChangeNotification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.json")
	if err := os.WriteFile(path, []byte(`{"accounts":[]}`), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource() failed: %v", err)
	}
	defer func() { _ = src.Close() }()

	if err := os.WriteFile(path, []byte(`{"accounts":[],"version":2}`), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case <-src.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification after file write")
	}
}
