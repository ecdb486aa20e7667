package usage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quotafleet/quotafleet-tui/internal/models"
)

type fakeSource struct {
	mu      sync.Mutex
	calls   int
	payload *models.AccountsPayload
	err     error
	block   chan struct{}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(_ context.Context) (*models.AccountsPayload, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	payload, err := f.payload, f.err
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return payload, err
}

func (f *fakeSource) Close() error { return nil }

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSource) setError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func waitForEvent(t *testing.T, s *Service, want EventType) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event %v", want)
		}
	}
}

func TestServicePublishesSnapshot(t *testing.T) {
	src := &fakeSource{payload: &models.AccountsPayload{
		Accounts: []models.Account{{ID: "acct-1", QuotaSyncStatus: models.SyncStatusLive}},
	}}
	s := New(src, time.Hour)
	defer func() { _ = s.Close() }()

	ev := waitForEvent(t, s, EventSnapshot)
	if len(ev.Payload.Accounts) != 1 {
		t.Fatalf("len(Accounts) = %d, want 1", len(ev.Payload.Accounts))
	}
	if s.Snapshot() == nil {
		t.Error("Snapshot() = nil after successful refresh")
	}
	if s.Paused() {
		t.Error("Paused() = true after successful refresh")
	}
}

func TestServiceSingleFlight(t *testing.T) {
	block := make(chan struct{})
	src := &fakeSource{payload: &models.AccountsPayload{}, block: block}
	s := New(src, time.Hour)
	defer func() { _ = s.Close() }()

	waitForEvent(t, s, EventRefreshing)

	// The first fetch is still blocked; these must all be no-ops.
	s.Refresh()
	s.Refresh()
	s.Refresh()
	time.Sleep(50 * time.Millisecond)

	if got := src.callCount(); got != 1 {
		t.Errorf("fetch calls = %d, want 1 while refresh in flight", got)
	}

	close(block)
	waitForEvent(t, s, EventSnapshot)
}

func TestServiceDisablesOnFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	s := New(src, time.Hour)
	defer func() { _ = s.Close() }()

	ev := waitForEvent(t, s, EventPollingDisabled)
	if ev.Error == nil {
		t.Error("EventPollingDisabled carried no error")
	}
	if !s.Paused() {
		t.Error("Paused() = false after failed refresh")
	}
	if s.LastError() == nil {
		t.Error("LastError() = nil after failed refresh")
	}

	// While disabled, manual refresh is also a no-op.
	before := src.callCount()
	s.Refresh()
	time.Sleep(50 * time.Millisecond)
	if got := src.callCount(); got != before {
		t.Errorf("fetch calls = %d, want %d while disabled", got, before)
	}
}

func TestServiceResume(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	s := New(src, time.Hour)
	defer func() { _ = s.Close() }()

	waitForEvent(t, s, EventPollingDisabled)

	src.setError(nil)
	s.Resume()

	waitForEvent(t, s, EventPollingResumed)
	waitForEvent(t, s, EventSnapshot)

	if s.Paused() {
		t.Error("Paused() = true after Resume")
	}
	if s.LastError() != nil {
		t.Errorf("LastError() = %v, want nil after Resume", s.LastError())
	}
}

func TestServiceResumeWhenNotPaused(t *testing.T) {
	src := &fakeSource{payload: &models.AccountsPayload{}}
	s := New(src, time.Hour)
	defer func() { _ = s.Close() }()

	waitForEvent(t, s, EventSnapshot)

	before := src.callCount()
	s.Resume()
	time.Sleep(50 * time.Millisecond)
	if got := src.callCount(); got != before {
		t.Errorf("fetch calls = %d, want %d when Resume is a no-op", got, before)
	}
}
