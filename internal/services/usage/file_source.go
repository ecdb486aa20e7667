package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quotafleet/quotafleet-tui/internal/models"
)

// FileSource reads usage snapshots from a JSON file maintained by an
// external collector. It watches the containing directory so rewrites of
// the file (including atomic rename-into-place) trigger a refresh.
type FileSource struct {
	path          string
	watcher       *fsnotify.Watcher
	changes       chan struct{}
	stopChan      chan struct{}
	mu            sync.Mutex
	debounceTimer *time.Timer
}

// NewFileSource creates a file source and starts watching the snapshot.
func NewFileSource(path string) (*FileSource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory to catch file creation and renames.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	s := &FileSource{
		path:     path,
		watcher:  watcher,
		changes:  make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
	go s.watchLoop()
	return s, nil
}

// Name identifies the source.
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Fetch reads and parses the snapshot file.
func (s *FileSource) Fetch(_ context.Context) (*models.AccountsPayload, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var payload models.AccountsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &payload, nil
}

// Changes returns a channel that fires after the snapshot file is written.
func (s *FileSource) Changes() <-chan struct{} {
	return s.changes
}

// watchLoop debounces file system events into change notifications.
func (s *FileSource) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.notify)
				s.mu.Unlock()
			}

		case _, ok := <-s.watcher.Errors:
			if !ok {
				return
			}

		case <-s.stopChan:
			return
		}
	}
}

func (s *FileSource) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Close stops the file watcher.
func (s *FileSource) Close() error {
	close(s.stopChan)

	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()

	return s.watcher.Close()
}
