// Package history persists the conversation log across invocations: a
// simple ordered list of {role, content} records, loaded fully at start
// and written back in full after a successful finalization.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"aido/internal/policy"

	"github.com/gofrs/flock"
)

// ContextWindow is how many trailing entries seed the working messages.
const ContextWindow = 10

// lockTimeout bounds the best-effort wait for the write lock.
const lockTimeout = 2 * time.Second

// Entry is one persisted turn.
type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store owns the history file for the duration of one invocation. Mode
// none disables it entirely; mode temp redirects to a pid-scoped file
// under the temp directory to avoid cross-process contention.
type Store struct {
	path    string
	mode    policy.HistoryMode
	entries []Entry
}

// NewStore creates a Store for the given mode. persistPath is only used
// in persist mode.
func NewStore(mode policy.HistoryMode, persistPath string) *Store {
	path := persistPath
	if mode == policy.HistoryTemp {
		path = TempPath()
	}
	return &Store{path: path, mode: mode}
}

// TempPath returns the pid-scoped temp-mode history location.
func TempPath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("aido-history-%d.json", os.Getpid()))
}

// Enabled reports whether history is kept at all.
func (s *Store) Enabled() bool {
	return s.mode != policy.HistoryNone
}

// Path returns the backing file location ("" when disabled).
func (s *Store) Path() string {
	if !s.Enabled() {
		return ""
	}
	return s.path
}

// Load reads the full log from disk. A missing file yields an empty log;
// a corrupt file is an error so a save never silently clobbers data the
// caller did not see.
func (s *Store) Load() error {
	if !s.Enabled() {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.entries = nil
			return nil
		}
		return fmt.Errorf("read history: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse history %s: %w", s.path, err)
	}
	s.entries = entries
	return nil
}

// Append adds one turn to the in-memory log. Nothing touches disk until
// Save.
func (s *Store) Append(role, content string) {
	if !s.Enabled() {
		return
	}
	s.entries = append(s.entries, Entry{Role: role, Content: content})
}

// Recent returns the last n entries for conversation replay.
func (s *Store) Recent(n int) []Entry {
	if n <= 0 || len(s.entries) == 0 {
		return nil
	}
	if len(s.entries) <= n {
		return s.entries
	}
	return s.entries[len(s.entries)-n:]
}

// Len returns the current number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Save writes the full log back to disk, human-readable, holding a
// best-effort file lock. Concurrent writers are not otherwise
// coordinated; last writer wins.
func (s *Store) Save() error {
	if !s.Enabled() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	locked, err := lock.TryLock()
	if err == nil && !locked {
		deadline := time.Now().Add(lockTimeout)
		for !locked && time.Now().Before(deadline) {
			time.Sleep(50 * time.Millisecond)
			locked, err = lock.TryLock()
			if err != nil {
				break
			}
		}
	}
	if locked {
		defer lock.Unlock()
	}

	entries := s.entries
	if entries == nil {
		// Keep the file an ordered list even when the log is empty.
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// Clear truncates the persisted log.
func (s *Store) Clear() error {
	if !s.Enabled() {
		return nil
	}
	s.entries = nil
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}
	return s.Save()
}
