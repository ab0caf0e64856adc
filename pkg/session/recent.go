package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// MaxRecent is the number of project files remembered by RecentStore.
const MaxRecent = 10

// RecentStore remembers recently opened and saved project files in a JSON
// file, most recent first.
type RecentStore struct {
	mu   sync.Mutex
	path string
}

// NewRecentStore creates a store backed by recent.json in dir. If dir is
// empty, defaults to ~/.config/infragraph/.
func NewRecentStore(dir string) (*RecentStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config", "infragraph")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	return &RecentStore{path: filepath.Join(dir, "recent.json")}, nil
}

// List returns the remembered files, most recent first. A missing or
// corrupt store reads as empty.
func (s *RecentStore) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Add moves path to the front of the list.
func (s *RecentStore) Add(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	files := slices.DeleteFunc(s.read(), func(p string) bool { return p == path })
	files = append([]string{path}, files...)
	if len(files) > MaxRecent {
		files = files[:MaxRecent]
	}

	data, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal recent files: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write recent files: %w", err)
	}
	return nil
}

// Path returns the backing file.
func (s *RecentStore) Path() string { return s.path }

func (s *RecentStore) read() []string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var files []string
	if err := json.Unmarshal(data, &files); err != nil {
		return nil
	}
	return files
}
