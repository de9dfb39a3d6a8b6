// Package persist provides durable persistence of project snapshots over
// a simple key/value store.
package persist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// KV is the durable-storage collaborator: a string key/value store. The
// gateway is the only component that talks to it.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool)
	// Set stores a value under a key.
	Set(key, value string) error
	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error
}

const storeFile = "store.json"

// FileStore is a KV backed by a single JSON file in the data directory.
type FileStore struct {
	mu     sync.RWMutex
	values map[string]string
	path   string
}

// OpenFileStore reads the store file from dir, starting empty when the
// file is missing or unreadable.
func OpenFileStore(dir string) *FileStore {
	s := &FileStore{
		values: make(map[string]string),
		path:   filepath.Join(dir, storeFile),
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return s
	}
	_ = json.Unmarshal(data, &s.values)
	return s
}

// Get returns the stored value and whether the key exists.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value and rewrites the store file.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	err := s.flushLocked()
	s.mu.Unlock()
	return err
}

// Delete removes a key and rewrites the store file.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	delete(s.values, key)
	err := s.flushLocked()
	s.mu.Unlock()
	return err
}

func (s *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
