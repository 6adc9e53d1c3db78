package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

// DocumentStore persists application state as a single JSON key-value
// document on disk. Keys map to arbitrary JSON values; every Put rewrites
// the whole file atomically (write to temp file, then rename).
//
// A document that cannot be read or parsed is treated as lost: the store
// resets to an empty document and deletes the corrupt file. Losing the data
// is preferable to the application being permanently unusable.
type DocumentStore struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

// Open reads the document at path, recovering from corruption by starting
// empty. A missing file is not an error; it simply means first run.
func Open(path string) (*DocumentStore, error) {
	s := &DocumentStore{
		path: path,
		data: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		log.Warnf("document %s is corrupt (%v), resetting to empty", path, err)
		s.data = make(map[string]json.RawMessage)
		if err := os.Remove(path); err != nil {
			log.Errorf("failed to remove corrupt document %s: %v", path, err)
		}
	}

	return s, nil
}

// Path returns the location of the backing file.
func (s *DocumentStore) Path() string {
	return s.path
}

// Get returns the raw JSON value stored under key, and whether it exists.
func (s *DocumentStore) Get(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Put stores value under key and flushes the document to disk.
func (s *DocumentStore) Put(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	return s.flushLocked()
}

// Delete removes key from the document and flushes to disk. Deleting a
// missing key is a no-op.
func (s *DocumentStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flushLocked()
}

// ExportTo copies the current document to dst, creating parent directories
// as needed. Used for timestamped backups.
func (s *DocumentStore) ExportTo(dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	src, err := os.Open(s.path)
	if os.IsNotExist(err) {
		// Nothing flushed yet; export the in-memory state instead.
		raw, err := json.MarshalIndent(s.data, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(dst, raw, 0o644)
	}
	if err != nil {
		return fmt.Errorf("failed to open document for backup: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("failed to copy document to backup: %w", err)
	}
	return nil
}

func (s *DocumentStore) flushLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}
