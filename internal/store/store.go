// Package store persists merge orders: ordered lists of required file stems,
// keyed either by subdirectory name or by absolute root path. Each keyspace
// lives in its own JSON file; the whole mapping is rewritten on every change.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pdfmerge/internal/errors"
	"pdfmerge/internal/log"
	"pdfmerge/internal/natsort"
	"pdfmerge/internal/storage"
)

// Keyspace selects how keys are interpreted.
type Keyspace int

const (
	// ByName keys by subdirectory base name, verbatim. Same-named
	// subdirectories under different roots share one entry.
	ByName Keyspace = iota
	// ByRoot keys by the absolute, cleaned path of a root directory.
	ByRoot
)

func (k Keyspace) String() string {
	switch k {
	case ByName:
		return "by-name"
	case ByRoot:
		return "by-root"
	default:
		return fmt.Sprintf("keyspace(%d)", int(k))
	}
}

// Store is a JSON-file backed mapping from key to merge order. It is loaded
// once by Open; concurrent writers to the same file are not coordinated and
// the last write wins.
type Store struct {
	path     string
	keyspace Keyspace

	mu      sync.Mutex
	orders  map[string][]string
	loadErr error
}

// Open loads the mapping at path. A missing file yields an empty store. An
// unreadable or corrupt file also yields an empty store; the problem is
// logged and kept in LoadErr.
func Open(path string, ks Keyspace) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewConfigError("merge configuration path is empty", ks.String(), errors.InvalidConfig, nil)
	}
	s := &Store{
		path:     path,
		keyspace: ks,
		orders:   make(map[string][]string),
	}
	s.load()
	return s, nil
}

// DefaultPath returns ~/<name>, falling back to the working directory when
// the home directory is unknown.
func DefaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.loadErr = errors.NewFileError("cannot read merge configuration", s.path, errors.FileAccessDenied, err)
			log.LogWithError(s.loadErr).Warn("Starting with an empty merge configuration")
		}
		return
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return
	}

	var orders map[string][]string
	if err := json.Unmarshal(data, &orders); err != nil {
		s.loadErr = errors.NewConfigError("corrupt merge configuration", s.path, errors.InvalidConfig, err)
		log.LogWithError(s.loadErr).Warn("Starting with an empty merge configuration")
		return
	}
	for k, v := range orders {
		s.orders[k] = v
	}
	log.LogWithFields(log.F("path", s.path), log.F("entries", len(s.orders))).Debug("Loaded merge configuration")
}

// Reload discards the in-memory mapping and reads the file again.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = make(map[string][]string)
	s.loadErr = nil
	s.load()
	return s.loadErr
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Keyspace returns how keys are interpreted.
func (s *Store) Keyspace() Keyspace { return s.keyspace }

// LoadErr returns the error that made Open start from an empty mapping, if any.
func (s *Store) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Key normalizes key for this store's keyspace. For ByRoot, relative paths
// and trailing separators resolve to one absolute key.
func (s *Store) Key(key string) (string, error) {
	if key == "" {
		return "", errors.NewInvalidInputError("empty configuration key", nil)
	}
	if s.keyspace != ByRoot {
		return key, nil
	}
	abs, err := filepath.Abs(key)
	if err != nil {
		return "", errors.NewFileError("cannot resolve root path", key, errors.InvalidPath, err)
	}
	return abs, nil
}

// Set stores stems under key and rewrites the file. On a write failure the
// in-memory mapping is left as it was.
func (s *Store) Set(key string, stems []string) error {
	k, err := s.Key(key)
	if err != nil {
		return err
	}
	if len(stems) == 0 {
		return errors.NewInvalidInputError("merge order needs at least one stem", nil).WithContext("key", k)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.orders[k]
	s.orders[k] = append([]string(nil), stems...)
	if err := s.flush(); err != nil {
		if had {
			s.orders[k] = prev
		} else {
			delete(s.orders, k)
		}
		return err
	}
	log.LogWithFields(log.F("key", k), log.F("stems", strings.Join(stems, ","))).Debug("Saved merge order")
	return nil
}

// Get returns a copy of the merge order stored under key.
func (s *Store) Get(key string) ([]string, bool) {
	k, err := s.Key(key)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stems, ok := s.orders[k]
	if !ok {
		return nil, false
	}
	return append([]string(nil), stems...), true
}

// Delete removes key and rewrites the file. It reports whether the key was
// present; nothing is written when it was not.
func (s *Store) Delete(key string) (bool, error) {
	k, err := s.Key(key)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.orders[k]
	if !ok {
		return false, nil
	}
	delete(s.orders, k)
	if err := s.flush(); err != nil {
		s.orders[k] = prev
		return false, err
	}
	return true, nil
}

// List returns a deep copy of the whole mapping.
func (s *Store) List() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]string, len(s.orders))
	for k, v := range s.orders {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Keys returns the stored keys in natural order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.orders))
	for k := range s.orders {
		keys = append(keys, k)
	}
	natsort.Sort(keys)
	return keys
}

// flush writes the whole mapping. Callers hold s.mu.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.orders, "", "  ")
	if err != nil {
		return errors.NewConfigError("failed to encode merge configuration", s.path, errors.ConfigWriteFailed, err)
	}
	data = append(data, '\n')
	if err := storage.AtomicWriteFile(s.path, data); err != nil {
		return errors.NewConfigError("failed to write merge configuration", s.path, errors.ConfigWriteFailed, err)
	}
	return nil
}
