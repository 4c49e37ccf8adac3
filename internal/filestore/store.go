// Package filestore keeps each storage key in its own JSON file inside one
// directory. Several processes may share the directory; writes are atomic
// renames, so readers never see a torn value and the last rename wins.
package filestore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/natefinch/atomic"
	"github.com/rpggio/genoroot/internal/kv"
)

const (
	fileExt   = ".json"
	filePerms = 0o644
	dirPerms  = 0o755
)

// ErrInvalidKey is returned for keys that cannot be used as a file name.
var ErrInvalidKey = errors.New("invalid storage key")

// Store is a kv.Store backed by a directory.
type Store struct {
	dir    string
	logger *slog.Logger

	mu      sync.Mutex
	written map[string]digest
}

// digest fingerprints the last value this process wrote for a key; the zero
// value marks a delete.
type digest [sha256.Size]byte

// New opens (creating if needed) a store rooted at dir.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{dir: dir, logger: logger, written: make(map[string]digest)}, nil
}

// Dir returns the directory holding the key files.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+fileExt), nil
}

func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) Save(_ context.Context, key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.written[key] = sha256.Sum256(value)
	s.mu.Unlock()

	if err := atomic.WriteFile(path, bytes.NewReader(value)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	// atomic.WriteFile leaves new files with temp-file permissions.
	if err := os.Chmod(path, filePerms); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.written[key] = digest{}
	s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Keys(_ context.Context, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) || strings.Contains(pattern, "/") {
		return nil, fmt.Errorf("invalid key pattern %q", pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(s.dir), pattern+fileExt, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	keys := make([]string, 0, len(matches))
	for _, match := range matches {
		keys = append(keys, strings.TrimSuffix(match, fileExt))
	}
	sort.Strings(keys)
	return keys, nil
}

// ownWrite reports whether the current state of key is what this process
// last wrote, so the watcher can skip echoes of its own saves.
func (s *Store) ownWrite(key string, data []byte, exists bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.written[key]
	if !ok {
		return false
	}
	if !exists {
		return last == digest{}
	}
	return last == sha256.Sum256(data)
}
