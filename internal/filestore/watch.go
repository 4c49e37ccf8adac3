package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeOp describes what happened to a key.
type ChangeOp string

const (
	ChangeSaved   ChangeOp = "saved"
	ChangeDeleted ChangeOp = "deleted"
)

// Change reports that another writer replaced or removed a key.
type Change struct {
	Key string
	Op  ChangeOp
}

// debounceWindow coalesces the burst of events one atomic write produces.
const debounceWindow = 50 * time.Millisecond

// Watch calls fn for every key changed by another writer until ctx is
// canceled. Changes made through this Store are not reported. fn runs on the
// calling goroutine.
func (s *Store) Watch(ctx context.Context, fn func(Change)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}
	s.logger.Debug("watching store", "dir", s.dir)

	pending := map[string]struct{}{}
	timer := time.NewTimer(debounceWindow)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			key, relevant := keyForEvent(event)
			if !relevant {
				continue
			}
			if len(pending) == 0 {
				timer.Reset(debounceWindow)
			}
			pending[key] = struct{}{}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("fsnotify error", "error", err)

		case <-timer.C:
			for key := range pending {
				if change, ok := s.resolve(key); ok {
					fn(change)
				}
			}
			clear(pending)
		}
	}
}

func keyForEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	name := filepath.Base(event.Name)
	// Temp files from atomic writes carry a suffix after the extension.
	if !strings.HasSuffix(name, fileExt) || strings.HasPrefix(name, ".") {
		return "", false
	}
	return strings.TrimSuffix(name, fileExt), true
}

// resolve inspects the settled state of key after a burst of events.
func (s *Store) resolve(key string) (Change, bool) {
	path := filepath.Join(s.dir, key+fileExt)
	data, err := os.ReadFile(path)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("failed to read changed key", "key", key, "error", err)
		return Change{}, false
	}

	if s.ownWrite(key, data, exists) {
		return Change{}, false
	}
	if exists {
		return Change{Key: key, Op: ChangeSaved}, true
	}
	return Change{Key: key, Op: ChangeDeleted}, true
}
