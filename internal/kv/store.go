// Package kv defines the key-value persistence boundary the family store is
// written against. Values are opaque byte blobs, always replaced whole.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when a key has never been saved or was deleted.
var ErrNotFound = errors.New("key not found")

// Store is a flat key-value store with whole-value writes.
// Concurrent writers to the same key race; the later Save wins.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists keys matching a glob pattern (*, ?, [...]), sorted.
	Keys(ctx context.Context, pattern string) ([]string, error)
}
