// Package kv provides the key-value persistence behind the operation log,
// plan store and recipe book.
//
// Keys are slash-separated paths such as "doc/report/operations". Every
// backend stores opaque byte values and reports a missing key with
// ErrNotFound. Callers own serialization.
//
// Backends:
//   - FileStore: one JSON file per key under a directory (default)
//   - SQLiteStore: a single table in a SQLite database
//   - RedisStore: plain string keys under a prefix
//   - MemStore: in-process map for tests
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danieljhkim/redline/internal/fsops"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// Store is a minimal key-value store.
type Store interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value at key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Key joins segments into a store key.
func Key(segments ...string) string {
	return strings.Join(segments, "/")
}

// ValidateKey rejects empty keys and segments that could escape a
// directory-backed store.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("invalid key: empty")
	}
	for _, seg := range strings.Split(key, "/") {
		if err := fsops.ValidateIdentifier(seg); err != nil {
			return fmt.Errorf("invalid key %q: %w", key, err)
		}
	}
	return nil
}
