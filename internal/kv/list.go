package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danieljhkim/redline/internal/logging"
)

// List keeps a JSON array of T under a single key.
type List[T any] struct {
	store Store
	key   string
	log   *logging.Logger
}

// NewList creates a List stored at key.
func NewList[T any](store Store, key string, log *logging.Logger) *List[T] {
	if log == nil {
		log = logging.Nop()
	}
	return &List[T]{store: store, key: key, log: log}
}

// Key returns the key the list is stored under.
func (l *List[T]) Key() string {
	return l.key
}

// Load returns the stored entries. Missing, unreadable and corrupt data all
// yield an empty list; only context errors are returned.
func (l *List[T]) Load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := l.store.Get(ctx, l.key)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		l.log.WithError(err).Warn("stored list unreadable, treating as empty", "key", l.key)
		return []T{}, nil
	}

	var entries []T
	if err := json.Unmarshal(data, &entries); err != nil {
		l.log.WithError(err).Warn("stored list corrupt, treating as empty", "key", l.key)
		return []T{}, nil
	}
	if entries == nil {
		entries = []T{}
	}
	return entries, nil
}

// Save replaces the stored entries.
func (l *List[T]) Save(ctx context.Context, entries []T) error {
	if entries == nil {
		entries = []T{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", l.key, err)
	}
	return l.store.Put(ctx, l.key, data)
}
