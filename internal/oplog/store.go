package oplog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/danieljhkim/redline/internal/kv"
	"github.com/danieljhkim/redline/internal/logging"
)

// DefaultLimit is the default history bound.
const DefaultLimit = 50

// Default keys.
var (
	OperationsKey = kv.Key("history", "operations")
	PlansKey      = kv.Key("history", "plans")
)

var (
	// ErrStorage indicates the history could not be written.
	ErrStorage = errors.New("storage error")

	// ErrNotFound is returned when no operation or plan has the given id.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyReverted is returned when RevertedAt is already set.
	ErrAlreadyReverted = errors.New("operation already reverted")
)

// Store is the bounded operation history.
type Store struct {
	mu    sync.Mutex
	list  *kv.List[AgentOperation]
	limit int
}

// NewStore creates a Store on backend. A non-positive limit uses DefaultLimit.
func NewStore(backend kv.Store, limit int, log *logging.Logger) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		list:  kv.NewList[AgentOperation](backend, OperationsKey, log),
		limit: limit,
	}
}

// Limit returns the history bound.
func (s *Store) Limit() int {
	return s.limit
}

// Put inserts op, evicting the oldest operations beyond the bound.
func (s *Store) Put(ctx context.Context, op *AgentOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops, err := s.list.Load(ctx)
	if err != nil {
		return err
	}

	ops = append(ops, *op)
	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].CreatedAt.Before(ops[j].CreatedAt)
	})
	if len(ops) > s.limit {
		ops = ops[len(ops)-s.limit:]
	}

	return save(ctx, s.list, ops)
}

// Get returns the operation with id.
func (s *Store) Get(ctx context.Context, id string) (*AgentOperation, error) {
	ops, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range ops {
		if ops[i].ID == id {
			return &ops[i], nil
		}
	}
	return nil, ErrNotFound
}

// List returns all operations in creation order.
func (s *Store) List(ctx context.Context) ([]AgentOperation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Load(ctx)
}

// MarkReverted sets RevertedAt on the operation. It can be set once.
func (s *Store) MarkReverted(ctx context.Context, id string, at time.Time, snapshotID string) error {
	return s.update(ctx, id, func(op *AgentOperation) error {
		if op.RevertedAt != nil {
			return ErrAlreadyReverted
		}
		reverted := at
		op.RevertedAt = &reverted
		op.RevertSnapshotID = snapshotID
		return nil
	})
}

// Restore replaces the history with ops, which must come from an earlier
// List. It undoes a Put whose operation never took effect, including the
// eviction that Put performed.
func (s *Store) Restore(ctx context.Context, ops []AgentOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ops) > s.limit {
		ops = ops[len(ops)-s.limit:]
	}
	return save(ctx, s.list, append([]AgentOperation{}, ops...))
}

// Clear drops the entire history.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return save(ctx, s.list, []AgentOperation{})
}

func (s *Store) update(ctx context.Context, id string, fn func(*AgentOperation) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops, err := s.list.Load(ctx)
	if err != nil {
		return err
	}
	for i := range ops {
		if ops[i].ID != id {
			continue
		}
		if err := fn(&ops[i]); err != nil {
			return err
		}
		return save(ctx, s.list, ops)
	}
	return ErrNotFound
}

func save[T any](ctx context.Context, list *kv.List[T], entries []T) error {
	if err := list.Save(ctx, entries); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}
