package oplog

import (
	"context"
	"sync"

	"github.com/danieljhkim/redline/internal/kv"
	"github.com/danieljhkim/redline/internal/logging"
	"github.com/danieljhkim/redline/internal/planner"
)

// PlanStore keeps recently computed plans, bounded like the history.
type PlanStore struct {
	mu    sync.Mutex
	list  *kv.List[planner.Plan]
	limit int
}

// NewPlanStore creates a PlanStore on backend.
func NewPlanStore(backend kv.Store, limit int, log *logging.Logger) *PlanStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &PlanStore{
		list:  kv.NewList[planner.Plan](backend, PlansKey, log),
		limit: limit,
	}
}

// Put stores plan, replacing a plan with the same id.
func (s *PlanStore) Put(ctx context.Context, plan *planner.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.list.Load(ctx)
	if err != nil {
		return err
	}

	kept := plans[:0]
	for _, p := range plans {
		if p.ID != plan.ID {
			kept = append(kept, p)
		}
	}
	kept = append(kept, *plan)
	if len(kept) > s.limit {
		kept = kept[len(kept)-s.limit:]
	}
	return save(ctx, s.list, kept)
}

// Get returns the plan with id.
func (s *PlanStore) Get(ctx context.Context, id string) (*planner.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.list.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].ID == id {
			return &plans[i], nil
		}
	}
	return nil, ErrNotFound
}

// List returns stored plans, oldest first.
func (s *PlanStore) List(ctx context.Context) ([]planner.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Load(ctx)
}

// Clear drops all stored plans.
func (s *PlanStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return save(ctx, s.list, []planner.Plan{})
}
