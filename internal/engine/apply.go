package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/danieljhkim/redline/internal/oplog"
	"github.com/danieljhkim/redline/internal/planner"
)

// Apply runs the accepted steps of a stored plan against the live document.
//
// Algorithm steps:
// 1. Load the plan and the live document
// 2. Remember the history as it is before the executor records the operation
// 3. Execute the accepted steps on a copy
// 4. Save the document if any step completed
// 5. If the save fails, put the remembered history back
func (e *Engine) Apply(ctx context.Context, req *ApplyRequest) (*ApplyResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	plan, err := e.loadPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	accepted := req.StepIDs
	if req.All {
		accepted = plan.StepIDs()
	}

	live, err := e.docs.Load(plan.DocumentID)
	if err != nil {
		return nil, err
	}

	prev, err := e.history.List(ctx)
	if err != nil {
		return nil, err
	}

	out, err := e.executor.ApplyPlan(ctx, plan, accepted, live)
	if err != nil {
		return nil, err
	}

	if len(out.Result.CompletedSteps) > 0 {
		if err := e.docs.Save(out.Document); err != nil {
			log := e.log.WithOperation(out.Operation.ID)
			if rbErr := e.history.Restore(context.WithoutCancel(ctx), prev); rbErr != nil {
				log.WithError(rbErr).Error("failed to restore history after document save failure")
			}
			return nil, fmt.Errorf("%w: failed to save document: %w", ErrStorage, err)
		}
	}

	return &ApplyResult{
		Result:      out.Result,
		OperationID: out.Operation.ID,
		Reversible:  out.Operation.Reversible,
		SnapshotID:  out.Operation.SnapshotID,
	}, nil
}

func (e *Engine) loadPlan(ctx context.Context, planID string) (*planner.Plan, error) {
	if planID == "" {
		return nil, fmt.Errorf("%w: plan ID is required", ErrValidation)
	}
	plan, err := e.plans.Get(ctx, planID)
	if errors.Is(err, oplog.ErrNotFound) {
		return nil, fmt.Errorf("%w: plan %s", ErrNotFound, planID)
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}
