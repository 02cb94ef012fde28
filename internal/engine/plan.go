package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/danieljhkim/redline/internal/document"
	"github.com/danieljhkim/redline/internal/planner"
)

// Plan interprets a command against the stored document and keeps the
// resulting plan for a later Apply. The document is not modified.
func (e *Engine) Plan(ctx context.Context, req *PlanRequest) (*PlanResult, error) {
	if strings.TrimSpace(req.DocumentID) == "" {
		return nil, fmt.Errorf("%w: document ID is required", ErrValidation)
	}

	doc, err := e.docs.Load(req.DocumentID)
	if err != nil {
		return nil, err
	}

	scope := req.Scope
	if scope.Kind == "" {
		scope = document.WholeDocument()
	}

	cmd := planner.NewCommand(req.Text, scope, e.clock)
	plan, err := e.planner.PlanCommand(ctx, cmd, doc)
	if err != nil {
		return nil, err
	}

	if err := e.plans.Put(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to store plan: %w", err)
	}

	e.log.WithDocument(doc.ID).WithPlan(plan.ID).Debug("plan created",
		"steps", len(plan.Steps),
		"warnings", len(plan.Warnings),
	)
	return &PlanResult{Plan: plan}, nil
}

// GetPlan returns a stored plan.
func (e *Engine) GetPlan(ctx context.Context, planID string) (*PlanResult, error) {
	plan, err := e.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return &PlanResult{Plan: plan}, nil
}

// RunRecipe plans a saved recipe's template.
func (e *Engine) RunRecipe(ctx context.Context, req *RunRecipeRequest) (*PlanResult, error) {
	recipe, err := e.recipes.Get(ctx, req.Ref)
	if err != nil {
		return nil, err
	}
	return e.Plan(ctx, &PlanRequest{
		DocumentID: req.DocumentID,
		Text:       recipe.Template,
		Scope:      req.Scope,
	})
}
