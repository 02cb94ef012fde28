package planner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/danieljhkim/redline/internal/clock"
	"github.com/danieljhkim/redline/internal/document"
	"github.com/danieljhkim/redline/internal/steps"
)

// ErrEmptyCommand is returned for blank command text.
var ErrEmptyCommand = errors.New("command text is empty")

// NoEditsWarning is attached to plans without steps.
const NoEditsWarning = "no applicable edits found for command"

// Namespace seeds the name-based plan ids.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/danieljhkim/redline/plans"))

// Interpreter maps command text to candidate steps. Step IDs returned by an
// interpreter are local labels that DependsOn may refer to; the planner
// replaces them.
type Interpreter interface {
	Interpret(ctx context.Context, text string, scope document.Scope, snap document.Snapshot) ([]steps.Step, error)
}

// InterpreterFunc adapts a function to Interpreter.
type InterpreterFunc func(ctx context.Context, text string, scope document.Scope, snap document.Snapshot) ([]steps.Step, error)

// Interpret calls f.
func (f InterpreterFunc) Interpret(ctx context.Context, text string, scope document.Scope, snap document.Snapshot) ([]steps.Step, error) {
	return f(ctx, text, scope, snap)
}

// Planner builds plans.
type Planner struct {
	interp Interpreter
	clock  clock.Clock
}

// New creates a Planner.
func New(interp Interpreter, clk clock.Clock) *Planner {
	return &Planner{interp: interp, clock: clk}
}

// NewCommand creates a command with a fresh id.
func NewCommand(text string, scope document.Scope, clk clock.Clock) Command {
	return Command{
		ID:        uuid.NewString(),
		Text:      text,
		Scope:     scope,
		CreatedAt: clk.Now(),
	}
}

// PlanID returns the plan id for a command id.
func PlanID(commandID string) uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(commandID))
}

// PlanCommand interprets cmd against snap and returns the resulting plan.
// snap is never mutated.
func (p *Planner) PlanCommand(ctx context.Context, cmd Command, snap document.Snapshot) (*Plan, error) {
	if strings.TrimSpace(cmd.Text) == "" {
		return nil, ErrEmptyCommand
	}

	region, err := document.Resolve(snap, cmd.Scope)
	if err != nil {
		return nil, err
	}

	candidates, err := p.interp.Interpret(ctx, cmd.Text, cmd.Scope, snap)
	if err != nil {
		return nil, fmt.Errorf("interpreter failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	planID := PlanID(cmd.ID)
	plan := NewPlan(planID.String(), cmd, snap.DocumentID())
	plan.CreatedAt = p.clock.Now()

	// Maps interpreter labels to assigned ids of emitted steps.
	labels := make(map[string]string)

	for n, candidate := range candidates {
		prepared, unmet := steps.Prepare(candidate, snap, region)
		if unmet != nil {
			plan.AddWarning(unmet.Warning)
			plan.AddRequirement(unmet.Requirement)
			continue
		}

		if !steps.WithinScope(prepared, cmd.Scope) {
			plan.AddWarning(fmt.Sprintf("ignored step outside %s: %s", cmd.Scope, steps.Describe(prepared)))
			plan.AddRequirement(steps.RequireScope)
			continue
		}

		label := candidate.ID
		prepared.ID = uuid.NewSHA1(planID, []byte("step-"+strconv.Itoa(n+1))).String()
		prepared.DependsOn = dependencies(plan.Steps, prepared, candidate.DependsOn, labels)
		if label != "" {
			labels[label] = prepared.ID
		}
		plan.AddStep(prepared)
	}

	if len(plan.Steps) == 0 {
		plan.AddWarning(NoEditsWarning)
	}

	p.preview(plan, snap)
	plan.Estimate = EstimateFor(len(plan.Steps))
	return plan, nil
}

// dependencies returns the ids of earlier steps s consumes: declared labels
// that resolve to emitted steps, plus every earlier step with an
// overlapping target. Order follows the plan.
func dependencies(earlier []steps.Step, s steps.Step, declared []string, labels map[string]string) []string {
	want := make(map[string]bool)
	for _, label := range declared {
		if id, ok := labels[label]; ok {
			want[id] = true
		}
	}

	target := steps.Target(s)
	var deps []string
	for _, e := range earlier {
		if want[e.ID] || steps.Overlaps(steps.Target(e), target) {
			deps = append(deps, e.ID)
		}
	}
	return deps
}

func (p *Planner) preview(plan *Plan, snap document.Snapshot) {
	work := document.FromSnapshot(snap)
	for i, s := range plan.Steps {
		items, err := steps.Run(s, work)
		if err == nil {
			err = work.ApplyAll(items)
		}
		if err != nil {
			plan.AddWarning(fmt.Sprintf("step %d (%s) could not be previewed: %v", i+1, s.Kind, err))
			continue
		}
		plan.Preview = append(plan.Preview, steps.Record(s, items)...)
	}
}
