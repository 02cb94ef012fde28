// Package executor applies an accepted subset of a plan's steps.
//
// Steps run in plan order against a working copy of the live document. A
// failing step never aborts the batch; only steps that depend on a failed
// step are failed in turn. Once every accepted step has resolved, the
// executor builds the audit record and persists it before returning. A
// canceled context before that point leaves no record and no document
// change.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/danieljhkim/redline/internal/clock"
	"github.com/danieljhkim/redline/internal/diff"
	"github.com/danieljhkim/redline/internal/document"
	"github.com/danieljhkim/redline/internal/hash"
	"github.com/danieljhkim/redline/internal/logging"
	"github.com/danieljhkim/redline/internal/oplog"
	"github.com/danieljhkim/redline/internal/planner"
	"github.com/danieljhkim/redline/internal/steps"
)

var (
	// ErrUnknownStep is returned when an accepted id is not in the plan.
	ErrUnknownStep = errors.New("unknown step")

	// ErrDependencyFailed is the cause recorded for steps whose input came
	// from a failed step.
	ErrDependencyFailed = errors.New("dependency failed")

	// ErrDocumentMismatch is returned when the plan targets another document.
	ErrDocumentMismatch = errors.New("plan was computed for a different document")
)

// Recorder persists audit records.
type Recorder interface {
	Put(ctx context.Context, op *oplog.AgentOperation) error
}

// FaultInjector runs before each step. A non-nil error is recorded as that
// step's failure; return a *steps.Error to control the retryable flag.
type FaultInjector func(steps.Step) error

// Option configures an Executor.
type Option func(*Executor)

// WithFaultInjector installs a fault-injection seam.
func WithFaultInjector(f FaultInjector) Option {
	return func(x *Executor) {
		x.fault = f
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(x *Executor) {
		x.log = l
	}
}

// Executor applies plans.
type Executor struct {
	recorder Recorder
	clock    clock.Clock
	hasher   hash.Hasher
	fault    FaultInjector
	log      *logging.Logger
}

// New creates an Executor.
func New(recorder Recorder, clk clock.Clock, hasher hash.Hasher, opts ...Option) *Executor {
	x := &Executor{
		recorder: recorder,
		clock:    clk,
		hasher:   hasher,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Outcome is what ApplyPlan produces. Document is the post-apply working
// copy; the live document passed in is never modified.
type Outcome struct {
	Result    oplog.ExecutionResult
	Operation *oplog.AgentOperation
	Document  *document.Document
}

// ApplyPlan runs the accepted steps of plan against a copy of live and
// persists the resulting operation.
func (x *Executor) ApplyPlan(ctx context.Context, plan *planner.Plan, accepted []string, live *document.Document) (*Outcome, error) {
	if plan.DocumentID != "" && plan.DocumentID != live.ID {
		return nil, fmt.Errorf("%w: plan %s targets %q, not %q", ErrDocumentMismatch, plan.ID, plan.DocumentID, live.ID)
	}

	want, err := acceptedSet(plan, accepted)
	if err != nil {
		return nil, err
	}

	log := x.log.WithPlan(plan.ID).WithDocument(live.ID)
	start := x.clock.Now()
	work := live.Clone()

	completed := []string{}
	failedSteps := []oplog.FailedStep{}
	applied := []diff.Item{}
	failed := make(map[string]bool)

	for _, s := range plan.Steps {
		if !want[s.ID] {
			continue
		}
		if err := ctx.Err(); err != nil {
			log.Debug("apply canceled", "step_id", s.ID)
			return nil, err
		}

		items, next, err := x.runStep(s, work, failed)
		if err != nil {
			failed[s.ID] = true
			failedSteps = append(failedSteps, oplog.FailedStep{
				StepID:    s.ID,
				Reason:    err.Error(),
				Retryable: steps.IsRetryable(err),
			})
			log.WithError(err).Info("step failed", "step_id", s.ID, "kind", s.Kind)
			continue
		}

		work = next
		completed = append(completed, s.ID)
		applied = append(applied, steps.Record(s, items)...)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshotID, err := x.snapshotID(work)
	if err != nil {
		return nil, err
	}

	now := x.clock.Now()
	result := oplog.ExecutionResult{
		PlanID:         plan.ID,
		Status:         oplog.Classify(completed, failedSteps),
		CompletedSteps: completed,
		FailedSteps:    failedSteps,
		Diffs:          applied,
		AppliedAt:      now,
		Duration:       now.Sub(start),
	}
	op := &oplog.AgentOperation{
		ID:         uuid.NewString(),
		DocumentID: live.ID,
		Command:    plan.Command,
		Plan:       plan,
		Result:     result,
		Reversible: plan.Reversible(),
		CreatedAt:  now,
		AppliedAt:  now,
		SnapshotID: snapshotID,
	}

	if err := x.recorder.Put(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to record operation: %w", err)
	}

	log.WithOperation(op.ID).WithDuration(result.Duration).Info("plan applied",
		"status", result.Status,
		"completed", len(completed),
		"failed", len(failedSteps),
	)
	return &Outcome{Result: result, Operation: op, Document: work}, nil
}

// runStep resolves one step. On success it returns the diffs and the
// document with them applied; work itself is left untouched.
func (x *Executor) runStep(s steps.Step, work *document.Document, failed map[string]bool) ([]diff.Item, *document.Document, error) {
	for _, dep := range s.DependsOn {
		if failed[dep] {
			return nil, nil, fmt.Errorf("%w: step %s depends on failed step %s", ErrDependencyFailed, s.ID, dep)
		}
	}

	if x.fault != nil {
		if err := x.fault(s); err != nil {
			return nil, nil, err
		}
	}

	items, err := steps.Run(s, work)
	if err != nil {
		return nil, nil, err
	}

	next := work.Clone()
	if err := next.ApplyAll(items); err != nil {
		return nil, nil, steps.Permanent(err)
	}
	return items, next, nil
}

func (x *Executor) snapshotID(doc *document.Document) (string, error) {
	data, err := doc.Canonical()
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return x.hasher.HashBytes(data), nil
}

// acceptedSet validates accepted against the plan and collapses duplicates.
func acceptedSet(plan *planner.Plan, accepted []string) (map[string]bool, error) {
	known := make(map[string]bool, len(plan.Steps))
	for _, s := range plan.Steps {
		known[s.ID] = true
	}

	want := make(map[string]bool, len(accepted))
	var unknown []string
	for _, id := range accepted {
		if !known[id] {
			unknown = append(unknown, id)
			continue
		}
		want[id] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, strings.Join(unknown, ", "))
	}
	return want, nil
}
