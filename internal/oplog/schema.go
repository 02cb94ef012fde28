package oplog

import (
	"time"

	"github.com/danieljhkim/redline/internal/diff"
	"github.com/danieljhkim/redline/internal/planner"
)

// Status classifies an execution result.
type Status string

// Status constants
const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// FailedStep records why one accepted step did not complete.
type FailedStep struct {
	StepID    string `json:"stepId"`
	Reason    string `json:"reason"`
	Retryable bool   `json:"retryable"`
}

// ExecutionResult is the outcome of applying a subset of a plan's steps.
type ExecutionResult struct {
	PlanID         string        `json:"planId"`
	Status         Status        `json:"status"`
	CompletedSteps []string      `json:"completedSteps"`
	FailedSteps    []FailedStep  `json:"failedSteps"`
	Diffs          []diff.Item   `json:"diffs"`
	AppliedAt      time.Time     `json:"appliedAt"`
	Duration       time.Duration `json:"duration"`
}

// Classify derives the status from the completed and failed sets.
// No failures is a success, including when nothing was accepted.
func Classify(completed []string, failed []FailedStep) Status {
	switch {
	case len(failed) == 0:
		return StatusSuccess
	case len(completed) == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// AgentOperation binds a command, its plan and the result of applying it.
// RevertedAt is the only field that changes after creation.
type AgentOperation struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"documentId"`
	Command    planner.Command `json:"command"`
	Plan       *planner.Plan   `json:"plan"`
	Result     ExecutionResult `json:"result"`
	Reversible bool            `json:"reversible"`
	CreatedAt  time.Time       `json:"createdAt"`
	AppliedAt  time.Time       `json:"appliedAt"`
	RevertedAt *time.Time      `json:"revertedAt,omitempty"`

	// SnapshotID identifies the document state right after apply
	SnapshotID string `json:"snapshotId,omitempty"`

	// RevertSnapshotID identifies the document state right after undo
	RevertSnapshotID string `json:"revertSnapshotId,omitempty"`
}

// Reverted reports whether the operation has been undone.
func (op *AgentOperation) Reverted() bool {
	return op.RevertedAt != nil
}
