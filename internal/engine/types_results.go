package engine

import (
	"github.com/danieljhkim/redline/internal/diff"
	"github.com/danieljhkim/redline/internal/document"
	"github.com/danieljhkim/redline/internal/oplog"
	"github.com/danieljhkim/redline/internal/planner"
	"github.com/danieljhkim/redline/internal/recipes"
)

// PlanResult represents a computed, stored plan.
type PlanResult struct {
	Plan *planner.Plan `json:"plan"`
}

// ApplyResult represents the result of applying a plan.
type ApplyResult struct {
	// Result is the execution outcome
	Result oplog.ExecutionResult `json:"result"`

	// OperationID identifies the recorded operation for undo
	OperationID string `json:"operationId"`

	// Reversible reports whether the operation can be undone
	Reversible bool `json:"reversible"`

	// SnapshotID is the hash of the document after the apply
	SnapshotID string `json:"snapshotId"`
}

// UndoResult represents the result of reverting an operation.
type UndoResult struct {
	OperationID string      `json:"operationId"`
	Reverted    []diff.Item `json:"reverted"`

	// SnapshotID is the hash of the document after the undo
	SnapshotID string `json:"snapshotId"`
}

// HistoryResult lists recorded operations, newest first.
type HistoryResult struct {
	Operations []oplog.AgentOperation `json:"operations"`
	Limit      int                    `json:"limit"`
}

// RecipeListResult lists saved recipes.
type RecipeListResult struct {
	Recipes []recipes.Recipe `json:"recipes"`
}

// DocumentResult carries a loaded document.
type DocumentResult struct {
	Document *document.Document `json:"document"`
}

// DocumentListResult lists stored document IDs.
type DocumentListResult struct {
	IDs []string `json:"ids"`
}
