package engine

import "github.com/danieljhkim/redline/internal/document"

// PlanRequest represents a request to plan a natural-language command.
type PlanRequest struct {
	// DocumentID is the document to edit
	DocumentID string

	// Text is the command text
	Text string

	// Scope is the targeted region (zero value means the whole document)
	Scope document.Scope
}

// ApplyRequest represents a request to apply steps of a stored plan.
type ApplyRequest struct {
	// PlanID is the plan returned by Plan
	PlanID string

	// StepIDs are the accepted steps
	StepIDs []string

	// All accepts every step of the plan; StepIDs is ignored
	All bool
}

// UndoRequest represents a request to revert an operation.
type UndoRequest struct {
	OperationID string
}

// HistoryRequest represents a request to list recorded operations.
type HistoryRequest struct {
	// DocumentID filters by document when set
	DocumentID string

	// Limit caps the number of operations returned (0 means no cap)
	Limit int
}

// ExportRequest represents a request to export the audit log.
type ExportRequest struct {
	// DocumentID filters by document when set
	DocumentID string
}

// SaveRecipeRequest represents a request to save a command template.
type SaveRecipeRequest struct {
	Name     string
	Template string
}

// UpdateRecipeRequest represents a request to change a recipe.
type UpdateRecipeRequest struct {
	// Ref is the recipe ID or name
	Ref string

	// Name and Template are left unchanged when empty
	Name     string
	Template string
}

// RunRecipeRequest represents a request to plan a recipe's template.
type RunRecipeRequest struct {
	DocumentID string

	// Ref is the recipe ID or name
	Ref string

	Scope document.Scope
}

// InitDocumentRequest represents a request to create an empty document.
type InitDocumentRequest struct {
	ID    string
	Title string
}

// ImportDocumentRequest represents a request to import a markdown file.
type ImportDocumentRequest struct {
	// Path is the markdown file to read
	Path string

	// ID defaults to the slug of the file name
	ID string

	// Force replaces an existing document
	Force bool
}
