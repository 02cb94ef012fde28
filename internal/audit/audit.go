// Package audit exports the operation history as a portable JSON report.
//
// The report lists operations in store order. Identical history and clock
// produce byte-identical output, so exports can be diffed across runs.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danieljhkim/redline/internal/clock"
	"github.com/danieljhkim/redline/internal/oplog"
)

// Lister provides the operation history in store order.
type Lister interface {
	List(ctx context.Context) ([]oplog.AgentOperation, error)
}

// Report is the exported document.
type Report struct {
	ExportedAt      string  `json:"exportedAt"`
	TotalOperations int     `json:"totalOperations"`
	Operations      []Entry `json:"operations"`
}

// Entry summarizes one operation.
type Entry struct {
	ID             string       `json:"id"`
	DocumentID     string       `json:"documentId"`
	Command        string       `json:"command"`
	Scope          string       `json:"scope"`
	StepsCompleted int          `json:"stepsCompleted"`
	StepsTotal     int          `json:"stepsTotal"`
	Status         oplog.Status `json:"status"`
	Duration       string       `json:"duration"`
	CreatedAt      string       `json:"createdAt"`
	AppliedAt      string       `json:"appliedAt"`
	RevertedAt     string       `json:"revertedAt,omitempty"`
}

// Exporter builds reports.
type Exporter struct {
	source Lister
	clock  clock.Clock
}

// NewExporter creates an Exporter.
func NewExporter(source Lister, clk clock.Clock) *Exporter {
	return &Exporter{source: source, clock: clk}
}

// Build returns the report for every operation, or only those of
// documentID when it is non-empty.
func (e *Exporter) Build(ctx context.Context, documentID string) (*Report, error) {
	ops, err := e.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}

	report := &Report{
		ExportedAt: timestamp(e.clock.Now()),
		Operations: []Entry{},
	}
	for i := range ops {
		if documentID != "" && ops[i].DocumentID != documentID {
			continue
		}
		report.Operations = append(report.Operations, entryFor(&ops[i]))
	}
	report.TotalOperations = len(report.Operations)
	return report, nil
}

// Export returns the JSON report for the whole history.
func (e *Exporter) Export(ctx context.Context) ([]byte, error) {
	return e.ExportDocument(ctx, "")
}

// ExportDocument returns the JSON report for one document, or for all
// documents when documentID is empty.
func (e *Exporter) ExportDocument(ctx context.Context, documentID string) ([]byte, error) {
	report, err := e.Build(ctx, documentID)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

func entryFor(op *oplog.AgentOperation) Entry {
	total := 0
	scope := op.Command.Scope.String()
	if op.Plan != nil {
		total = len(op.Plan.Steps)
		scope = op.Plan.Scope.String()
	}

	entry := Entry{
		ID:             op.ID,
		DocumentID:     op.DocumentID,
		Command:        op.Command.Text,
		Scope:          scope,
		StepsCompleted: len(op.Result.CompletedSteps),
		StepsTotal:     total,
		Status:         op.Result.Status,
		Duration:       op.Result.Duration.String(),
		CreatedAt:      timestamp(op.CreatedAt),
		AppliedAt:      timestamp(op.AppliedAt),
	}
	if op.RevertedAt != nil {
		entry.RevertedAt = timestamp(*op.RevertedAt)
	}
	return entry
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
