// Package undo reverts applied operations by inverting their diffs.
//
// An operation moves from applied to reverted exactly once. Preconditions
// are checked in order: the operation exists, it is reversible, and it has
// not been reverted yet. Inverted diffs are applied in reverse order to a
// copy of the live document; any failure aborts the whole undo.
package undo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danieljhkim/redline/internal/clock"
	"github.com/danieljhkim/redline/internal/diff"
	"github.com/danieljhkim/redline/internal/document"
	"github.com/danieljhkim/redline/internal/hash"
	"github.com/danieljhkim/redline/internal/logging"
	"github.com/danieljhkim/redline/internal/oplog"
)

var (
	// ErrOperationNotFound is returned when the history has no such operation.
	ErrOperationNotFound = errors.New("operation not found")

	// ErrNotReversible is returned for operations containing non-reversible steps.
	ErrNotReversible = errors.New("operation is not reversible")

	// ErrAlreadyReverted is returned when undoing an operation twice.
	ErrAlreadyReverted = errors.New("operation already reverted")

	// ErrInversionFailed is returned when the inverted diffs cannot be
	// applied to the live document.
	ErrInversionFailed = errors.New("inversion failed")

	// ErrWrongDocument is returned when the operation belongs to another document.
	ErrWrongDocument = errors.New("operation belongs to a different document")
)

// History is the subset of the operation store undo needs.
type History interface {
	Get(ctx context.Context, id string) (*oplog.AgentOperation, error)
	MarkReverted(ctx context.Context, id string, at time.Time, snapshotID string) error
}

// Manager performs undos.
type Manager struct {
	history History
	clock   clock.Clock
	hasher  hash.Hasher
	log     *logging.Logger
}

// New creates a Manager.
func New(history History, clk clock.Clock, hasher hash.Hasher, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{history: history, clock: clk, hasher: hasher, log: log}
}

// Outcome is a computed undo. Document is the post-undo copy; the live
// document is never modified.
type Outcome struct {
	Operation  *oplog.AgentOperation
	Reverted   []diff.Item
	SnapshotID string
	Document   *document.Document
}

// Undo prepares and commits an undo of the operation with id.
func (m *Manager) Undo(ctx context.Context, id string, live *document.Document) (*Outcome, error) {
	out, err := m.Prepare(ctx, id, live)
	if err != nil {
		return nil, err
	}
	if err := m.Commit(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Prepare checks preconditions and computes the reverted document without
// recording anything.
func (m *Manager) Prepare(ctx context.Context, id string, live *document.Document) (*Outcome, error) {
	op, err := m.history.Get(ctx, id)
	if errors.Is(err, oplog.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if !op.Reversible {
		return nil, fmt.Errorf("%w: %s", ErrNotReversible, id)
	}
	if op.Reverted() {
		return nil, fmt.Errorf("%w: %s at %s", ErrAlreadyReverted, id, op.RevertedAt.Format(time.RFC3339))
	}
	if op.DocumentID != live.ID {
		return nil, fmt.Errorf("%w: %s belongs to %q", ErrWrongDocument, id, op.DocumentID)
	}

	inverted, err := diff.InvertAll(op.Result.Diffs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInversionFailed, err)
	}

	work := live.Clone()
	if err := work.ApplyAll(inverted); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInversionFailed, err)
	}

	data, err := work.Canonical()
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	return &Outcome{
		Operation:  op,
		Reverted:   inverted,
		SnapshotID: m.hasher.HashBytes(data),
		Document:   work,
	}, nil
}

// Commit records the undo in the history. A canceled context leaves the
// operation unreverted.
func (m *Manager) Commit(ctx context.Context, out *Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := m.clock.Now()
	err := m.history.MarkReverted(ctx, out.Operation.ID, now, out.SnapshotID)
	switch {
	case errors.Is(err, oplog.ErrAlreadyReverted):
		return fmt.Errorf("%w: %s", ErrAlreadyReverted, out.Operation.ID)
	case errors.Is(err, oplog.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrOperationNotFound, out.Operation.ID)
	case err != nil:
		return fmt.Errorf("failed to record undo: %w", err)
	}

	out.Operation.RevertedAt = &now
	out.Operation.RevertSnapshotID = out.SnapshotID
	m.log.WithOperation(out.Operation.ID).Info("operation reverted", "diffs", len(out.Reverted))
	return nil
}
