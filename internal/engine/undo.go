package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/danieljhkim/redline/internal/oplog"
	"github.com/danieljhkim/redline/internal/undo"
)

// Undo reverts a recorded operation.
//
// The reverted document is saved before the operation is marked reverted.
// If marking fails, the previous document is restored.
func (e *Engine) Undo(ctx context.Context, req *UndoRequest) (*UndoResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	op, err := e.history.Get(ctx, req.OperationID)
	if errors.Is(err, oplog.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", undo.ErrOperationNotFound, req.OperationID)
	}
	if err != nil {
		return nil, err
	}

	live, err := e.docs.Load(op.DocumentID)
	if err != nil {
		return nil, err
	}

	out, err := e.undo.Prepare(ctx, op.ID, live)
	if err != nil {
		return nil, err
	}

	if err := e.docs.Save(out.Document); err != nil {
		return nil, fmt.Errorf("%w: failed to save document: %w", ErrStorage, err)
	}

	if err := e.undo.Commit(ctx, out); err != nil {
		if restoreErr := e.docs.Save(live); restoreErr != nil {
			e.log.WithOperation(op.ID).WithError(restoreErr).Error("failed to restore document after undo failure")
		}
		return nil, err
	}

	return &UndoResult{
		OperationID: op.ID,
		Reverted:    out.Reverted,
		SnapshotID:  out.SnapshotID,
	}, nil
}
