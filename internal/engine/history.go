package engine

import (
	"context"
	"slices"

	"github.com/danieljhkim/redline/internal/oplog"
)

// History lists recorded operations, newest first.
func (e *Engine) History(ctx context.Context, req *HistoryRequest) (*HistoryResult, error) {
	all, err := e.history.List(ctx)
	if err != nil {
		return nil, err
	}

	ops := make([]oplog.AgentOperation, 0, len(all))
	for _, op := range all {
		if req.DocumentID == "" || op.DocumentID == req.DocumentID {
			ops = append(ops, op)
		}
	}
	slices.Reverse(ops)
	if req.Limit > 0 && len(ops) > req.Limit {
		ops = ops[:req.Limit]
	}

	return &HistoryResult{Operations: ops, Limit: e.history.Limit()}, nil
}

// GetOperation returns one recorded operation.
func (e *Engine) GetOperation(ctx context.Context, id string) (*oplog.AgentOperation, error) {
	return e.history.Get(ctx, id)
}

// ClearHistory drops every recorded operation and pending plan.
func (e *Engine) ClearHistory(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.history.Clear(ctx); err != nil {
		return err
	}
	return e.plans.Clear(ctx)
}

// Export renders the audit log as JSON.
func (e *Engine) Export(ctx context.Context, req *ExportRequest) ([]byte, error) {
	if req.DocumentID != "" {
		return e.audit.ExportDocument(ctx, req.DocumentID)
	}
	return e.audit.Export(ctx)
}
