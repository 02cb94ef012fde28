package undo

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danieljhkim/redline/internal/clock"
	"github.com/danieljhkim/redline/internal/diff"
	"github.com/danieljhkim/redline/internal/document"
	"github.com/danieljhkim/redline/internal/executor"
	"github.com/danieljhkim/redline/internal/hash"
	"github.com/danieljhkim/redline/internal/kv"
	"github.com/danieljhkim/redline/internal/oplog"
	"github.com/danieljhkim/redline/internal/planner"
	"github.com/danieljhkim/redline/internal/steps"
)

var epoch = time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)

type fixture struct {
	clock   *clock.FakeClock
	store   *oplog.Store
	manager *Manager
}

func newFixture() *fixture {
	clk := clock.NewFakeClock(epoch)
	clk.AutoAdvance(time.Second)
	store := oplog.NewStore(kv.NewMemStore(), 10, nil)
	return &fixture{
		clock:   clk,
		store:   store,
		manager: New(store, clk, hash.NewSHA256Hasher(), nil),
	}
}

func testDoc() *document.Document {
	doc := document.New("paper", "Paper")
	doc.Set("chapter-1", "Intro [@a2020].")
	doc.Set("chapter-2", "Prior work.\n\nOur method [@b2021].")
	doc.Set("results", "ACME did well.")
	doc.AddSource("sales.csv")
	return doc
}

// apply plans and applies out against doc, returning the operation and
// the post-apply document.
func (f *fixture) apply(t *testing.T, doc *document.Document, out ...steps.Step) (*oplog.AgentOperation, *document.Document) {
	t.Helper()
	interp := planner.InterpreterFunc(func(context.Context, string, document.Scope, document.Snapshot) ([]steps.Step, error) {
		return out, nil
	})
	cmd := planner.Command{ID: "cmd-" + t.Name(), Text: "edit", Scope: document.WholeDocument(), CreatedAt: epoch}
	plan, err := planner.New(interp, f.clock).PlanCommand(context.Background(), cmd, doc)
	if err != nil {
		t.Fatal(err)
	}
	res, err := executor.New(f.store, f.clock, hash.NewSHA256Hasher()).ApplyPlan(context.Background(), plan, plan.StepIDs(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Result.Status != oplog.StatusSuccess {
		t.Fatalf("apply status = %s: %+v", res.Result.Status, res.Result.FailedSteps)
	}
	return res.Operation, res.Document
}

func TestUndo_RoundTrip(t *testing.T) {
	f := newFixture()
	original := testDoc()
	op, applied := f.apply(t, original, steps.Split("chapter-2", "related-work", "methodology"))

	out, err := f.manager.Undo(context.Background(), op.ID, applied)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	if len(out.Reverted) != len(op.Result.Diffs) {
		t.Fatalf("reverted %d diffs, want %d", len(out.Reverted), len(op.Result.Diffs))
	}
	for i, inv := range out.Reverted {
		orig := op.Result.Diffs[len(op.Result.Diffs)-1-i]
		if !diff.IsInverse(inv, orig) {
			t.Errorf("diff %d is not the structural inverse:\n%+v\n%+v", i, inv, orig)
		}
	}

	want, _ := original.Canonical()
	got, _ := out.Document.Canonical()
	if !bytes.Equal(want, got) {
		t.Errorf("undo did not restore the original document")
	}
	if out.SnapshotID != hash.NewSHA256Hasher().HashBytes(want) {
		t.Error("snapshot id does not match the restored document")
	}

	stored, _ := f.store.Get(context.Background(), op.ID)
	if stored.RevertedAt == nil || stored.RevertSnapshotID != out.SnapshotID {
		t.Errorf("revert not persisted: %+v", stored)
	}

	_, err = f.manager.Undo(context.Background(), op.ID, out.Document)
	if !errors.Is(err, ErrAlreadyReverted) {
		t.Errorf("second undo: expected ErrAlreadyReverted, got %v", err)
	}
}

func TestUndo_MultiStepUnwindsInReverse(t *testing.T) {
	f := newFixture()
	original := testDoc()
	op, applied := f.apply(t, original,
		steps.FigureInsert("results", "sales.csv", "Sales"),
		steps.FigureInsert("results", "sales.csv", "More sales"),
		steps.CitationFormat("APA"),
		steps.Rewrite("chapter-1", "Intro, rewritten [@a2020]."),
	)

	out, err := f.manager.Undo(context.Background(), op.ID, applied)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	kinds := map[diff.Kind]int{}
	for _, it := range out.Reverted {
		kinds[it.Kind]++
	}
	if kinds[diff.KindDelete] != 3 || kinds[diff.KindModify] != 1 {
		t.Errorf("reverted kinds = %v", kinds)
	}

	want, _ := original.Canonical()
	got, _ := out.Document.Canonical()
	if !bytes.Equal(want, got) {
		t.Errorf("document not restored:\n%s\n%s", want, got)
	}
}

func TestUndo_Preconditions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	if _, err := f.manager.Undo(ctx, "missing", testDoc()); !errors.Is(err, ErrOperationNotFound) {
		t.Errorf("expected ErrOperationNotFound, got %v", err)
	}

	redacted, doc := f.apply(t, testDoc(), steps.Redact("ACME", document.WholeDocument()))
	if _, err := f.manager.Undo(ctx, redacted.ID, doc); !errors.Is(err, ErrNotReversible) {
		t.Errorf("expected ErrNotReversible, got %v", err)
	}

	// A reverted, non-reversible operation reports NotReversible first.
	if err := f.store.MarkReverted(ctx, redacted.ID, epoch, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.manager.Undo(ctx, redacted.ID, doc); !errors.Is(err, ErrNotReversible) {
		t.Errorf("expected ErrNotReversible before ErrAlreadyReverted, got %v", err)
	}

	op, applied := f.apply(t, testDoc(), steps.CitationFormat("MLA"))
	other := applied.Clone()
	other.ID = "other"
	if _, err := f.manager.Undo(ctx, op.ID, other); !errors.Is(err, ErrWrongDocument) {
		t.Errorf("expected ErrWrongDocument, got %v", err)
	}
}

func TestUndo_InversionFailureChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	op, applied := f.apply(t, testDoc(), steps.Rewrite("results", "Globex did well."))

	// Someone edited the node after the operation was applied.
	drifted := applied.Clone()
	drifted.Set("results", "Initech did well.")
	before, _ := drifted.Canonical()

	_, err := f.manager.Undo(ctx, op.ID, drifted)
	if !errors.Is(err, ErrInversionFailed) || !errors.Is(err, document.ErrStale) {
		t.Fatalf("expected ErrInversionFailed wrapping ErrStale, got %v", err)
	}

	after, _ := drifted.Canonical()
	if !bytes.Equal(before, after) {
		t.Error("failed undo modified the live document")
	}
	stored, _ := f.store.Get(ctx, op.ID)
	if stored.Reverted() {
		t.Error("failed undo marked the operation reverted")
	}
}

func TestUndo_CanceledBeforeCommit(t *testing.T) {
	f := newFixture()
	op, applied := f.apply(t, testDoc(), steps.CitationFormat("APA"))

	ctx, cancel := context.WithCancel(context.Background())
	out, err := f.manager.Prepare(ctx, op.ID, applied)
	if err != nil {
		t.Fatal(err)
	}
	cancel()

	if err := f.manager.Commit(ctx, out); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	stored, _ := f.store.Get(context.Background(), op.ID)
	if stored.Reverted() {
		t.Error("canceled undo marked the operation reverted")
	}
}
