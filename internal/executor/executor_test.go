package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/danieljhkim/redline/internal/clock"
	"github.com/danieljhkim/redline/internal/diff"
	"github.com/danieljhkim/redline/internal/document"
	"github.com/danieljhkim/redline/internal/hash"
	"github.com/danieljhkim/redline/internal/kv"
	"github.com/danieljhkim/redline/internal/oplog"
	"github.com/danieljhkim/redline/internal/planner"
	"github.com/danieljhkim/redline/internal/steps"
)

var epoch = time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)

func testDoc() *document.Document {
	doc := document.New("thesis", "Thesis")
	doc.Set("chapter-1", "Intro [@a2020].")
	doc.Set("chapter-2", "Prior work.\n\nOur method [@b2021].")
	doc.Set("results", "ACME results.")
	doc.AddSource("sales.csv")
	return doc
}

type fixture struct {
	clock *clock.FakeClock
	store *oplog.Store
	kv    *kv.MemStore
}

func newFixture() *fixture {
	clk := clock.NewFakeClock(epoch)
	clk.AutoAdvance(time.Second)
	backend := kv.NewMemStore()
	return &fixture{clock: clk, store: oplog.NewStore(backend, 10, nil), kv: backend}
}

func (f *fixture) plan(t *testing.T, doc *document.Document, out ...steps.Step) *planner.Plan {
	t.Helper()
	interp := planner.InterpreterFunc(func(context.Context, string, document.Scope, document.Snapshot) ([]steps.Step, error) {
		return out, nil
	})
	cmd := planner.Command{ID: "cmd", Text: "edit", Scope: document.WholeDocument(), CreatedAt: epoch}
	plan, err := planner.New(interp, f.clock).PlanCommand(context.Background(), cmd, doc)
	if err != nil {
		t.Fatalf("PlanCommand failed: %v", err)
	}
	if len(plan.Steps) != len(out) {
		t.Fatalf("planner dropped steps: %v", plan.Warnings)
	}
	return plan
}

func (f *fixture) executor(opts ...Option) *Executor {
	return New(f.store, f.clock, hash.NewSHA256Hasher(), opts...)
}

func TestApplyPlan_SplitSucceeds(t *testing.T) {
	f := newFixture()
	doc := testDoc()
	plan := f.plan(t, doc, steps.Split("chapter-2", "related-work", "methodology"))

	out, err := f.executor().ApplyPlan(context.Background(), plan, plan.StepIDs(), doc)
	if err != nil {
		t.Fatalf("ApplyPlan failed: %v", err)
	}

	if out.Result.Status != oplog.StatusSuccess {
		t.Errorf("status = %s, want success", out.Result.Status)
	}
	if !out.Operation.Reversible {
		t.Error("operation should be reversible")
	}
	if len(out.Result.Diffs) != 1 || out.Result.Diffs[0].Category != diff.CategoryStructure {
		t.Errorf("diffs = %+v", out.Result.Diffs)
	}
	if out.Operation.SnapshotID == "" || out.Result.Duration <= 0 {
		t.Errorf("operation missing snapshot or duration: %+v", out.Operation)
	}

	stored, err := f.store.Get(context.Background(), out.Operation.ID)
	if err != nil {
		t.Fatalf("operation not persisted: %v", err)
	}
	if stored.Result.Status != oplog.StatusSuccess || stored.Plan.ID != plan.ID {
		t.Errorf("stored operation = %+v", stored)
	}

	n, _ := out.Document.Node("chapter-2")
	if !strings.Contains(n.Text, "### Related Work") {
		t.Errorf("working copy not updated: %q", n.Text)
	}
	live, _ := doc.Node("chapter-2")
	if strings.Contains(live.Text, "###") {
		t.Error("live document was mutated")
	}
}

func TestApplyPlan_UnknownStep(t *testing.T) {
	f := newFixture()
	doc := testDoc()
	plan := f.plan(t, doc, steps.CitationFormat("APA"))

	_, err := f.executor().ApplyPlan(context.Background(), plan, []string{plan.Steps[0].ID, "bogus"}, doc)
	if !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("expected ErrUnknownStep, got %v", err)
	}
	ops, _ := f.store.List(context.Background())
	if len(ops) != 0 {
		t.Error("nothing should be persisted for an unknown step")
	}
}

func TestApplyPlan_DocumentMismatch(t *testing.T) {
	f := newFixture()
	plan := f.plan(t, testDoc(), steps.CitationFormat("APA"))

	other := testDoc()
	other.ID = "other"
	if _, err := f.executor().ApplyPlan(context.Background(), plan, plan.StepIDs(), other); !errors.Is(err, ErrDocumentMismatch) {
		t.Fatalf("expected ErrDocumentMismatch, got %v", err)
	}
}

func TestApplyPlan_DuplicatesCollapsed(t *testing.T) {
	f := newFixture()
	doc := testDoc()
	plan := f.plan(t, doc, steps.CitationFormat("APA"))
	id := plan.Steps[0].ID

	out, err := f.executor().ApplyPlan(context.Background(), plan, []string{id, id}, doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Result.CompletedSteps) != 1 {
		t.Errorf("completed = %v", out.Result.CompletedSteps)
	}
}

func TestApplyPlan_IndependentStepsContinueAfterFailure(t *testing.T) {
	f := newFixture()
	doc := testDoc()
	plan := f.plan(t, doc,
		steps.Rewrite("chapter-1", "New intro [@a2020]."),
		steps.Rewrite("results", "New results."),
	)
	first := plan.Steps[0].ID

	x := f.executor(WithFaultInjector(func(s steps.Step) error {
		if s.ID == first {
			return steps.Transient(errors.New("model timeout"))
		}
		return nil
	}))
	out, err := x.ApplyPlan(context.Background(), plan, plan.StepIDs(), doc)
	if err != nil {
		t.Fatal(err)
	}

	if out.Result.Status != oplog.StatusPartial {
		t.Errorf("status = %s, want partial", out.Result.Status)
	}
	if len(out.Result.FailedSteps) != 1 || !out.Result.FailedSteps[0].Retryable {
		t.Errorf("failed = %+v", out.Result.FailedSteps)
	}
	if fmt.Sprint(out.Result.CompletedSteps) != fmt.Sprint([]string{plan.Steps[1].ID}) {
		t.Errorf("completed = %v", out.Result.CompletedSteps)
	}
	if n, _ := out.Document.Node("chapter-1"); n.Text != "Intro [@a2020]." {
		t.Errorf("failed step changed the document: %q", n.Text)
	}
}

func TestApplyPlan_DependencyFailedIsTransitive(t *testing.T) {
	f := newFixture()
	doc := testDoc()
	doc.Set("results", "One.\n\nTwo.")
	plan := f.plan(t, doc,
		steps.Split("results", "overview", "detail"),
		steps.FigureInsert("results", "sales.csv", ""),
		steps.RewriteRange("results", 0, 3, "Uno"),
		steps.CitationFormat("APA"),
	)
	split := plan.Steps[0].ID

	x := f.executor(WithFaultInjector(func(s steps.Step) error {
		if s.ID == split {
			return errors.New("injected")
		}
		return nil
	}))
	out, err := x.ApplyPlan(context.Background(), plan, plan.StepIDs(), doc)
	if err != nil {
		t.Fatal(err)
	}

	if len(out.Result.FailedSteps) != 3 {
		t.Fatalf("failed = %+v", out.Result.FailedSteps)
	}
	for _, fs := range out.Result.FailedSteps[1:] {
		if fs.Retryable || !strings.Contains(fs.Reason, ErrDependencyFailed.Error()) {
			t.Errorf("dependent failure = %+v", fs)
		}
	}
	if fmt.Sprint(out.Result.CompletedSteps) != fmt.Sprint([]string{plan.Steps[3].ID}) {
		t.Errorf("independent step should complete, completed = %v", out.Result.CompletedSteps)
	}
}

func TestApplyPlan_AllFailed(t *testing.T) {
	f := newFixture()
	doc := testDoc()
	plan := f.plan(t, doc, steps.CitationFormat("APA"))

	x := f.executor(WithFaultInjector(func(steps.Step) error { return errors.New("down") }))
	out, err := x.ApplyPlan(context.Background(), plan, plan.StepIDs(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if out.Result.Status != oplog.StatusFailed {
		t.Errorf("status = %s, want failed", out.Result.Status)
	}
	if out.Result.FailedSteps[0].Retryable {
		t.Error("plain errors are not retryable")
	}
}

func TestApplyPlan_RevalidatesAgainstLiveDocument(t *testing.T) {
	f := newFixture()
	doc := testDoc()
	plan := f.plan(t, doc, steps.FigureInsert("results", "sales.csv", ""))

	// The section disappears between planning and applying.
	live := document.New(doc.ID, doc.Title)
	live.Set("chapter-1", "Intro.")
	live.AddSource("sales.csv")

	out, err := f.executor().ApplyPlan(context.Background(), plan, plan.StepIDs(), live)
	if err != nil {
		t.Fatal(err)
	}
	if out.Result.Status != oplog.StatusFailed {
		t.Fatalf("status = %s, want failed", out.Result.Status)
	}
	if !strings.Contains(out.Result.FailedSteps[0].Reason, "precondition") {
		t.Errorf("reason = %q", out.Result.FailedSteps[0].Reason)
	}
}

func TestApplyPlan_EmptyAcceptance(t *testing.T) {
	f := newFixture()
	doc := testDoc()
	plan := f.plan(t, doc, steps.CitationFormat("APA"))

	out, err := f.executor().ApplyPlan(context.Background(), plan, nil, doc)
	if err != nil {
		t.Fatal(err)
	}
	if out.Result.Status != oplog.StatusSuccess || len(out.Result.CompletedSteps) != 0 {
		t.Errorf("result = %+v", out.Result)
	}
}

func TestApplyPlan_SubsetProperties(t *testing.T) {
	doc := testDoc()
	out := []steps.Step{
		steps.CitationFormat("APA"),
		steps.Rewrite("results", "Fresh."),
		steps.FigureInsert("chapter-2", "sales.csv", ""),
	}

	for mask := 0; mask < 1<<len(out); mask++ {
		for _, faulty := range []int{-1, 0, 1, 2} {
			f := newFixture()
			plan := f.plan(t, doc, out...)

			var accepted []string
			for i, s := range plan.Steps {
				if mask&(1<<i) != 0 {
					accepted = append(accepted, s.ID)
				}
			}
			x := f.executor(WithFaultInjector(func(s steps.Step) error {
				if faulty >= 0 && s.ID == plan.Steps[faulty].ID {
					return errors.New("injected")
				}
				return nil
			}))

			res, err := x.ApplyPlan(context.Background(), plan, accepted, doc)
			if err != nil {
				t.Fatalf("mask %b: %v", mask, err)
			}

			inAccepted := make(map[string]bool)
			for _, id := range accepted {
				inAccepted[id] = true
			}
			done := make(map[string]bool)
			for _, id := range res.Result.CompletedSteps {
				if !inAccepted[id] {
					t.Errorf("mask %b: completed %s was not accepted", mask, id)
				}
				done[id] = true
			}
			for _, fs := range res.Result.FailedSteps {
				if done[fs.StepID] {
					t.Errorf("mask %b: %s both completed and failed", mask, fs.StepID)
				}
			}
			if want := oplog.Classify(res.Result.CompletedSteps, res.Result.FailedSteps); res.Result.Status != want {
				t.Errorf("mask %b: status %s, want %s", mask, res.Result.Status, want)
			}
		}
	}
}

func TestApplyPlan_CanceledLeavesNoRecord(t *testing.T) {
	f := newFixture()
	doc := testDoc()
	plan := f.plan(t, doc, steps.CitationFormat("APA"), steps.Rewrite("results", "X."))
	before, _ := doc.Canonical()

	ctx, cancel := context.WithCancel(context.Background())
	x := f.executor(WithFaultInjector(func(steps.Step) error {
		cancel()
		return nil
	}))

	if _, err := x.ApplyPlan(ctx, plan, plan.StepIDs(), doc); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	ops, _ := f.store.List(context.Background())
	if len(ops) != 0 {
		t.Error("canceled apply left an audit record")
	}
	after, _ := doc.Canonical()
	if !bytes.Equal(before, after) {
		t.Error("canceled apply changed the live document")
	}
}

func TestApplyPlan_StorageFailureIsFatal(t *testing.T) {
	f := newFixture()
	doc := testDoc()
	plan := f.plan(t, doc, steps.CitationFormat("APA"))

	f.kv.SetFailPuts(errors.New("disk full"))
	_, err := f.executor().ApplyPlan(context.Background(), plan, plan.StepIDs(), doc)
	if !errors.Is(err, oplog.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestApplyPlan_RedactIsNotReversible(t *testing.T) {
	f := newFixture()
	doc := testDoc()
	plan := f.plan(t, doc, steps.Redact("ACME", document.WholeDocument()))

	out, err := f.executor().ApplyPlan(context.Background(), plan, plan.StepIDs(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if out.Operation.Reversible {
		t.Error("redaction must not be reversible")
	}
	for _, it := range out.Result.Diffs {
		if strings.Contains(it.Before, "ACME") {
			t.Errorf("audit record retains redacted text: %+v", it)
		}
	}
}
