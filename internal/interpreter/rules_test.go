package interpreter

import (
	"context"
	"reflect"
	"testing"

	"github.com/danieljhkim/redline/internal/document"
	"github.com/danieljhkim/redline/internal/steps"
)

func testDoc() *document.Document {
	doc := document.New("thesis", "Thesis")
	doc.Set("introduction", "Intro [@a2020].")
	doc.Set("chapter-2", "Prior work.\n\nMethod.")
	doc.Set("results", "ACME numbers.")
	return doc
}

func interpret(t *testing.T, text string, scope document.Scope, doc *document.Document) []steps.Step {
	t.Helper()
	out, err := NewRules().Interpret(context.Background(), text, scope, doc)
	if err != nil {
		t.Fatalf("Interpret(%q) failed: %v", text, err)
	}
	return out
}

func TestRules_Split(t *testing.T) {
	out := interpret(t, "split chapter 2 into related-work and methodology", document.Section("chapter-2"), testDoc())
	want := []steps.Step{steps.Split("chapter-2", "related-work", "methodology")}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("got %+v, want %+v", out, want)
	}

	out = interpret(t, "Split this into Background, Scope, and Goals.", document.Section("introduction"), testDoc())
	want = []steps.Step{steps.Split("introduction", "background", "scope", "goals")}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("got %+v, want %+v", out, want)
	}
}

func TestRules_CitationFormat(t *testing.T) {
	out := interpret(t, "unify citations to APA", document.WholeDocument(), testDoc())
	if len(out) != 1 || out[0].Kind != steps.KindCitationFormat || out[0].CitationFormat.To != "APA" {
		t.Errorf("got %+v", out)
	}
}

func TestRules_FigureInsert(t *testing.T) {
	doc := testDoc()

	tests := []struct {
		name   string
		text   string
		scope  document.Scope
		source []string
		want   steps.Step
	}{
		{
			name: "generic source without declarations",
			text: "insert a chart from the data",
			want: steps.FigureInsert("results", "", ""),
		},
		{
			name:   "generic source with one declaration",
			text:   "insert a chart from the data",
			source: []string{"sales.csv"},
			want:   steps.FigureInsert("results", "sales.csv", ""),
		},
		{
			name:   "named source, target and caption",
			text:   `add a figure from sales.csv into chapter 2 captioned "Q3 revenue"`,
			source: []string{"sales.csv", "costs.csv"},
			want:   steps.FigureInsert("chapter-2", "sales.csv", "Q3 revenue"),
		},
		{
			name:  "undeclared source kept verbatim",
			text:  "insert a graph from crm-export",
			scope: document.Section("introduction"),
			want:  steps.FigureInsert("introduction", "crm-export", ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := doc.Clone()
			for _, s := range tt.source {
				d.AddSource(s)
			}
			scope := tt.scope
			if scope.Kind == "" {
				scope = document.WholeDocument()
			}
			out := interpret(t, tt.text, scope, d)
			if len(out) != 1 || !reflect.DeepEqual(out[0], tt.want) {
				t.Errorf("got %+v, want %+v", out, tt.want)
			}
		})
	}
}

func TestRules_Rewrite(t *testing.T) {
	out := interpret(t, "rewrite results as Revenue doubled.", document.WholeDocument(), testDoc())
	want := []steps.Step{steps.Rewrite("results", "Revenue doubled.")}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("got %+v, want %+v", out, want)
	}

	out = interpret(t, "rewrite this as Quick summary", document.Selection("chapter-2", 0, 5), testDoc())
	want = []steps.Step{steps.RewriteRange("chapter-2", 0, 5, "Quick summary")}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("got %+v, want %+v", out, want)
	}
}

func TestRules_RedactAndChaining(t *testing.T) {
	scope := document.Section("results")
	out := interpret(t, `unify citations to MLA; redact "ACME"`, scope, testDoc())
	want := []steps.Step{steps.CitationFormat("MLA"), steps.Redact("ACME", scope)}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("got %+v, want %+v", out, want)
	}
}

func TestRules_Unrecognized(t *testing.T) {
	if out := interpret(t, "make it sparkle", document.WholeDocument(), testDoc()); len(out) != 0 {
		t.Errorf("expected no steps, got %+v", out)
	}
}

func TestRules_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRules().Interpret(ctx, "redact x", document.WholeDocument(), testDoc()); err == nil {
		t.Error("expected context error")
	}
}
