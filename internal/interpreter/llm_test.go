package interpreter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/danieljhkim/redline/internal/document"
	"github.com/danieljhkim/redline/internal/steps"
)

// fakeModel implements llms.Model with a canned answer.
type fakeModel struct {
	answer   string
	err      error
	messages []llms.MessageContent
	options  llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, opt := range options {
		opt(&f.options)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.answer}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func promptText(m llms.MessageContent) string {
	var b strings.Builder
	for _, p := range m.Parts {
		if tc, ok := p.(llms.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func TestLLM_Interpret(t *testing.T) {
	model := &fakeModel{answer: `{"steps": [
		{"id": "a", "kind": "structure.split", "description": "split", "split": {"sectionId": "chapter-2", "into": ["related-work", "methodology"]}},
		{"kind": "style.citationFormat", "description": "apa", "dependsOn": ["a"], "citationFormat": {"to": "APA"}}
	]}`}

	doc := testDoc()
	doc.AddSource("sales.csv")
	out, err := NewLLM(model).Interpret(context.Background(), "split and unify", document.Section("chapter-2"), doc)
	if err != nil {
		t.Fatalf("Interpret failed: %v", err)
	}

	if len(out) != 2 || out[0].Split.SectionID != "chapter-2" || out[1].CitationFormat.To != "APA" {
		t.Fatalf("unexpected steps: %+v", out)
	}
	if out[0].ID != "a" || len(out[1].DependsOn) != 1 {
		t.Errorf("labels not preserved: %+v", out)
	}

	if !model.options.JSONMode {
		t.Error("expected JSON mode")
	}
	if len(model.messages) != 2 || model.messages[0].Role != llms.ChatMessageTypeSystem {
		t.Fatalf("unexpected messages: %+v", model.messages)
	}
	user := promptText(model.messages[1])
	for _, want := range []string{"split and unify", "section:chapter-2", "chapter-2", "sales.csv"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestLLM_ModelError(t *testing.T) {
	model := &fakeModel{err: errors.New("rate limited")}
	_, err := NewLLM(model).Interpret(context.Background(), "x", document.WholeDocument(), testDoc())
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("expected wrapped model error, got %v", err)
	}
}

func TestParseSteps(t *testing.T) {
	tests := []struct {
		name    string
		content string
		n       int
		wantErr bool
	}{
		{"bare array", `[{"kind": "content.redact", "redact": {"term": "ACME", "scope": {"kind": "document"}}}]`, 1, false},
		{"fenced", "```json\n{\"steps\": []}\n```", 0, false},
		{"empty object", `{"steps": []}`, 0, false},
		{"unknown field", `{"steps": [{"kind": "content.rewrite", "rewrite": {"path": "x", "text": "y"}, "confidence": 0.9}]}`, 0, true},
		{"missing kind", `{"steps": [{"description": "?"}]}`, 0, true},
		{"prose", `Sure! Here are your steps.`, 0, true},
		{"trailing data", `{"steps": []} {"steps": []}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ParseSteps(tt.content)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Errorf("expected ErrMalformedResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSteps failed: %v", err)
			}
			if len(out) != tt.n {
				t.Errorf("got %d steps, want %d", len(out), tt.n)
			}
		})
	}

	out, _ := ParseSteps(`[{"kind": "content.redact", "redact": {"term": "ACME", "scope": {"kind": "document"}}}]`)
	if out[0].Kind != steps.KindRedact || out[0].Redact.Scope != document.WholeDocument() {
		t.Errorf("decoded %+v", out[0])
	}
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	if _, err := NewOpenAI(OpenAIConfig{Model: "gpt-4o-mini"}); err == nil {
		t.Error("expected an error without an API key")
	}
}
