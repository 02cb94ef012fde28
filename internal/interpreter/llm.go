package interpreter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/danieljhkim/redline/internal/document"
	"github.com/danieljhkim/redline/internal/planner"
	"github.com/danieljhkim/redline/internal/steps"
)

// ErrMalformedResponse is returned when the model output is not a valid
// step list.
var ErrMalformedResponse = errors.New("malformed model response")

const systemPrompt = `You translate document editing instructions into edit steps.
Answer with a JSON object {"steps": [...]} and nothing else.
Each step has "kind", "description", an optional "id" label, an optional
"dependsOn" list of earlier labels, and exactly one parameter object:
  "structure.split":      "split": {"sectionId": string, "into": [string, ...]}
  "style.citationFormat": "citationFormat": {"to": string}
  "figure.insert":        "figureInsert": {"sectionId": string, "dataSource": string, "caption": string}
  "content.rewrite":      "rewrite": {"path": string, "text": string, "start": int, "end": int}
  "content.redact":       "redact": {"term": string, "scope": {"kind": "document"|"section"|"selection", "id": string}}
Only use section ids and data sources listed in the outline. Use an empty
dataSource if the document declares none. Return {"steps": []} when nothing applies.`

// LLM interprets commands with a language model.
type LLM struct {
	model llms.Model
}

var _ planner.Interpreter = (*LLM)(nil)

// NewLLM creates an interpreter backed by model.
func NewLLM(model llms.Model) *LLM {
	return &LLM{model: model}
}

// OpenAIConfig configures an OpenAI-compatible model.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewOpenAI creates an LLM interpreter on an OpenAI-compatible endpoint.
func NewOpenAI(cfg OpenAIConfig) (*LLM, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm interpreter requires an API key")
	}
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return NewLLM(model), nil
}

// Interpret asks the model for steps.
func (l *LLM) Interpret(ctx context.Context, text string, scope document.Scope, snap document.Snapshot) ([]steps.Step, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(userPrompt(text, scope, snap))},
		},
	}

	resp, err := l.model.GenerateContent(ctx, messages, llms.WithJSONMode(), llms.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	return ParseSteps(resp.Choices[0].Content)
}

// ParseSteps decodes a model answer. It accepts {"steps": [...]} or a bare
// array, optionally inside a Markdown code fence. Unknown fields are
// rejected.
func ParseSteps(content string) ([]steps.Step, error) {
	body := strings.TrimSpace(content)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
		body = strings.TrimSpace(body)
	}

	var out []steps.Step
	if strings.HasPrefix(body, "[") {
		if err := decodeStrict(body, &out); err != nil {
			return nil, err
		}
	} else {
		var wrapper struct {
			Steps []steps.Step `json:"steps"`
		}
		if err := decodeStrict(body, &wrapper); err != nil {
			return nil, err
		}
		out = wrapper.Steps
	}

	for i, s := range out {
		if s.Kind == "" {
			return nil, fmt.Errorf("%w: step %d has no kind", ErrMalformedResponse, i)
		}
	}
	return out, nil
}

func decodeStrict(body string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrMalformedResponse)
	}
	return nil
}

// userPrompt describes the command, scope and document outline.
func userPrompt(text string, scope document.Scope, snap document.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Instruction: %s\n", text)
	fmt.Fprintf(&b, "Scope: %s\n", scope)
	b.WriteString("Outline:\n")
	for _, n := range snap.Nodes() {
		if n.Kind() == document.NodeSetting {
			continue
		}
		fmt.Fprintf(&b, "  - %s (%d chars, %d citations)\n", n.Path, len(n.Text), steps.CountCitations(n.Text))
	}
	if sources := snap.Sources(); len(sources) > 0 {
		fmt.Fprintf(&b, "Data sources: %s\n", strings.Join(sources, ", "))
	} else {
		b.WriteString("Data sources: none\n")
	}
	if style := snap.Setting(document.SettingCitationStyle); style != "" {
		fmt.Fprintf(&b, "Citation style: %s\n", style)
	}
	if scope.Kind == document.ScopeSelection {
		if region, err := document.Resolve(snap, scope); err == nil {
			fmt.Fprintf(&b, "Selected text: %q\n", region.Text)
		}
	}
	return b.String()
}
