package interpreter

import (
	"context"
	"regexp"
	"strings"

	"github.com/danieljhkim/redline/internal/document"
	"github.com/danieljhkim/redline/internal/planner"
	"github.com/danieljhkim/redline/internal/steps"
)

var (
	clauseSep = regexp.MustCompile(`(?i)\s*(?:;|\bthen\b)\s*`)
	listSep   = regexp.MustCompile(`(?i)\s*(?:,\s*and\s+|,|\band\b)\s*`)

	splitRe    = regexp.MustCompile(`(?i)^split\s+(.*?)\s*\binto\s+(.+)$`)
	citationRe = regexp.MustCompile(`(?i)\bcitations?\b.*?\b(?:to|as|in)\s+([a-z]+)\b`)
	figureRe   = regexp.MustCompile(`(?i)^(?:insert|add)\s+(?:a|an|the)?\s*(?:chart|figure|graph|plot)\b(.*)$`)
	fromRe     = regexp.MustCompile(`(?i)\bfrom\s+(?:the\s+)?(.+?)(?:\s+(?:into|to|in)\s+|\s+captioned\s+|$)`)
	intoRe     = regexp.MustCompile(`(?i)\b(?:into|to|in)\s+(?:the\s+)?(.+?)(?:\s+captioned\s+|$)`)
	captionRe  = regexp.MustCompile(`(?i)\bcaptioned\s+"?([^"]+)"?\s*$`)
	rewriteRe  = regexp.MustCompile(`(?i)^(?:rewrite|replace)\s+(.*?)\s*\b(?:as|with)\s+(.+)$`)
	redactRe   = regexp.MustCompile(`(?i)^(?:redact|remove all mentions of|remove mentions of|censor)\s+"?([^"]+?)"?\s*$`)
)

// genericSources are phrases that refer to "whatever data the document has".
var genericSources = map[string]bool{"data": true, "dataset": true, "data set": true, "numbers": true}

// Rules is a deterministic keyword interpreter. Multiple instructions can
// be chained with ";" or "then".
type Rules struct{}

var _ planner.Interpreter = Rules{}

// NewRules creates a Rules interpreter.
func NewRules() Rules {
	return Rules{}
}

// Interpret maps each clause of text to at most one step.
func (Rules) Interpret(ctx context.Context, text string, scope document.Scope, snap document.Snapshot) ([]steps.Step, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []steps.Step
	for _, clause := range clauseSep.Split(strings.TrimSpace(text), -1) {
		if clause = strings.TrimSpace(clause); clause == "" {
			continue
		}
		if s, ok := interpretClause(clause, scope, snap); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func interpretClause(clause string, scope document.Scope, snap document.Snapshot) (steps.Step, bool) {
	// Replacement text keeps its punctuation; every other form drops a
	// trailing period.
	if m := rewriteRe.FindStringSubmatch(clause); m != nil {
		text := strings.Trim(strings.TrimSpace(m[2]), `"`)
		ref := strings.ToLower(strings.TrimSpace(m[1]))
		if scope.Kind == document.ScopeSelection && (ref == "this" || ref == "selection" || ref == "the selection" || ref == "it") {
			return steps.RewriteRange(scope.ID, scope.Start, scope.End, text), true
		}
		return steps.Rewrite(sectionRef(m[1], scope, snap), text), true
	}
	clause = strings.TrimSpace(strings.TrimSuffix(clause, "."))

	if m := splitRe.FindStringSubmatch(clause); m != nil {
		var parts []string
		for _, p := range listSep.Split(m[2], -1) {
			if slug := document.Slugify(p); p != "" && slug != "" {
				parts = append(parts, slug)
			}
		}
		return steps.Split(sectionRef(m[1], scope, snap), parts...), true
	}

	if m := figureRe.FindStringSubmatch(clause); m != nil {
		rest := m[1]
		source := ""
		if fm := fromRe.FindStringSubmatch(rest); fm != nil {
			source = resolveSource(strings.TrimSpace(fm[1]), snap)
		}
		target := ""
		if im := intoRe.FindStringSubmatch(stripFrom(rest)); im != nil {
			target = im[1]
		}
		caption := ""
		if cm := captionRe.FindStringSubmatch(rest); cm != nil {
			caption = strings.TrimSpace(cm[1])
		}
		return steps.FigureInsert(sectionRef(target, scope, snap), source, caption), true
	}

	if m := citationRe.FindStringSubmatch(clause); m != nil {
		return steps.CitationFormat(m[1]), true
	}

	if m := redactRe.FindStringSubmatch(clause); m != nil {
		return steps.Redact(strings.TrimSpace(m[1]), scope), true
	}

	return steps.Step{}, false
}

// stripFrom removes the "from <source>" phrase so "into" matching does not
// pick up words inside the source name.
func stripFrom(rest string) string {
	loc := fromRe.FindStringSubmatchIndex(rest)
	if loc == nil {
		return rest
	}
	return rest[:loc[0]] + " " + rest[loc[3]:]
}

// sectionRef resolves a free-text section reference. Empty or deictic
// references use the command scope, falling back to the last section of
// the document.
func sectionRef(ref string, scope document.Scope, snap document.Snapshot) string {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)
	lower = strings.TrimPrefix(lower, "the ")
	switch lower {
	case "", "this", "it", "this section", "section", "selection", "the selection":
		if scope.Kind == document.ScopeSection || scope.Kind == document.ScopeSelection {
			return scope.ID
		}
		return lastSection(snap)
	}

	slug := document.Slugify(lower)
	if _, ok := snap.Node(slug); ok {
		return slug
	}
	if trimmed := strings.TrimSuffix(slug, "-section"); trimmed != slug {
		if _, ok := snap.Node(trimmed); ok {
			return trimmed
		}
	}
	return slug
}

func lastSection(snap document.Snapshot) string {
	last := ""
	for _, n := range snap.Nodes() {
		if n.Kind() == document.NodeSection && !strings.Contains(n.Path, "/") {
			last = n.Path
		}
	}
	return last
}

// resolveSource maps a phrase to a declared source. Generic phrases pick
// the only declared source, if there is exactly one; anything else is
// returned verbatim so the planner can report it as undeclared.
func resolveSource(phrase string, snap document.Snapshot) string {
	sources := snap.Sources()
	for _, s := range sources {
		if strings.EqualFold(s, phrase) {
			return s
		}
	}
	if genericSources[strings.ToLower(phrase)] {
		if len(sources) == 1 {
			return sources[0]
		}
		return ""
	}
	return phrase
}
