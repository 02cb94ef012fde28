// Package steps defines the closed set of edit step kinds and how each one
// is checked against a snapshot and turned into diffs.
//
// A Step is a tagged variant: Kind selects exactly one parameter struct.
// Adding a kind means adding a Kind constant, a parameter struct, a field on
// Step and an entry in the handler table.
package steps

import (
	"fmt"

	"github.com/danieljhkim/redline/internal/document"
)

// Kind identifies a step variant.
type Kind string

// Kind constants
const (
	KindSplit          Kind = "structure.split"
	KindCitationFormat Kind = "style.citationFormat"
	KindFigureInsert   Kind = "figure.insert"
	KindRewrite        Kind = "content.rewrite"
	KindRedact         Kind = "content.redact"
)

// Kinds returns every known kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindSplit, KindCitationFormat, KindFigureInsert, KindRewrite, KindRedact}
}

// Requirement tokens name a precondition a command failed to satisfy.
const (
	RequireDataSource    = "dataSource"
	RequireCitations     = "citations"
	RequireCitationStyle = "citationStyle"
	RequireSection       = "section"
	RequireTargets       = "targets"
	RequireText          = "text"
	RequireTerm          = "term"
	RequireScope         = "scope"
)

// Step is one concrete mutation within a plan.
type Step struct {
	// ID is assigned by the planner
	ID string `json:"id"`

	// Kind selects the parameter struct
	Kind Kind `json:"kind"`

	// Description is a human-readable summary
	Description string `json:"description"`

	// DependsOn lists earlier step IDs whose output this step consumes
	DependsOn []string `json:"dependsOn,omitempty"`

	Split          *SplitParams          `json:"split,omitempty"`
	CitationFormat *CitationFormatParams `json:"citationFormat,omitempty"`
	FigureInsert   *FigureInsertParams   `json:"figureInsert,omitempty"`
	Rewrite        *RewriteParams        `json:"rewrite,omitempty"`
	Redact         *RedactParams         `json:"redact,omitempty"`
}

// SplitParams splits a section into titled subsections.
type SplitParams struct {
	SectionID string   `json:"sectionId"`
	Into      []string `json:"into"`
}

// CitationFormatParams switches the document citation style.
type CitationFormatParams struct {
	To            string `json:"to"`
	AffectedCount int    `json:"affectedCount"`
}

// FigureInsertParams inserts a chart figure built from a data source.
type FigureInsertParams struct {
	SectionID  string `json:"sectionId"`
	DataSource string `json:"dataSource,omitempty"`
	Caption    string `json:"caption,omitempty"`
}

// RewriteParams replaces the text of a node, or a byte range of it when End
// is non-zero.
type RewriteParams struct {
	Path  string `json:"path"`
	Start int    `json:"start,omitempty"`
	End   int    `json:"end,omitempty"`
	Text  string `json:"text"`
}

// RedactParams masks every occurrence of Term inside Scope.
type RedactParams struct {
	Term  string         `json:"term"`
	Scope document.Scope `json:"scope"`
}

// Split builds a structure.split step.
func Split(sectionID string, into ...string) Step {
	return Step{Kind: KindSplit, Split: &SplitParams{SectionID: sectionID, Into: into}}
}

// CitationFormat builds a style.citationFormat step.
func CitationFormat(to string) Step {
	return Step{Kind: KindCitationFormat, CitationFormat: &CitationFormatParams{To: to}}
}

// FigureInsert builds a figure.insert step.
func FigureInsert(sectionID, dataSource, caption string) Step {
	return Step{Kind: KindFigureInsert, FigureInsert: &FigureInsertParams{
		SectionID:  sectionID,
		DataSource: dataSource,
		Caption:    caption,
	}}
}

// Rewrite builds a content.rewrite step covering a whole node.
func Rewrite(path, text string) Step {
	return Step{Kind: KindRewrite, Rewrite: &RewriteParams{Path: path, Text: text}}
}

// RewriteRange builds a content.rewrite step covering text[start:end].
func RewriteRange(path string, start, end int, text string) Step {
	return Step{Kind: KindRewrite, Rewrite: &RewriteParams{Path: path, Start: start, End: end, Text: text}}
}

// Redact builds a content.redact step.
func Redact(term string, scope document.Scope) Step {
	return Step{Kind: KindRedact, Redact: &RedactParams{Term: term, Scope: scope}}
}

// Validate checks that exactly the parameter struct matching Kind is set.
func (s Step) Validate() error {
	set := map[Kind]bool{
		KindSplit:          s.Split != nil,
		KindCitationFormat: s.CitationFormat != nil,
		KindFigureInsert:   s.FigureInsert != nil,
		KindRewrite:        s.Rewrite != nil,
		KindRedact:         s.Redact != nil,
	}

	if _, known := set[s.Kind]; !known {
		return fmt.Errorf("unknown step kind %q", s.Kind)
	}
	for kind, present := range set {
		if kind == s.Kind && !present {
			return fmt.Errorf("step kind %s is missing its parameters", s.Kind)
		}
		if kind != s.Kind && present {
			return fmt.Errorf("step kind %s carries %s parameters", s.Kind, kind)
		}
	}
	return nil
}

// Reversible reports whether steps of this kind can be undone.
func (k Kind) Reversible() bool {
	h, ok := handlers[k]
	return ok && h.reversible
}
