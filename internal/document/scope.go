package document

import (
	"errors"
	"fmt"
	"strings"
)

// ErrScopeNotFound indicates a scope does not resolve against a snapshot.
var ErrScopeNotFound = errors.New("scope not found")

// ScopeKind is the granularity of a scope.
type ScopeKind string

// ScopeKind constants
const (
	ScopeDocument  ScopeKind = "document"
	ScopeSection   ScopeKind = "section"
	ScopeSelection ScopeKind = "selection"
)

// Scope is the region of a document an instruction targets.
type Scope struct {
	// Kind is document, section or selection
	Kind ScopeKind `json:"kind"`

	// ID names the section (required for section and selection scopes)
	ID string `json:"id,omitempty"`

	// Start and End bound a selection as byte offsets into the section text
	Start int `json:"start,omitempty"`
	End   int `json:"end,omitempty"`
}

// WholeDocument returns a document-wide scope.
func WholeDocument() Scope {
	return Scope{Kind: ScopeDocument}
}

// Section returns a scope covering one section and its children.
func Section(id string) Scope {
	return Scope{Kind: ScopeSection, ID: id}
}

// Selection returns a scope covering a byte range of a section.
func Selection(id string, start, end int) Scope {
	return Scope{Kind: ScopeSelection, ID: id, Start: start, End: end}
}

// String renders the scope for display and audit export.
func (s Scope) String() string {
	switch s.Kind {
	case ScopeSection:
		return "section:" + s.ID
	case ScopeSelection:
		return fmt.Sprintf("selection:%s[%d:%d]", s.ID, s.Start, s.End)
	default:
		return string(ScopeDocument)
	}
}

// Contains reports whether path falls inside the scope. Settings are
// document-wide and fall inside every scope.
func (s Scope) Contains(path string) bool {
	if s.Kind == ScopeDocument || s.Kind == "" || strings.HasPrefix(path, SettingsPrefix) {
		return true
	}
	return path == s.ID || strings.HasPrefix(path, s.ID+"/")
}

// Region is a resolved scope.
type Region struct {
	Scope Scope

	// Nodes are the content nodes inside the scope, settings excluded
	Nodes []Node

	// Text is the concatenated scoped text (the selected range for selections)
	Text string
}

// Resolve resolves scope against snapshot.
func Resolve(snap Snapshot, scope Scope) (*Region, error) {
	switch scope.Kind {
	case "", ScopeDocument:
		var nodes []Node
		for _, n := range snap.Nodes() {
			if n.Kind() != NodeSetting {
				nodes = append(nodes, n)
			}
		}
		return &Region{Scope: WholeDocument(), Nodes: nodes, Text: joinText(nodes)}, nil

	case ScopeSection:
		n, ok := snap.Node(scope.ID)
		if !ok || n.Kind() != NodeSection {
			return nil, fmt.Errorf("%w: section %q", ErrScopeNotFound, scope.ID)
		}
		nodes := append([]Node{n}, snap.Children(scope.ID)...)
		return &Region{Scope: scope, Nodes: nodes, Text: joinText(nodes)}, nil

	case ScopeSelection:
		n, ok := snap.Node(scope.ID)
		if !ok || n.Kind() != NodeSection {
			return nil, fmt.Errorf("%w: section %q", ErrScopeNotFound, scope.ID)
		}
		if scope.Start < 0 || scope.End > len(n.Text) || scope.Start >= scope.End {
			return nil, fmt.Errorf("%w: selection [%d:%d] outside section %q (length %d)",
				ErrScopeNotFound, scope.Start, scope.End, scope.ID, len(n.Text))
		}
		return &Region{Scope: scope, Nodes: []Node{n}, Text: n.Text[scope.Start:scope.End]}, nil
	}

	return nil, fmt.Errorf("%w: unknown scope kind %q", ErrScopeNotFound, scope.Kind)
}

func joinText(nodes []Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, n.Text)
	}
	return strings.Join(parts, "\n\n")
}
