package steps

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/danieljhkim/redline/internal/diff"
	"github.com/danieljhkim/redline/internal/document"
)

// Unmet describes a precondition the snapshot does not satisfy. Requirement
// is empty when the gap is informational only.
type Unmet struct {
	Warning     string
	Requirement string
}

// RedactedPlaceholder replaces redacted text in recorded diffs.
const RedactedPlaceholder = "[redacted]"

type handler struct {
	reversible bool
	target     func(Step) string
	describe   func(Step) string
	prepare    func(Step, document.Snapshot, *document.Region) (Step, *Unmet)
	run        func(Step, document.Snapshot) ([]diff.Item, error)
	record     func(Step, []diff.Item) []diff.Item
}

// handlers is filled in init because the run functions call Describe.
var handlers map[Kind]handler

func init() {
	handlers = map[Kind]handler{
		KindSplit: {
			reversible: true,
			target:     func(s Step) string { return s.Split.SectionID },
			describe: func(s Step) string {
				return fmt.Sprintf("Split %s into %s", s.Split.SectionID, strings.Join(s.Split.Into, ", "))
			},
			prepare: prepareSplit,
			run:     runSplit,
		},
		KindCitationFormat: {
			reversible: true,
			target:     func(Step) string { return document.SettingsPrefix + document.SettingCitationStyle },
			describe: func(s Step) string {
				return fmt.Sprintf("Reformat %d citations to %s", s.CitationFormat.AffectedCount, s.CitationFormat.To)
			},
			prepare: prepareCitationFormat,
			run:     runCitationFormat,
		},
		KindFigureInsert: {
			reversible: true,
			target:     func(s Step) string { return s.FigureInsert.SectionID + "/figures" },
			describe: func(s Step) string {
				return fmt.Sprintf("Insert chart from %s into %s", s.FigureInsert.DataSource, s.FigureInsert.SectionID)
			},
			prepare: prepareFigureInsert,
			run:     runFigureInsert,
		},
		KindRewrite: {
			reversible: true,
			target:     func(s Step) string { return s.Rewrite.Path },
			describe:   func(s Step) string { return "Rewrite " + s.Rewrite.Path },
			prepare:    prepareRewrite,
			run:        runRewrite,
		},
		KindRedact: {
			// Redacted text is never written to the audit log, so there is
			// nothing to restore from.
			reversible: false,
			target: func(s Step) string {
				if s.Redact.Scope.Kind == document.ScopeDocument || s.Redact.Scope.Kind == "" {
					return ""
				}
				return s.Redact.Scope.ID
			},
			describe: func(s Step) string { return fmt.Sprintf("Redact %q in %s", s.Redact.Term, s.Redact.Scope) },
			prepare:  prepareRedact,
			run:      runRedact,
			record:   recordRedact,
		},
	}
}

// Prepare validates a step against the snapshot and the resolved scope.
// It returns the step enriched with snapshot-derived fields, or an Unmet
// describing why the step cannot be planned.
func Prepare(s Step, snap document.Snapshot, region *document.Region) (Step, *Unmet) {
	if err := s.Validate(); err != nil {
		return s, &Unmet{Warning: "ignored invalid step: " + err.Error()}
	}
	prepared, unmet := handlers[s.Kind].prepare(s, snap, region)
	if unmet == nil && prepared.Description == "" {
		prepared.Description = Describe(prepared)
	}
	return prepared, unmet
}

// Run computes the diffs a step produces against snap without mutating it.
// Errors are *Error values.
func Run(s Step, snap document.Snapshot) ([]diff.Item, error) {
	if err := s.Validate(); err != nil {
		return nil, Permanent(err)
	}
	items, err := handlers[s.Kind].run(s, snap)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return nil, Permanent(err)
		}
	}
	return items, nil
}

// Record returns the form of items suitable for the audit log.
func Record(s Step, items []diff.Item) []diff.Item {
	h, ok := handlers[s.Kind]
	if !ok || h.record == nil {
		return items
	}
	return h.record(s, items)
}

// Describe returns a human-readable summary of a step.
func Describe(s Step) string {
	if err := s.Validate(); err != nil {
		return string(s.Kind)
	}
	return handlers[s.Kind].describe(s)
}

// Target returns the document path a step writes. An empty target covers
// the whole document.
func Target(s Step) string {
	if err := s.Validate(); err != nil {
		return ""
	}
	return handlers[s.Kind].target(s)
}

// WithinScope reports whether every edit s makes falls inside scope. Under a
// selection only ranged rewrites and redactions of a sub-range qualify;
// settings are document-wide and allowed everywhere.
func WithinScope(s Step, scope document.Scope) bool {
	target := Target(s)
	if !scope.Contains(target) {
		return false
	}
	if scope.Kind != document.ScopeSelection || strings.HasPrefix(target, document.SettingsPrefix) {
		return true
	}
	switch s.Kind {
	case KindRewrite:
		p := s.Rewrite
		return p.Path == scope.ID && p.End != 0 && p.Start >= scope.Start && p.End <= scope.End
	case KindRedact:
		r := s.Redact.Scope
		return r.Kind == document.ScopeSelection && r.ID == scope.ID && r.Start >= scope.Start && r.End <= scope.End
	default:
		return false
	}
}

// Overlaps reports whether two targets touch the same region.
func Overlaps(a, b string) bool {
	if a == "" || b == "" || a == b {
		return true
	}
	return strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}

func requireSection(snap document.Snapshot, id string) *Unmet {
	if id == "" {
		return &Unmet{Warning: "no target section given", Requirement: RequireSection}
	}
	n, ok := snap.Node(id)
	if !ok || n.Kind() != document.NodeSection {
		return &Unmet{Warning: fmt.Sprintf("section %q does not exist", id), Requirement: RequireSection}
	}
	return nil
}

func liveSection(snap document.Snapshot, id string) (document.Node, int, error) {
	nodes := snap.Nodes()
	for i, n := range nodes {
		if n.Path == id && n.Kind() == document.NodeSection {
			return n, i, nil
		}
	}
	return document.Node{}, -1, preconditionf("section %q does not exist", id)
}

// structure.split

func prepareSplit(s Step, snap document.Snapshot, _ *document.Region) (Step, *Unmet) {
	if unmet := requireSection(snap, s.Split.SectionID); unmet != nil {
		return s, unmet
	}
	if len(s.Split.Into) < 2 {
		return s, &Unmet{Warning: "a split needs at least two target parts", Requirement: RequireTargets}
	}
	if n, _ := snap.Node(s.Split.SectionID); len(splitParagraphs(n.Text)) == 0 {
		return s, &Unmet{Warning: fmt.Sprintf("section %q has no content to split", s.Split.SectionID), Requirement: RequireText}
	}
	seen := make(map[string]bool, len(s.Split.Into))
	for _, part := range s.Split.Into {
		if part == "" || seen[part] {
			return s, &Unmet{Warning: "split targets must be distinct and non-empty", Requirement: RequireTargets}
		}
		seen[part] = true
	}
	return s, nil
}

func runSplit(s Step, snap document.Snapshot) ([]diff.Item, error) {
	node, index, err := liveSection(snap, s.Split.SectionID)
	if err != nil {
		return nil, err
	}

	paragraphs := splitParagraphs(node.Text)
	parts := len(s.Split.Into)
	var b strings.Builder
	for i, part := range s.Split.Into {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("### ")
		b.WriteString(titleFromSlug(part))
		lo, hi := i*len(paragraphs)/parts, (i+1)*len(paragraphs)/parts
		if hi > lo {
			b.WriteString("\n\n")
			b.WriteString(strings.Join(paragraphs[lo:hi], "\n\n"))
		}
	}

	if len(paragraphs) == 0 {
		return nil, preconditionf("section %q has no content to split", node.Path)
	}
	return []diff.Item{{
		Path:        node.Path,
		Before:      node.Text,
		After:       b.String(),
		Kind:        diff.KindModify,
		Category:    diff.CategoryStructure,
		Description: Describe(s),
		Index:       index,
	}}, nil
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func titleFromSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// style.citationFormat

var citationStyles = map[string]string{
	"apa":       "APA",
	"mla":       "MLA",
	"ieee":      "IEEE",
	"chicago":   "Chicago",
	"harvard":   "Harvard",
	"vancouver": "Vancouver",
}

// NormalizeCitationStyle returns the canonical spelling of a known style.
func NormalizeCitationStyle(style string) (string, bool) {
	canonical, ok := citationStyles[strings.ToLower(strings.TrimSpace(style))]
	return canonical, ok
}

// CitationStyles returns the known citation styles, sorted.
func CitationStyles() []string {
	out := make([]string, 0, len(citationStyles))
	for _, v := range citationStyles {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// CountCitations counts citation markers ("[@key]") in text.
func CountCitations(text string) int {
	return strings.Count(text, "[@")
}

func prepareCitationFormat(s Step, snap document.Snapshot, region *document.Region) (Step, *Unmet) {
	style, ok := NormalizeCitationStyle(s.CitationFormat.To)
	if !ok {
		return s, &Unmet{
			Warning:     fmt.Sprintf("unknown citation style %q (known: %s)", s.CitationFormat.To, strings.Join(CitationStyles(), ", ")),
			Requirement: RequireCitationStyle,
		}
	}

	count := CountCitations(region.Text)
	if count == 0 {
		return s, &Unmet{Warning: "no citations found in scope", Requirement: RequireCitations}
	}
	if snap.Setting(document.SettingCitationStyle) == style {
		return s, &Unmet{Warning: "citations already use " + style}
	}

	params := *s.CitationFormat
	params.To = style
	params.AffectedCount = count
	s.CitationFormat = &params
	return s, nil
}

func runCitationFormat(s Step, snap document.Snapshot) ([]diff.Item, error) {
	path := document.SettingsPrefix + document.SettingCitationStyle
	current := snap.Setting(document.SettingCitationStyle)
	if current == s.CitationFormat.To {
		return nil, preconditionf("citations already use %s", s.CitationFormat.To)
	}

	item := diff.Item{
		Path:        path,
		Before:      current,
		After:       s.CitationFormat.To,
		Kind:        diff.KindModify,
		Category:    diff.CategoryFormat,
		Description: Describe(s),
	}
	if current == "" {
		item.Kind = diff.KindInsert
		item.Index = len(snap.Nodes())
	} else {
		item.Index = indexOf(snap, path)
	}
	return []diff.Item{item}, nil
}

// figure.insert

func prepareFigureInsert(s Step, snap document.Snapshot, _ *document.Region) (Step, *Unmet) {
	if s.FigureInsert.DataSource == "" {
		return s, &Unmet{Warning: "chart insertion needs a declared data source", Requirement: RequireDataSource}
	}
	if !document.HasSource(snap, s.FigureInsert.DataSource) {
		return s, &Unmet{
			Warning:     fmt.Sprintf("data source %q is not declared in the document", s.FigureInsert.DataSource),
			Requirement: RequireDataSource,
		}
	}
	if unmet := requireSection(snap, s.FigureInsert.SectionID); unmet != nil {
		return s, unmet
	}
	return s, nil
}

func runFigureInsert(s Step, snap document.Snapshot) ([]diff.Item, error) {
	p := s.FigureInsert
	if _, _, err := liveSection(snap, p.SectionID); err != nil {
		return nil, err
	}
	if !document.HasSource(snap, p.DataSource) {
		return nil, preconditionf("data source %q is not declared", p.DataSource)
	}

	next := 1
	prefix := p.SectionID + "/figures/fig-"
	for _, child := range snap.Children(p.SectionID) {
		if n, err := strconv.Atoi(strings.TrimPrefix(child.Path, prefix)); err == nil && strings.HasPrefix(child.Path, prefix) && n >= next {
			next = n + 1
		}
	}

	text := "chart: " + p.DataSource
	if p.Caption != "" {
		text += "\ncaption: " + p.Caption
	}
	return []diff.Item{{
		Path:        prefix + strconv.Itoa(next),
		After:       text,
		Kind:        diff.KindInsert,
		Category:    diff.CategoryFigure,
		Description: Describe(s),
		Index:       insertionIndex(snap, p.SectionID),
	}}, nil
}

// content.rewrite

func prepareRewrite(s Step, snap document.Snapshot, _ *document.Region) (Step, *Unmet) {
	p := s.Rewrite
	if strings.TrimSpace(p.Text) == "" {
		return s, &Unmet{Warning: "rewrite has no replacement text", Requirement: RequireText}
	}
	n, ok := snap.Node(p.Path)
	if !ok || n.Kind() == document.NodeSetting || n.Text == "" {
		return s, &Unmet{Warning: fmt.Sprintf("nothing to rewrite at %q", p.Path), Requirement: RequireSection}
	}
	if p.End != 0 && (p.Start < 0 || p.End > len(n.Text) || p.Start >= p.End) {
		return s, &Unmet{Warning: fmt.Sprintf("rewrite range [%d:%d] is outside %q", p.Start, p.End, p.Path), Requirement: RequireSection}
	}
	if replaced(n.Text, p) == n.Text {
		return s, &Unmet{Warning: "rewrite would not change " + p.Path}
	}
	return s, nil
}

func runRewrite(s Step, snap document.Snapshot) ([]diff.Item, error) {
	p := s.Rewrite
	n, ok := snap.Node(p.Path)
	if !ok || n.Text == "" {
		return nil, preconditionf("nothing to rewrite at %q", p.Path)
	}
	if p.End > len(n.Text) {
		return nil, preconditionf("rewrite range [%d:%d] is outside %q", p.Start, p.End, p.Path)
	}
	after := replaced(n.Text, p)
	if after == n.Text {
		return nil, preconditionf("rewrite would not change %s", p.Path)
	}

	return []diff.Item{{
		Path:        p.Path,
		Before:      n.Text,
		After:       after,
		Kind:        diff.KindModify,
		Category:    diff.CategoryContent,
		Description: Describe(s),
		Index:       indexOf(snap, p.Path),
	}}, nil
}

func replaced(text string, p *RewriteParams) string {
	if p.End == 0 {
		return p.Text
	}
	return text[:p.Start] + p.Text + text[p.End:]
}

// content.redact

func prepareRedact(s Step, snap document.Snapshot, _ *document.Region) (Step, *Unmet) {
	if strings.TrimSpace(s.Redact.Term) == "" {
		return s, &Unmet{Warning: "redaction needs a term", Requirement: RequireTerm}
	}
	region, err := document.Resolve(snap, s.Redact.Scope)
	if err != nil {
		return s, &Unmet{Warning: err.Error(), Requirement: RequireSection}
	}
	if !strings.Contains(region.Text, s.Redact.Term) {
		return s, &Unmet{Warning: fmt.Sprintf("%q does not occur in %s", s.Redact.Term, s.Redact.Scope)}
	}
	return s, nil
}

func runRedact(s Step, snap document.Snapshot) ([]diff.Item, error) {
	region, err := document.Resolve(snap, s.Redact.Scope)
	if err != nil {
		return nil, Permanent(err)
	}

	var items []diff.Item
	for _, n := range region.Nodes {
		after := mask(n.Text, s.Redact)
		if after == n.Text {
			continue
		}
		items = append(items, diff.Item{
			Path:        n.Path,
			Before:      n.Text,
			After:       after,
			Kind:        diff.KindModify,
			Category:    diff.CategoryContent,
			Description: Describe(s),
			Index:       indexOf(snap, n.Path),
		})
	}
	if len(items) == 0 {
		return nil, preconditionf("%q does not occur in %s", s.Redact.Term, s.Redact.Scope)
	}
	return items, nil
}

// mask replaces the term with block characters, limited to the selected
// range for selection scopes.
func mask(text string, p *RedactParams) string {
	blocks := strings.Repeat("█", len([]rune(p.Term)))
	if p.Scope.Kind != document.ScopeSelection {
		return strings.ReplaceAll(text, p.Term, blocks)
	}
	start, end := p.Scope.Start, p.Scope.End
	return text[:start] + strings.ReplaceAll(text[start:end], p.Term, blocks) + text[end:]
}

func recordRedact(_ Step, items []diff.Item) []diff.Item {
	out := make([]diff.Item, len(items))
	for i, it := range items {
		it.Before = RedactedPlaceholder
		out[i] = it
	}
	return out
}

func indexOf(snap document.Snapshot, path string) int {
	for i, n := range snap.Nodes() {
		if n.Path == path {
			return i
		}
	}
	return -1
}

func insertionIndex(snap document.Snapshot, path string) int {
	nodes := snap.Nodes()
	i := indexOf(snap, path)
	if i < 0 {
		return len(nodes)
	}
	j := i + 1
	for j < len(nodes) && strings.HasPrefix(nodes[j].Path, path+"/") {
		j++
	}
	return j
}
