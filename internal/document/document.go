package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/danieljhkim/redline/internal/diff"
)

var (
	// ErrNodeNotFound indicates a diff addressed a missing node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNodeExists indicates an insert addressed a path already in use.
	ErrNodeExists = errors.New("node already exists")

	// ErrStale indicates a node's current text differs from a diff's before payload.
	ErrStale = errors.New("node content changed")
)

// SettingsPrefix is the path prefix reserved for document-wide settings.
const SettingsPrefix = "settings/"

// SettingCitationStyle is the setting name holding the citation style.
const SettingCitationStyle = "citation-style"

// NodeKind classifies a node by its path.
type NodeKind string

// NodeKind constants
const (
	NodeSection NodeKind = "section"
	NodeFigure  NodeKind = "figure"
	NodeSetting NodeKind = "setting"
)

// Node is one addressable unit of content.
type Node struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// Kind derives the node kind from its path.
func (n Node) Kind() NodeKind {
	return KindOf(n.Path)
}

// KindOf derives the node kind from a path.
func KindOf(path string) NodeKind {
	switch {
	case strings.HasPrefix(path, SettingsPrefix):
		return NodeSetting
	case strings.Contains(path, "/figures/"):
		return NodeFigure
	default:
		return NodeSection
	}
}

// Snapshot is a read-only view of a document.
type Snapshot interface {
	// DocumentID returns the identifier of the document.
	DocumentID() string

	// Node returns the node at path.
	Node(path string) (Node, bool)

	// Nodes returns a copy of all nodes in document order.
	Nodes() []Node

	// Children returns the nodes nested under path, in document order.
	Children(path string) []Node

	// Setting returns a document setting, or "" when unset.
	Setting(name string) string

	// Sources returns the declared data sources.
	Sources() []string
}

// Document is a mutable document. It satisfies Snapshot.
type Document struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	NodeList   []Node   `json:"nodes"`
	SourceList []string `json:"sources"`
}

var _ Snapshot = (*Document)(nil)

// New creates an empty document.
func New(id, title string) *Document {
	return &Document{
		ID:         id,
		Title:      title,
		NodeList:   []Node{},
		SourceList: []string{},
	}
}

// DocumentID returns the identifier of the document.
func (d *Document) DocumentID() string {
	return d.ID
}

// Node returns the node at path.
func (d *Document) Node(path string) (Node, bool) {
	if i := d.indexOf(path); i >= 0 {
		return d.NodeList[i], true
	}
	return Node{}, false
}

// Nodes returns a copy of all nodes in document order.
func (d *Document) Nodes() []Node {
	out := make([]Node, len(d.NodeList))
	copy(out, d.NodeList)
	return out
}

// Children returns the nodes nested under path, in document order.
func (d *Document) Children(path string) []Node {
	prefix := path + "/"
	var out []Node
	for _, n := range d.NodeList {
		if strings.HasPrefix(n.Path, prefix) {
			out = append(out, n)
		}
	}
	return out
}

// Setting returns a document setting, or "" when unset.
func (d *Document) Setting(name string) string {
	n, ok := d.Node(SettingsPrefix + name)
	if !ok {
		return ""
	}
	return n.Text
}

// Sources returns the declared data sources.
func (d *Document) Sources() []string {
	out := make([]string, len(d.SourceList))
	copy(out, d.SourceList)
	return out
}

// HasSource reports whether name is a declared data source.
func (d *Document) HasSource(name string) bool {
	return HasSource(d, name)
}

// HasSource reports whether name is declared on the snapshot.
func HasSource(s Snapshot, name string) bool {
	for _, src := range s.Sources() {
		if src == name {
			return true
		}
	}
	return false
}

// FromSnapshot returns a mutable copy of snap.
func FromSnapshot(snap Snapshot) *Document {
	if d, ok := snap.(*Document); ok {
		return d.Clone()
	}
	return &Document{
		ID:         snap.DocumentID(),
		NodeList:   snap.Nodes(),
		SourceList: snap.Sources(),
	}
}

// Set appends a node, or replaces the text of an existing one. Used when
// building documents, not by edits.
func (d *Document) Set(path, text string) {
	if i := d.indexOf(path); i >= 0 {
		d.NodeList[i].Text = text
		return
	}
	d.NodeList = append(d.NodeList, Node{Path: path, Text: text})
}

// AddSource declares a data source. Duplicates are ignored.
func (d *Document) AddSource(name string) {
	if d.HasSource(name) {
		return
	}
	d.SourceList = append(d.SourceList, name)
}

// Index returns the position of path, or -1.
func (d *Document) Index(path string) int {
	return d.indexOf(path)
}

// InsertionIndex returns the position right after path and its children.
// Returns the document length if path does not exist.
func (d *Document) InsertionIndex(path string) int {
	i := d.indexOf(path)
	if i < 0 {
		return len(d.NodeList)
	}
	prefix := path + "/"
	j := i + 1
	for j < len(d.NodeList) && strings.HasPrefix(d.NodeList[j].Path, prefix) {
		j++
	}
	return j
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	return &Document{
		ID:         d.ID,
		Title:      d.Title,
		NodeList:   d.Nodes(),
		SourceList: d.Sources(),
	}
}

// Apply performs a single diff against the document.
func (d *Document) Apply(it diff.Item) error {
	if err := it.Validate(); err != nil {
		return err
	}

	i := d.indexOf(it.Path)
	switch it.Kind {
	case diff.KindInsert:
		if i >= 0 {
			return fmt.Errorf("%w: %s", ErrNodeExists, it.Path)
		}
		at := it.Index
		if at < 0 || at > len(d.NodeList) {
			at = len(d.NodeList)
		}
		d.NodeList = append(d.NodeList, Node{})
		copy(d.NodeList[at+1:], d.NodeList[at:])
		d.NodeList[at] = Node{Path: it.Path, Text: it.After}

	case diff.KindDelete:
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, it.Path)
		}
		if d.NodeList[i].Text != it.Before {
			return fmt.Errorf("%w: %s", ErrStale, it.Path)
		}
		d.NodeList = append(d.NodeList[:i], d.NodeList[i+1:]...)

	case diff.KindModify:
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, it.Path)
		}
		if d.NodeList[i].Text != it.Before {
			return fmt.Errorf("%w: %s", ErrStale, it.Path)
		}
		d.NodeList[i].Text = it.After
	}

	return nil
}

// ApplyAll applies items in order, stopping at the first failure.
func (d *Document) ApplyAll(items []diff.Item) error {
	for i, it := range items {
		if err := d.Apply(it); err != nil {
			return fmt.Errorf("diff %d (%s %s): %w", i, it.Kind, it.Path, err)
		}
	}
	return nil
}

// Canonical returns a stable JSON encoding used for snapshot identifiers.
func (d *Document) Canonical() ([]byte, error) {
	sources := d.Sources()
	sort.Strings(sources)
	return json.Marshal(struct {
		ID      string   `json:"id"`
		Title   string   `json:"title"`
		Nodes   []Node   `json:"nodes"`
		Sources []string `json:"sources"`
	}{d.ID, d.Title, d.NodeList, sources})
}

func (d *Document) indexOf(path string) int {
	for i, n := range d.NodeList {
		if n.Path == path {
			return i
		}
	}
	return -1
}
