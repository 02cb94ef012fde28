package document

import (
	"errors"
	"testing"

	"github.com/danieljhkim/redline/internal/diff"
)

func newTestDocument() *Document {
	doc := New("thesis", "Thesis")
	doc.Set("introduction", "We study things.")
	doc.Set("chapter-2", "Prior work [@smith2020].\n\nOur method [@lee2021].")
	doc.Set("chapter-2/figures/fig-1", "chart: results.csv")
	doc.Set("conclusion", "Done.")
	doc.Set(SettingsPrefix+SettingCitationStyle, "IEEE")
	doc.AddSource("results.csv")
	return doc
}

func TestApply_Insert(t *testing.T) {
	doc := newTestDocument()

	err := doc.Apply(diff.Item{Path: "appendix", After: "Extra.", Kind: diff.KindInsert, Index: 1})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if doc.Index("appendix") != 1 {
		t.Errorf("appendix at index %d, want 1", doc.Index("appendix"))
	}

	err = doc.Apply(diff.Item{Path: "appendix", After: "Again.", Kind: diff.KindInsert})
	if !errors.Is(err, ErrNodeExists) {
		t.Errorf("expected ErrNodeExists, got %v", err)
	}
}

func TestApply_InsertOutOfRangeAppends(t *testing.T) {
	doc := newTestDocument()
	n := len(doc.NodeList)

	if err := doc.Apply(diff.Item{Path: "tail", After: "x", Kind: diff.KindInsert, Index: 99}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if doc.Index("tail") != n {
		t.Errorf("tail at %d, want %d", doc.Index("tail"), n)
	}
}

func TestApply_DeleteAndModifyCheckBefore(t *testing.T) {
	doc := newTestDocument()

	err := doc.Apply(diff.Item{Path: "conclusion", Before: "Not done.", After: "x", Kind: diff.KindModify})
	if !errors.Is(err, ErrStale) {
		t.Errorf("expected ErrStale, got %v", err)
	}

	err = doc.Apply(diff.Item{Path: "missing", Before: "x", Kind: diff.KindDelete})
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}

	if err := doc.Apply(diff.Item{Path: "conclusion", Before: "Done.", Kind: diff.KindDelete}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := doc.Node("conclusion"); ok {
		t.Error("conclusion should be gone")
	}
}

func TestApply_InverseRestoresDocument(t *testing.T) {
	doc := newTestDocument()
	original, _ := doc.Canonical()

	items := []diff.Item{
		{Path: "chapter-2", Before: doc.NodeList[1].Text, After: "Rewritten.", Kind: diff.KindModify, Index: 1},
		{Path: "chapter-2/figures/fig-2", After: "chart: results.csv", Kind: diff.KindInsert, Index: 3},
		{Path: "introduction", Before: "We study things.", Kind: diff.KindDelete, Index: 0},
	}
	if err := doc.ApplyAll(items); err != nil {
		t.Fatalf("ApplyAll failed: %v", err)
	}

	inverse, err := diff.InvertAll(items)
	if err != nil {
		t.Fatalf("InvertAll failed: %v", err)
	}
	if err := doc.ApplyAll(inverse); err != nil {
		t.Fatalf("applying inverse failed: %v", err)
	}

	restored, _ := doc.Canonical()
	if string(restored) != string(original) {
		t.Errorf("document not restored:\n got %s\nwant %s", restored, original)
	}
}

func TestClone_IsIndependent(t *testing.T) {
	doc := newTestDocument()
	clone := doc.Clone()
	clone.Set("introduction", "changed")
	clone.AddSource("other.csv")

	if n, _ := doc.Node("introduction"); n.Text != "We study things." {
		t.Errorf("original mutated: %q", n.Text)
	}
	if doc.HasSource("other.csv") {
		t.Error("original sources mutated")
	}
}

func TestInsertionIndex(t *testing.T) {
	doc := newTestDocument()

	if got := doc.InsertionIndex("chapter-2"); got != 3 {
		t.Errorf("InsertionIndex(chapter-2) = %d, want 3", got)
	}
	if got := doc.InsertionIndex("missing"); got != len(doc.NodeList) {
		t.Errorf("InsertionIndex(missing) = %d, want %d", got, len(doc.NodeList))
	}
}

func TestResolve(t *testing.T) {
	doc := newTestDocument()

	region, err := Resolve(doc, WholeDocument())
	if err != nil {
		t.Fatalf("Resolve(document) failed: %v", err)
	}
	if len(region.Nodes) != 4 {
		t.Errorf("document scope has %d nodes, want 4 (settings excluded)", len(region.Nodes))
	}

	region, err = Resolve(doc, Section("chapter-2"))
	if err != nil {
		t.Fatalf("Resolve(section) failed: %v", err)
	}
	if len(region.Nodes) != 2 {
		t.Errorf("section scope has %d nodes, want 2", len(region.Nodes))
	}

	region, err = Resolve(doc, Selection("introduction", 3, 8))
	if err != nil {
		t.Fatalf("Resolve(selection) failed: %v", err)
	}
	if region.Text != "study" {
		t.Errorf("selection text = %q, want %q", region.Text, "study")
	}
}

func TestResolve_NotFound(t *testing.T) {
	doc := newTestDocument()

	scopes := []Scope{
		Section("chapter-9"),
		Section("chapter-2/figures/fig-1"),
		Selection("introduction", 5, 500),
		Selection("introduction", 4, 4),
		{Kind: "paragraph", ID: "introduction"},
	}
	for _, scope := range scopes {
		if _, err := Resolve(doc, scope); !errors.Is(err, ErrScopeNotFound) {
			t.Errorf("Resolve(%s) error = %v, want ErrScopeNotFound", scope, err)
		}
	}
}

func TestScope_Contains(t *testing.T) {
	scope := Section("chapter-2")

	cases := map[string]bool{
		"chapter-2":                       true,
		"chapter-2/figures/fig-1":         true,
		"chapter-20":                      false,
		"introduction":                    false,
		SettingsPrefix + "citation-style": true,
	}
	for path, want := range cases {
		if got := scope.Contains(path); got != want {
			t.Errorf("Contains(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestParseMarkdown(t *testing.T) {
	src := `# My Thesis
@source sales.csv
@citation-style IEEE

## Introduction
Hello world.

## Chapter 2
Prior work [@smith2020].

## Chapter 2
Duplicate heading.
`
	doc := ParseMarkdown("thesis", []byte(src))

	if doc.Title != "My Thesis" {
		t.Errorf("Title = %q", doc.Title)
	}
	if !doc.HasSource("sales.csv") {
		t.Error("expected sales.csv source")
	}
	if doc.Setting(SettingCitationStyle) != "IEEE" {
		t.Errorf("citation style = %q", doc.Setting(SettingCitationStyle))
	}
	if n, ok := doc.Node("chapter-2"); !ok || n.Text != "Prior work [@smith2020]." {
		t.Errorf("chapter-2 = %+v, %v", n, ok)
	}
	if _, ok := doc.Node("chapter-2-2"); !ok {
		t.Error("expected de-duplicated chapter-2-2")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Related Work":      "related-work",
		"  Chapter 2: Data": "chapter-2-data",
		"Methodology":       "methodology",
		"!!!":               "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
