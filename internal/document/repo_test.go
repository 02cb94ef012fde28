package document

import (
	"errors"
	"testing"

	"github.com/danieljhkim/redline/internal/fsops"
)

func TestFileRepo_SaveLoadList(t *testing.T) {
	repo := NewFileRepo(fsops.NewRealFS(), t.TempDir())

	doc := newTestDocument()
	if err := repo.Save(doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	other := New("notes", "Notes")
	if err := repo.Save(other); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := repo.Load("thesis")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want, _ := doc.Canonical()
	got, _ := loaded.Canonical()
	if string(got) != string(want) {
		t.Errorf("loaded document differs:\n got %s\nwant %s", got, want)
	}

	ids, err := repo.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "notes" || ids[1] != "thesis" {
		t.Errorf("List = %v, want [notes thesis]", ids)
	}
}

func TestFileRepo_LoadMissing(t *testing.T) {
	repo := NewFileRepo(fsops.NewMemFS(), "/docs")

	_, err := repo.Load("missing")
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestFileRepo_RejectsUnsafeIDs(t *testing.T) {
	repo := NewFileRepo(fsops.NewMemFS(), "/docs")

	if _, err := repo.Load("../etc"); err == nil {
		t.Error("expected error for traversal ID")
	}
	if err := repo.Save(New("a/b", "x")); err == nil {
		t.Error("expected error for ID with separator")
	}
}

func TestFileRepo_Delete(t *testing.T) {
	repo := NewFileRepo(fsops.NewMemFS(), "/docs")
	if err := repo.Save(New("notes", "Notes")); err != nil {
		t.Fatal(err)
	}

	if err := repo.Delete("notes"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repo.Delete("notes"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("second Delete error = %v, want ErrDocumentNotFound", err)
	}
}
