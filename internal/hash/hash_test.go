package hash

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSHA256Hasher_HashBytes(t *testing.T) {
	hasher := NewSHA256Hasher()

	// sha256("hello world")
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got := hasher.HashBytes([]byte("hello world")); got != want {
		t.Errorf("HashBytes = %s, want %s", got, want)
	}
	if hasher.HashBytes([]byte("a")) == hasher.HashBytes([]byte("b")) {
		t.Error("different inputs produced the same digest")
	}
}

func TestSHA256Hasher_HashFile(t *testing.T) {
	hasher := NewSHA256Hasher()
	dir := t.TempDir()

	path := filepath.Join(dir, "report.md")
	if err := os.WriteFile(path, []byte("hello world"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	got, err := hasher.HashFile(path)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	if got != hasher.HashBytes([]byte("hello world")) {
		t.Errorf("HashFile and HashBytes disagree: %s", got)
	}

	if _, err := hasher.HashFile(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFakeHasher(t *testing.T) {
	h := NewFakeHasher("fixed")
	if h.HashBytes([]byte("x")) != "fixed" {
		t.Error("FakeHasher ignored its digest")
	}
}
