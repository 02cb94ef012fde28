package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/redline/internal/fsops"
)

// ErrDocumentNotFound indicates no document is stored under an ID.
var ErrDocumentNotFound = errors.New("document not found")

// Repo persists documents.
type Repo interface {
	// Load loads the document with the given ID.
	// Returns ErrDocumentNotFound if it doesn't exist.
	Load(id string) (*Document, error)

	// Save saves the document atomically.
	Save(doc *Document) error

	// List returns the IDs of all stored documents, sorted.
	List() ([]string, error)

	// Delete removes a stored document.
	Delete(id string) error
}

// FileRepo implements Repo using one JSON file per document.
type FileRepo struct {
	fs  fsops.FS
	dir string
}

// NewFileRepo creates a new FileRepo rooted at dir.
func NewFileRepo(fs fsops.FS, dir string) *FileRepo {
	return &FileRepo{fs: fs, dir: dir}
}

func (r *FileRepo) path(id string) string {
	return filepath.Join(r.dir, id+".json")
}

// Load loads the document with the given ID.
func (r *FileRepo) Load(id string) (*Document, error) {
	if err := r.fs.ValidateIdentifier(id); err != nil {
		return nil, fmt.Errorf("invalid document ID: %w", err)
	}

	data, err := r.fs.ReadFile(r.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	if doc.NodeList == nil {
		doc.NodeList = []Node{}
	}
	if doc.SourceList == nil {
		doc.SourceList = []string{}
	}

	return &doc, nil
}

// Save saves the document atomically.
func (r *FileRepo) Save(doc *Document) error {
	if err := r.fs.ValidateIdentifier(doc.ID); err != nil {
		return fmt.Errorf("invalid document ID: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if err := r.fs.AtomicWrite(r.path(doc.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return nil
}

// List returns the IDs of all stored documents.
func (r *FileRepo) List() ([]string, error) {
	names, err := r.fs.ListFiles(r.dir, ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	ids := make([]string, 0, len(names))
	for _, name := range names {
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

// Delete removes a stored document.
func (r *FileRepo) Delete(id string) error {
	if err := r.fs.ValidateIdentifier(id); err != nil {
		return fmt.Errorf("invalid document ID: %w", err)
	}
	if err := r.fs.Remove(r.path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
