package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/redline/internal/document"
)

// InitDocument creates an empty document.
func (e *Engine) InitDocument(req *InitDocumentRequest) (*DocumentResult, error) {
	if err := e.fs.ValidateIdentifier(req.ID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := e.ensureAbsent(req.ID); err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = req.ID
	}
	doc := document.New(req.ID, title)
	if err := e.docs.Save(doc); err != nil {
		return nil, err
	}
	return &DocumentResult{Document: doc}, nil
}

// ImportDocument parses a markdown file into a stored document.
func (e *Engine) ImportDocument(req *ImportDocumentRequest) (*DocumentResult, error) {
	data, err := e.fs.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", req.Path, err)
	}

	id := req.ID
	if id == "" {
		id = document.Slugify(strings.TrimSuffix(filepath.Base(req.Path), filepath.Ext(req.Path)))
	}
	if err := e.fs.ValidateIdentifier(id); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if !req.Force {
		if err := e.ensureAbsent(id); err != nil {
			return nil, err
		}
	}

	doc := document.ParseMarkdown(id, data)
	if err := e.docs.Save(doc); err != nil {
		return nil, err
	}
	return &DocumentResult{Document: doc}, nil
}

// ShowDocument loads a stored document.
func (e *Engine) ShowDocument(id string) (*DocumentResult, error) {
	doc, err := e.docs.Load(id)
	if err != nil {
		return nil, err
	}
	return &DocumentResult{Document: doc}, nil
}

// ListDocuments returns the IDs of stored documents.
func (e *Engine) ListDocuments() (*DocumentListResult, error) {
	ids, err := e.docs.List()
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{IDs: ids}, nil
}

func (e *Engine) ensureAbsent(id string) error {
	_, err := e.docs.Load(id)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrDocumentExists, id)
	case errors.Is(err, document.ErrDocumentNotFound):
		return nil
	default:
		return err
	}
}
