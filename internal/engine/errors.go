package engine

import (
	"errors"

	"github.com/danieljhkim/redline/internal/oplog"
)

var (
	// ErrNotFound indicates a plan or operation was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a request failed validation.
	ErrValidation = errors.New("validation failed")

	// ErrDocumentExists indicates a document ID is already taken.
	ErrDocumentExists = errors.New("document already exists")

	// ErrStorage indicates persisting history or a document failed.
	ErrStorage = oplog.ErrStorage
)
