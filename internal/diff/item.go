package diff

import (
	"errors"
	"fmt"
)

// Kind is the shape of a change.
type Kind string

// Kind constants
const (
	KindInsert Kind = "insert"
	KindDelete Kind = "delete"
	KindModify Kind = "modify"
)

// Category groups changes for preview display.
type Category string

// Category constants
const (
	CategoryStructure Category = "structure"
	CategoryFormat    Category = "format"
	CategoryFigure    Category = "figure"
	CategoryContent   Category = "content"
)

// ErrInvalidItem indicates an Item whose Kind disagrees with its payload.
var ErrInvalidItem = errors.New("invalid diff item")

// Item is one before/after change unit.
type Item struct {
	// Path addresses the document node the change applies to
	Path string `json:"path"`

	// Before is the node text prior to the change (empty for inserts)
	Before string `json:"before,omitempty"`

	// After is the node text after the change (empty for deletes)
	After string `json:"after,omitempty"`

	// Kind is insert, delete or modify
	Kind Kind `json:"kind"`

	// Category is the display grouping
	Category Category `json:"category"`

	// Description is a human-readable explanation
	Description string `json:"description"`

	// Index is the node position the change applied at
	Index int `json:"index"`
}

// Validate checks that the Kind matches the presence of Before and After.
func (it Item) Validate() error {
	if it.Path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidItem)
	}
	switch it.Kind {
	case KindInsert:
		if it.Before != "" || it.After == "" {
			return fmt.Errorf("%w: insert at %s must have only an after payload", ErrInvalidItem, it.Path)
		}
	case KindDelete:
		if it.Before == "" || it.After != "" {
			return fmt.Errorf("%w: delete at %s must have only a before payload", ErrInvalidItem, it.Path)
		}
	case KindModify:
		if it.Before == "" || it.After == "" {
			return fmt.Errorf("%w: modify at %s must have both payloads", ErrInvalidItem, it.Path)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q at %s", ErrInvalidItem, it.Kind, it.Path)
	}
	return nil
}

// Invert returns the item that undoes it.
func Invert(it Item) (Item, error) {
	if err := it.Validate(); err != nil {
		return Item{}, err
	}

	inv := it
	inv.Before, inv.After = it.After, it.Before
	switch it.Kind {
	case KindInsert:
		inv.Kind = KindDelete
	case KindDelete:
		inv.Kind = KindInsert
	}
	inv.Description = "revert: " + it.Description
	return inv, nil
}

// InvertAll inverts every item and reverses the order. The first invalid
// item aborts the whole inversion.
func InvertAll(items []Item) ([]Item, error) {
	out := make([]Item, len(items))
	for i, it := range items {
		inv, err := Invert(it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[len(items)-1-i] = inv
	}
	return out, nil
}

// IsInverse reports whether a is the exact structural inverse of b: same
// path and position, payloads swapped, insert and delete flipped.
func IsInverse(a, b Item) bool {
	if a.Path != b.Path || a.Index != b.Index || a.Category != b.Category {
		return false
	}
	if a.Before != b.After || a.After != b.Before {
		return false
	}
	switch a.Kind {
	case KindInsert:
		return b.Kind == KindDelete
	case KindDelete:
		return b.Kind == KindInsert
	case KindModify:
		return b.Kind == KindModify
	}
	return false
}
