// Package recipes stores named, reusable command templates.
//
// Recipes have no relation to execution history. The whole book is a JSON
// array of Recipe under one kv key and is not bounded.
package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danieljhkim/redline/internal/clock"
	"github.com/danieljhkim/redline/internal/kv"
	"github.com/danieljhkim/redline/internal/logging"
)

// Key is where the recipe book is stored.
var Key = kv.Key("recipes", "book")

var (
	// ErrNotFound is returned when no recipe matches.
	ErrNotFound = errors.New("recipe not found")

	// ErrEmptyTemplate is returned when saving a blank template.
	ErrEmptyTemplate = errors.New("recipe template is empty")

	// ErrNameTaken is returned when a name is already used by another recipe.
	ErrNameTaken = errors.New("recipe name already in use")
)

const maxDerivedName = 40

// Recipe is a saved command template.
type Recipe struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Template  string    `json:"template"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Book is the recipe store.
type Book struct {
	mu    sync.Mutex
	list  *kv.List[Recipe]
	clock clock.Clock
}

// NewBook creates a Book on backend.
func NewBook(backend kv.Store, clk clock.Clock, log *logging.Logger) *Book {
	return &Book{list: kv.NewList[Recipe](backend, Key, log), clock: clk}
}

// Save stores a new recipe. An empty name is derived from the template.
func (b *Book) Save(ctx context.Context, name, template string) (*Recipe, error) {
	template = strings.TrimSpace(template)
	if template == "" {
		return nil, ErrEmptyTemplate
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = deriveName(template)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.list.Load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexByName(all, name); i >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNameTaken, name)
	}

	now := b.clock.Now()
	r := Recipe{
		ID:        uuid.NewString(),
		Name:      name,
		Template:  template,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.list.Save(ctx, append(all, r)); err != nil {
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}
	return &r, nil
}

// List returns all recipes in creation order.
func (b *Book) List(ctx context.Context) ([]Recipe, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.list.Load(ctx)
}

// Get returns the recipe whose id or name is ref.
func (b *Book) Get(ctx context.Context, ref string) (*Recipe, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.list.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(all, ref)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return &all[i], nil
}

// Update changes the name and/or template of a recipe. Empty values are
// left unchanged.
func (b *Book) Update(ctx context.Context, ref, name, template string) (*Recipe, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.list.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(all, ref)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}

	if name = strings.TrimSpace(name); name != "" {
		if j := indexByName(all, name); j >= 0 && j != i {
			return nil, fmt.Errorf("%w: %s", ErrNameTaken, name)
		}
		all[i].Name = name
	}
	if template = strings.TrimSpace(template); template != "" {
		all[i].Template = template
	}
	all[i].UpdatedAt = b.clock.Now()

	if err := b.list.Save(ctx, all); err != nil {
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}
	return &all[i], nil
}

// Delete removes the recipe whose id or name is ref. It reports whether a
// recipe was removed.
func (b *Book) Delete(ctx context.Context, ref string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.list.Load(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(all, ref)
	if i < 0 {
		return false, nil
	}
	all = append(all[:i], all[i+1:]...)
	if err := b.list.Save(ctx, all); err != nil {
		return false, fmt.Errorf("failed to delete recipe: %w", err)
	}
	return true, nil
}

func indexOf(all []Recipe, ref string) int {
	for i, r := range all {
		if r.ID == ref {
			return i
		}
	}
	return indexByName(all, ref)
}

func indexByName(all []Recipe, name string) int {
	for i, r := range all {
		if r.Name == name {
			return i
		}
	}
	return -1
}

func deriveName(template string) string {
	line, _, _ := strings.Cut(template, "\n")
	runes := []rune(line)
	if len(runes) > maxDerivedName {
		return strings.TrimSpace(string(runes[:maxDerivedName])) + "…"
	}
	return line
}
