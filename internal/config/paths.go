// Package config manages redline configuration and filesystem paths.
//
// The default root is ~/.redline/ containing documents/, data/ and
// config.yaml. REDLINE_ROOT overrides the root.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the filesystem paths used by redline.
type Paths struct {
	// Root is the base directory for all redline data (default: ~/.redline)
	Root string

	// Documents holds one JSON file per document
	Documents string

	// Data holds the file key-value backend (history, plans, recipes)
	Data string

	// Config is the path to the config file
	Config string

	// Env is the path to the optional .env file
	Env string
}

// DefaultPaths returns the default paths for redline.
// Paths can be overridden with environment variables:
// - REDLINE_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("REDLINE_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".redline")
	}
	return PathsAt(root), nil
}

// PathsAt returns the layout rooted at root.
func PathsAt(root string) *Paths {
	return &Paths{
		Root:      root,
		Documents: filepath.Join(root, "documents"),
		Data:      filepath.Join(root, "data"),
		Config:    filepath.Join(root, "config.yaml"),
		Env:       filepath.Join(root, ".env"),
	}
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Root, p.Documents, p.Data} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
