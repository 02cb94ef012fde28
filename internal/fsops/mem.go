package fsops

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// MemFS implements FS in memory for tests.
type MemFS struct {
	mu    sync.Mutex
	files map[string][]byte

	// FailWrites makes every AtomicWrite fail when set
	FailWrites error
}

// NewMemFS creates an empty MemFS.
func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

// MkdirAll is a no-op; directories are implicit.
func (m *MemFS) MkdirAll(path string, perm os.FileMode) error {
	return nil
}

// Remove removes a file.
func (m *MemFS) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[filepath.Clean(path)]; !ok {
		return os.ErrNotExist
	}
	delete(m.files, filepath.Clean(path))
	return nil
}

// AtomicWrite stores a copy of data.
func (m *MemFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return fmt.Errorf("failed to write %s: %w", path, m.FailWrites)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[filepath.Clean(path)] = buf
	return nil
}

// ReadFile returns a copy of the stored data.
func (m *MemFS) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, os.ErrNotExist
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

// Exists reports whether a file is stored at path.
func (m *MemFS) Exists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[filepath.Clean(path)]
	return ok, nil
}

// ListFiles returns the names of files directly inside dir with the suffix.
func (m *MemFS) ListFiles(dir, suffix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir = filepath.Clean(dir)
	names := []string{}
	for p := range m.files {
		if filepath.Dir(p) == dir && strings.HasSuffix(p, suffix) {
			names = append(names, filepath.Base(p))
		}
	}
	sort.Strings(names)
	return names, nil
}

// ValidateIdentifier validates an identifier for safety.
func (m *MemFS) ValidateIdentifier(id string) error {
	return ValidateIdentifier(id)
}
