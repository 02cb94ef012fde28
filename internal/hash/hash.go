// Package hash computes content digests.
//
// Redline identifies document snapshots by the SHA-256 digest of their
// canonical encoding so an undo can be traced back to the exact state it
// restored. The fake implementation returns fixed digests for tests.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Hasher computes digests.
type Hasher interface {
	// HashBytes returns the hex digest of data.
	HashBytes(data []byte) string

	// HashFile returns the hex digest of the file at path.
	HashFile(path string) (string, error)
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashBytes returns the SHA-256 digest of data.
func (h *SHA256Hasher) HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile computes the SHA-256 digest of the file at path.
func (h *SHA256Hasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// FakeHasher returns predetermined digests.
type FakeHasher struct {
	// Digest is returned for every input
	Digest string
}

// NewFakeHasher creates a FakeHasher returning digest.
func NewFakeHasher(digest string) *FakeHasher {
	return &FakeHasher{Digest: digest}
}

func (h *FakeHasher) HashBytes([]byte) string {
	return h.Digest
}

func (h *FakeHasher) HashFile(string) (string, error) {
	return h.Digest, nil
}
