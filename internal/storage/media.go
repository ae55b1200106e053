// Package storage persists uploaded binary assets on the local filesystem.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type MediaStore struct {
	root string
}

func NewMediaStore(root string) *MediaStore {
	return &MediaStore{
		root: root,
	}
}

// Save writes data under <root>/<subdir>/ using a random name that keeps the
// original extension, and returns the path relative to the media root.
func (s *MediaStore) Save(subdir, originalName string, data []byte) (string, error) {
	dir := filepath.Join(s.root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll -> %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("os.WriteFile -> %w", err)
	}

	return filepath.ToSlash(filepath.Join(subdir, name)), nil
}
