// Package imagestore manages the directory item images are copied into.
// The catalog stores only the stable references returned from here, never
// raw bytes.
package imagestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store copies item images into a managed directory.
type Store struct {
	// dir is the managed image directory.
	dir string
}

// New creates the managed directory if needed and returns a Store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// CopyIn copies the file at srcPath into the managed directory under a
// fresh name, keeping the original extension, and returns the stable
// reference to store on the item.
func (s *Store) CopyIn(srcPath string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source image: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + filepath.Ext(srcPath)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("copy image: %w", err)
	}
	return name, nil
}

// Path returns the filesystem path for a stored reference.
func (s *Store) Path(ref string) string {
	return filepath.Join(s.dir, ref)
}
