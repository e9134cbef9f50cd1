// Package storage keeps uploaded audio and synthesized speech on disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrInvalidName rejects names that would leave the base directory.
var ErrInvalidName = errors.New("invalid file name")

// FileStore 将文件写入 BasePath 目录。
// Files are written to BasePath, one flat directory.
type FileStore struct {
	BasePath string
}

// NewFileStore creates base if needed.
func NewFileStore(base string) (*FileStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{BasePath: base}, nil
}

// Path returns where name lives in the store.
func (s *FileStore) Path(name string) (string, error) {
	clean := filepath.Base(filepath.Clean(name))
	if clean == "." || clean == ".." || clean == string(filepath.Separator) || clean != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.BasePath, clean), nil
}

// Save copies r into name and returns the number of bytes written. The file
// is replaced atomically: readers see either the old or the new content.
func (s *FileStore) Save(name string, r io.Reader) (int64, error) {
	dst, err := s.Path(name)
	if err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(s.BasePath, "."+name+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, fmt.Errorf("rename %s: %w", name, err)
	}
	return n, nil
}

// Load reads the whole file.
func (s *FileStore) Load(name string) ([]byte, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}
