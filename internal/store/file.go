package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists each key as a plain JSON file under a base
// directory. It is the desktop/browser-profile analog of web local
// storage: readable on disk, no at-rest protection.
type FileStore struct {
	dir string
}

// NewFileStore ensures the base directory exists and returns a handle.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "./.schoolapp"
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("read store key %s: %w", key, err)
	}
	return raw, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	if err := os.WriteFile(s.path(key), value, 0o600); err != nil {
		return fmt.Errorf("write store key %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete store key %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
