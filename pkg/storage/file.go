package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/mag7-collector/pkg/logger"
)

// FileStore writes objects below a local directory, mirroring the key layout
type FileStore struct {
	root   string
	logger *logger.Logger
}

// NewFileStore creates a store rooted at dir
func NewFileStore(dir string, log *logger.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("STORAGE_DIR is not set")
	}
	return &FileStore{root: dir, logger: log.WithModule("storage")}, nil
}

// Path returns the file path key maps to
func (f *FileStore) Path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return filepath.Join(f.root, clean), nil
}

// Put writes body atomically (temp file + rename)
func (f *FileStore) Put(ctx context.Context, key string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := f.Path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename object: %w", err)
	}

	f.logger.WithFields(map[string]interface{}{
		"path":  path,
		"bytes": len(body),
	}).Info("Object stored")
	return nil
}
