package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// BlobStore is the opaque content store behind the metadata engine. Records
// reference blobs by the storage path returned from Save; the engine never
// interprets the path beyond passing it back.
type BlobStore interface {
	Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, storagePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, storagePath string) error
}

// DiskStore keeps blobs in a local uploads directory. This is the default
// backend for development.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(_ context.Context, filename string, r io.Reader, _ int64, _ string) (string, error) {
	key := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFilename(filename))

	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("failed to create blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write blob file: %w", err)
	}

	return path.Join(filepath.Base(s.dir), key), nil
}

func (s *DiskStore) Open(_ context.Context, storagePath string) (io.ReadCloser, error) {
	f, err := os.Open(s.resolve(storagePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %s: %w", storagePath, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open blob file: %w", err)
	}
	return f, nil
}

func (s *DiskStore) Delete(_ context.Context, storagePath string) error {
	if err := os.Remove(s.resolve(storagePath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob file: %w", err)
	}
	return nil
}

// resolve maps a stored "uploads/<key>" path back into the store directory.
func (s *DiskStore) resolve(storagePath string) string {
	key := path.Base(storagePath)
	return filepath.Join(s.dir, key)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	return strings.Join(strings.Fields(name), "_")
}
