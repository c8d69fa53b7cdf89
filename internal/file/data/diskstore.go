package data

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore is the local-filesystem content area. Objects are addressed by
// stored name inside a single base directory.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the base directory of the content area.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save streams content to disk. On any write failure the partial file is
// removed so no orphaned bytes survive a failed upload.
func (s *DiskStore) Save(ctx context.Context, key string, content io.Reader, _ string) (int64, string, error) {
	path := filepath.Join(s.dir, key)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, "", fmt.Errorf("failed to write file: %w", err)
	}

	return written, path, nil
}

// Open returns a reader over the stored bytes. A missing object satisfies
// errors.Is(err, fs.ErrNotExist).
func (s *DiskStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, key))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Delete removes the stored bytes. A missing object satisfies
// errors.Is(err, fs.ErrNotExist).
func (s *DiskStore) Delete(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(s.dir, key))
}
