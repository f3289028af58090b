// Package fs provides filesystem storage for downloaded book files.
package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/calidex"
	"github.com/google/uuid"
)

// Ensure Store implements calidex.FileStore at compile time.
var _ calidex.FileStore = (*Store)(nil)

// Store writes files to the local filesystem.
// Each file is written to a temporary sibling first and renamed into place
// once complete, so an interrupted download never leaves a partial file at
// the target path.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// WriteFile copies r to path, creating parent directories as needed.
// Returns the number of bytes written.
func (s *Store) WriteFile(ctx context.Context, path string, r io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	tmpPath := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, &contextReader{ctx: ctx, r: r})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return n, err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return n, err
	}
	return n, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
