package mock

import (
	"context"
	"io"

	"github.com/fwojciec/calidex"
)

var _ calidex.FileFetcher = (*FileFetcher)(nil)

// FileFetcher is a mock implementation of calidex.FileFetcher.
type FileFetcher struct {
	FetchFileFn func(ctx context.Context, url string) (io.ReadCloser, error)
}

func (f *FileFetcher) FetchFile(ctx context.Context, url string) (io.ReadCloser, error) {
	return f.FetchFileFn(ctx, url)
}

var _ calidex.FileStore = (*FileStore)(nil)

// FileStore is a mock implementation of calidex.FileStore.
type FileStore struct {
	WriteFileFn func(ctx context.Context, path string, r io.Reader) (int64, error)
}

func (s *FileStore) WriteFile(ctx context.Context, path string, r io.Reader) (int64, error) {
	return s.WriteFileFn(ctx, path, r)
}
