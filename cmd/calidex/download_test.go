package main_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fwojciec/calidex"
	main "github.com/fwojciec/calidex/cmd/calidex"
	"github.com/fwojciec/calidex/download"
	"github.com/fwojciec/calidex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func downloadDeps(fetch func(url string) (io.ReadCloser, error)) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
		Downloader: &download.Downloader{
			Servers: &mock.ServerService{
				FindServerByURLFn: func(_ context.Context, url string) (*calidex.Server, error) {
					if url != "http://h:1" {
						return nil, calidex.Errorf(calidex.ENOTFOUND, "server %q not found", url)
					}
					return &calidex.Server{URL: url}, nil
				},
			},
			Books: &mock.BookService{
				FindBooksFn: func(_ context.Context, filter calidex.BookFilter) ([]*calidex.Book, error) {
					if filter.Offset > 0 {
						return nil, nil
					}
					return []*calidex.Book{pride()}, nil
				},
			},
			Fetcher: &mock.FileFetcher{
				FetchFileFn: func(_ context.Context, url string) (io.ReadCloser, error) { return fetch(url) },
			},
			Store: &mock.FileStore{
				WriteFileFn: func(_ context.Context, _ string, r io.Reader) (int64, error) {
					return io.Copy(io.Discard, r)
				},
			},
		},
	}, stdout, stderr
}

func TestDownloadCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("downloads every file and prints summary", func(t *testing.T) {
		t.Parallel()

		deps, stdout, stderr := downloadDeps(func(url string) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(strings.Repeat("x", 1536))), nil
		})

		err := (&main.DownloadCmd{URL: "h:1", Output: "/books", Concurrency: 2}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, 2, deps.Downloader.Concurrency)
		output := stdout.String()
		assert.Contains(t, output, "Downloading 2 files from http://h:1")
		assert.Contains(t, output, "/books/jane_austen/pride__prejudice.epub")
		assert.Contains(t, output, "Downloaded 2 files (3.0 KB)")
		assert.Empty(t, stderr.String())
	})

	t.Run("lists failures and returns EDOWNLOAD", func(t *testing.T) {
		t.Parallel()

		deps, stdout, stderr := downloadDeps(func(url string) (io.ReadCloser, error) {
			if strings.Contains(url, "azw3") {
				return nil, calidex.Errorf(calidex.EDOWNLOAD, "HTTP 404 for %s", url)
			}
			return io.NopCloser(strings.NewReader("x")), nil
		})

		err := (&main.DownloadCmd{URL: "http://h:1", Output: "/books"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, calidex.EDOWNLOAD, calidex.ErrorCode(err))
		assert.Contains(t, stdout.String(), "Downloaded 1 files")
		assert.Contains(t, stderr.String(), "skip /books/jane_austen/pride__prejudice.azw3: HTTP 404")
		assert.Contains(t, stderr.String(), "Errors:")
	})

	t.Run("reports unknown server", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := downloadDeps(nil)

		err := (&main.DownloadCmd{URL: "http://other:1", Output: "/books"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, calidex.ENOTFOUND, calidex.ErrorCode(err))
		assert.Contains(t, stderr.String(), "not found")
	})
}
