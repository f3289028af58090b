package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/fwojciec/calidex"
	main "github.com/fwojciec/calidex/cmd/calidex"
	"github.com/fwojciec/calidex/crawl"
	"github.com/fwojciec/calidex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleBookCatalog() *mock.Catalog {
	return &mock.Catalog{
		ServerURLFn: func() string { return "http://h:1" },
		LibrariesFn: func(_ context.Context) ([]string, error) { return []string{"calibre"}, nil },
		CountFn:     func(_ context.Context, _ string) (int, error) { return 1, nil },
		FetchIDsFn: func(_ context.Context, _ string, _, _ int) ([]int, error) {
			return []int{1}, nil
		},
		FetchMetadataFn: func(_ context.Context, _ string, _ []int) (map[int]calidex.Metadata, error) {
			return map[int]calidex.Metadata{1: {
				"uuid":  json.RawMessage(`"uuid-1"`),
				"title": json.RawMessage(`"Dune"`),
			}}, nil
		},
	}
}

func TestIndexCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("indexes each server", func(t *testing.T) {
		t.Parallel()

		var inserted []string
		var catalogs []string
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			NewCatalog: func(rawURL string) (calidex.Catalog, error) {
				catalogs = append(catalogs, rawURL)
				return singleBookCatalog(), nil
			},
			Indexer: &crawl.Indexer{
				Servers: &mock.ServerService{
					UpsertServerFn:  func(_ context.Context, _ *calidex.Server) (bool, error) { return true, nil },
					RefreshServerFn: func(_ context.Context, _ *calidex.Server) error { return nil },
				},
				Books: &mock.BookService{
					InsertBookFn: func(_ context.Context, b *calidex.Book) (bool, error) {
						inserted = append(inserted, b.UUID)
						return len(inserted) == 1, nil
					},
				},
			},
		}

		cmd := &main.IndexCmd{URLs: []string{"h:1", "h:2"}, PageSize: 1000}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, []string{"h:1", "h:2"}, catalogs)
		assert.Equal(t, []string{"uuid-1", "uuid-1"}, inserted)
		output := stdout.String()
		assert.Contains(t, output, "Indexing http://h:1")
		assert.Contains(t, output, "calibre: 1/1 (1 new)")
		assert.Contains(t, output, "Added 1 books (0 already indexed, 0 invalid)")
		assert.Contains(t, output, "Added 0 books (1 already indexed, 0 invalid)")
	})

	t.Run("reports invalid server URL", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			NewCatalog: func(rawURL string) (calidex.Catalog, error) {
				return nil, calidex.Errorf(calidex.EINVALID, "unsupported scheme %q in server URL", "ftp")
			},
		}

		err := (&main.IndexCmd{URLs: []string{"ftp://h"}, PageSize: 1000}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "unsupported scheme")
	})

	t.Run("reports unavailable server", func(t *testing.T) {
		t.Parallel()

		catalog := singleBookCatalog()
		catalog.LibrariesFn = func(_ context.Context) ([]string, error) {
			return nil, calidex.Errorf(calidex.EUNAVAILABLE, "request http://h:1/ajax/library-info: connection refused")
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     &bytes.Buffer{},
			Stderr:     stderr,
			NewCatalog: func(string) (calidex.Catalog, error) { return catalog, nil },
			Indexer:    &crawl.Indexer{Servers: &mock.ServerService{}, Books: &mock.BookService{}},
		}

		err := (&main.IndexCmd{URLs: []string{"h:1"}, PageSize: 1000}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, calidex.EUNAVAILABLE, calidex.ErrorCode(err))
		assert.Contains(t, stderr.String(), "connection refused")
	})
}
