package fs_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/calidex"
	"github.com/fwojciec/calidex/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WriteFile(t *testing.T) {
	t.Parallel()

	t.Run("implements calidex.FileStore interface", func(t *testing.T) {
		t.Parallel()
		var _ calidex.FileStore = fs.NewStore()
	})

	t.Run("creates parent directories and writes content", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		path := filepath.Join(root, "herbert_frank", "dune.epub")

		n, err := fs.NewStore().WriteFile(context.Background(), path, strings.NewReader("epub bytes"))
		require.NoError(t, err)
		assert.Equal(t, int64(10), n)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "epub bytes", string(content))
	})

	t.Run("reuses existing directory", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		store := fs.NewStore()
		ctx := context.Background()

		_, err := store.WriteFile(ctx, filepath.Join(root, "austen_jane", "emma.epub"), strings.NewReader("a"))
		require.NoError(t, err)
		_, err = store.WriteFile(ctx, filepath.Join(root, "austen_jane", "emma.pdf"), strings.NewReader("b"))
		require.NoError(t, err)

		entries, err := os.ReadDir(filepath.Join(root, "austen_jane"))
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("replaces existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "dune.epub")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

		_, err := fs.NewStore().WriteFile(context.Background(), path, strings.NewReader("new"))
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(content))
	})

	t.Run("leaves no file behind when reader fails", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		path := filepath.Join(root, "dune.epub")
		r := io.MultiReader(strings.NewReader("partial"), &failingReader{err: errors.New("connection reset")})

		_, err := fs.NewStore().WriteFile(context.Background(), path, r)
		require.Error(t, err)

		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("stops when context is canceled", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fs.NewStore().WriteFile(ctx, filepath.Join(root, "dune.epub"), strings.NewReader("data"))
		require.ErrorIs(t, err, context.Canceled)

		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

type failingReader struct {
	err error
}

func (r *failingReader) Read(_ []byte) (int, error) {
	return 0, r.err
}
