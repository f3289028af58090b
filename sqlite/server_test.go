package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/calidex"
	"github.com/fwojciec/calidex/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(url string, counts map[string]int) *calidex.Server {
	s := &calidex.Server{URL: url, Libraries: map[string]*calidex.Library{}}
	for name, n := range counts {
		s.Libraries[name] = &calidex.Library{TotalCount: n}
		s.TotalBooks += n
	}
	return s
}

func TestServerService_UpsertServer(t *testing.T) {
	t.Parallel()

	t.Run("creates new server", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewServerService(db)
		ctx := context.Background()

		created, err := svc.UpsertServer(ctx, newServer("http://h:1", map[string]int{"calibre": 3}))
		require.NoError(t, err)
		assert.True(t, created)

		found, err := svc.FindServerByURL(ctx, "http://h:1")
		require.NoError(t, err)
		assert.Equal(t, 3, found.TotalBooks)
		require.Contains(t, found.Libraries, "calibre")
		assert.Equal(t, 3, found.Libraries["calibre"].TotalCount)
		assert.Equal(t, 0, found.Libraries["calibre"].LastIndexed)
	})

	t.Run("leaves existing server metadata untouched", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewServerService(db)
		ctx := context.Background()

		_, err := svc.UpsertServer(ctx, newServer("http://h:1", map[string]int{"calibre": 3}))
		require.NoError(t, err)

		created, err := svc.UpsertServer(ctx, newServer("http://h:1", map[string]int{"calibre": 10}))
		require.NoError(t, err)
		assert.False(t, created)

		found, err := svc.FindServerByURL(ctx, "http://h:1")
		require.NoError(t, err)
		assert.Equal(t, 3, found.TotalBooks)
		assert.Equal(t, 3, found.Libraries["calibre"].TotalCount)
	})

	t.Run("returns EINVALID without URL", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewServerService(db)

		_, err := svc.UpsertServer(context.Background(), &calidex.Server{})
		require.Error(t, err)
		assert.Equal(t, calidex.EINVALID, calidex.ErrorCode(err))
	})
}

func TestServerService_RefreshServer(t *testing.T) {
	t.Parallel()

	t.Run("overwrites stored metadata", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewServerService(db)
		ctx := context.Background()

		server := newServer("http://h:1", map[string]int{"calibre": 3})
		_, err := svc.UpsertServer(ctx, server)
		require.NoError(t, err)

		server.Libraries["calibre"].LastIndexed = 2
		server.Libraries["calibre"].TotalCount = 5
		server.TotalBooks = 5
		require.NoError(t, svc.RefreshServer(ctx, server))

		found, err := svc.FindServerByURL(ctx, "http://h:1")
		require.NoError(t, err)
		assert.Equal(t, 5, found.TotalBooks)
		assert.Equal(t, 2, found.Libraries["calibre"].LastIndexed)
		assert.Equal(t, 5, found.Libraries["calibre"].TotalCount)
	})

	t.Run("returns ENOTFOUND for unknown server", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewServerService(db)

		err := svc.RefreshServer(context.Background(), newServer("http://h:1", nil))
		require.Error(t, err)
		assert.Equal(t, calidex.ENOTFOUND, calidex.ErrorCode(err))
	})
}

func TestServerService_FindServers(t *testing.T) {
	t.Parallel()

	t.Run("returns servers ordered by URL", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewServerService(db)
		ctx := context.Background()

		for _, url := range []string{"http://b:1", "http://a:1", "http://c:1"} {
			_, err := svc.UpsertServer(ctx, newServer(url, map[string]int{"calibre": 1}))
			require.NoError(t, err)
		}

		servers, err := svc.FindServers(ctx)
		require.NoError(t, err)
		require.Len(t, servers, 3)
		assert.Equal(t, "http://a:1", servers[0].URL)
		assert.Equal(t, "http://b:1", servers[1].URL)
		assert.Equal(t, "http://c:1", servers[2].URL)
	})

	t.Run("returns empty result for empty store", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewServerService(db)

		servers, err := svc.FindServers(context.Background())
		require.NoError(t, err)
		assert.Empty(t, servers)
	})
}

func TestServerService_FindServerByURL(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := sqlite.NewServerService(db)

	_, err := svc.FindServerByURL(context.Background(), "http://missing:1")
	require.Error(t, err)
	assert.Equal(t, calidex.ENOTFOUND, calidex.ErrorCode(err))
}

func TestServerService_DeleteServer(t *testing.T) {
	t.Parallel()

	t.Run("removes server and its books only", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		servers := sqlite.NewServerService(db)
		books := sqlite.NewBookService(db)
		ctx := context.Background()

		for _, url := range []string{"http://a:1", "http://b:1"} {
			_, err := servers.UpsertServer(ctx, newServer(url, map[string]int{"calibre": 1}))
			require.NoError(t, err)
		}
		_, err := books.InsertBook(ctx, newBook("uuid-a", "http://a:1", "Dune"))
		require.NoError(t, err)
		_, err = books.InsertBook(ctx, newBook("uuid-b", "http://b:1", "Emma"))
		require.NoError(t, err)

		require.NoError(t, servers.DeleteServer(ctx, "http://a:1"))

		_, err = servers.FindServerByURL(ctx, "http://a:1")
		assert.Equal(t, calidex.ENOTFOUND, calidex.ErrorCode(err))
		_, err = books.FindBookByUUID(ctx, "uuid-a")
		assert.Equal(t, calidex.ENOTFOUND, calidex.ErrorCode(err))

		_, err = books.FindBookByUUID(ctx, "uuid-b")
		require.NoError(t, err)
	})

	t.Run("returns ENOTFOUND for unknown server", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewServerService(db)

		err := svc.DeleteServer(context.Background(), "http://missing:1")
		require.Error(t, err)
		assert.Equal(t, calidex.ENOTFOUND, calidex.ErrorCode(err))
	})
}
