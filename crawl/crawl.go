// Package crawl provides catalog indexing orchestration.
// It pages through every library of a remote server, converts records into
// books, and persists both books and crawl progress after every page.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/fwojciec/calidex"
)

// Indexer copies the catalog of a remote server into the local store.
type Indexer struct {
	Servers     calidex.ServerService
	Books       calidex.BookService
	RateLimiter calidex.RateLimiter
	Logger      *slog.Logger
}

// Result holds the outcome of an indexing pass.
type Result struct {
	Inserted int
	Skipped  int
	Invalid  int
	Pages    int
}

// ProgressEvent reports a page that has been stored and persisted.
type ProgressEvent struct {
	Server   string
	Library  string
	Offset   int
	Total    int
	Inserted int
}

// ProgressFunc is a callback for reporting indexing progress.
type ProgressFunc func(event ProgressEvent)

// Process indexes every library of catalog, pageSize ids at a time,
// starting each library at startOffset.
//
// The server row is established once before any paging. Progress is
// refreshed after every page so an interrupted run can be repeated from
// offset 0 without duplicating books. Any catalog or store error aborts
// the pass.
func (ix *Indexer) Process(ctx context.Context, catalog calidex.Catalog, pageSize, startOffset int, progress ProgressFunc) (*Result, error) {
	if pageSize <= 0 {
		return nil, calidex.Errorf(calidex.EINVALID, "page size must be positive, got %d", pageSize)
	}
	if startOffset < 0 {
		return nil, calidex.Errorf(calidex.EINVALID, "start offset must not be negative, got %d", startOffset)
	}

	logger := ix.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	server, err := ix.describe(ctx, catalog)
	if err != nil {
		return nil, err
	}

	created, err := ix.Servers.UpsertServer(ctx, server)
	if err != nil {
		return nil, fmt.Errorf("upsert server: %w", err)
	}
	if !created {
		logger.Info("server already indexed, resuming", "server", server.URL)
		if err := ix.resume(ctx, server); err != nil {
			return nil, err
		}
	}

	host := serverHost(server.URL)
	result := &Result{}

	for _, name := range server.LibraryNames() {
		lib := server.Libraries[name]

		for offset := startOffset; offset < lib.TotalCount; offset += pageSize {
			if ix.RateLimiter != nil {
				if err := ix.RateLimiter.Wait(ctx, host); err != nil {
					return result, err
				}
			}

			inserted, err := ix.indexPage(ctx, catalog, server, name, min(pageSize, lib.TotalCount-offset), offset, result, logger)
			if err != nil {
				return result, err
			}

			if err := ix.Servers.RefreshServer(ctx, server); err != nil {
				return result, fmt.Errorf("refresh server: %w", err)
			}
			result.Pages++

			if progress != nil {
				progress(ProgressEvent{
					Server:   server.URL,
					Library:  name,
					Offset:   offset,
					Total:    lib.TotalCount,
					Inserted: inserted,
				})
			}
		}
	}

	return result, nil
}

// describe builds the in-memory server record from the catalog's libraries
// and their current counts.
func (ix *Indexer) describe(ctx context.Context, catalog calidex.Catalog) (*calidex.Server, error) {
	libraries, err := catalog.Libraries(ctx)
	if err != nil {
		return nil, err
	}

	server := &calidex.Server{
		URL:       catalog.ServerURL(),
		Libraries: make(map[string]*calidex.Library, len(libraries)),
	}
	for _, name := range libraries {
		n, err := catalog.Count(ctx, name)
		if err != nil {
			return nil, err
		}
		server.Libraries[name] = &calidex.Library{TotalCount: n}
		server.TotalBooks += n
	}
	return server, nil
}

// resume carries the stored per-library insert counters into server so a
// repeated pass keeps counting from where the previous one stopped.
func (ix *Indexer) resume(ctx context.Context, server *calidex.Server) error {
	stored, err := ix.Servers.FindServerByURL(ctx, server.URL)
	if err != nil {
		return fmt.Errorf("load server: %w", err)
	}
	for name, lib := range server.Libraries {
		if prev, ok := stored.Libraries[name]; ok {
			lib.LastIndexed = prev.LastIndexed
		}
	}
	return nil
}

// indexPage fetches and stores one page of library. It returns the number
// of books newly inserted from the page.
func (ix *Indexer) indexPage(ctx context.Context, catalog calidex.Catalog, server *calidex.Server, library string, limit, offset int, result *Result, logger *slog.Logger) (int, error) {
	ids, err := catalog.FetchIDs(ctx, library, limit, offset)
	if err != nil {
		return 0, err
	}

	records, err := catalog.FetchMetadata(ctx, library, ids)
	if err != nil {
		return 0, err
	}

	var inserted int
	for _, id := range ids {
		md, ok := records[id]
		if !ok {
			continue
		}

		book, err := calidex.NewBook(server.URL, library, md)
		if err != nil {
			logger.Warn("skipping invalid record",
				"server", server.URL,
				"library", library,
				"id", id,
				"err", calidex.ErrorMessage(err),
			)
			result.Invalid++
			continue
		}

		ok, err = ix.Books.InsertBook(ctx, book)
		if err != nil {
			return inserted, fmt.Errorf("insert book %s: %w", book.UUID, err)
		}
		if !ok {
			result.Skipped++
			continue
		}

		server.Libraries[library].LastIndexed++
		result.Inserted++
		inserted++
	}

	return inserted, nil
}

func serverHost(serverURL string) string {
	u, err := url.Parse(serverURL)
	if err != nil {
		return serverURL
	}
	return u.Host
}
