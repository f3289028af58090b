// Package search answers queries against the local index.
// It projects stored books and servers into the views the CLI prints.
package search

import (
	"context"
	"iter"

	"github.com/fwojciec/calidex"
)

// Engine evaluates queries against the document store.
type Engine struct {
	Books   calidex.BookService
	Servers calidex.ServerService
}

// Link is one downloadable format of a book.
type Link struct {
	Format string `json:"format"`
	URL    string `json:"url"`
}

// BookView is the display projection of a matching book.
type BookView struct {
	UUID      string   `json:"uuid"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Languages []string `json:"languages"`
	Library   string   `json:"library"`
	Server    string   `json:"server"`
	Download  []Link   `json:"download"`
}

// LibrarySummary reports crawl progress for one library.
type LibrarySummary struct {
	Name        string `json:"name"`
	TotalCount  int    `json:"total_count"`
	LastIndexed int    `json:"last_indexed"`
}

// ServerSummary reports crawl progress for one server.
type ServerSummary struct {
	URL        string           `json:"url"`
	TotalBooks int              `json:"total_books"`
	Indexed    int              `json:"indexed"`
	Libraries  []LibrarySummary `json:"libraries"`
}

// Search returns the books matching q in insertion order.
// An invalid query fails with EINVALID before the store is consulted.
func (e *Engine) Search(ctx context.Context, q calidex.Query) (iter.Seq[BookView], error) {
	books, err := e.find(ctx, q)
	if err != nil {
		return nil, err
	}

	return func(yield func(BookView) bool) {
		for _, b := range books {
			if !yield(NewBookView(b)) {
				return
			}
		}
	}, nil
}

// Links returns every download link of the books matching q, grouped by
// book and in format order within a book.
func (e *Engine) Links(ctx context.Context, q calidex.Query) (iter.Seq[Link], error) {
	books, err := e.find(ctx, q)
	if err != nil {
		return nil, err
	}

	return func(yield func(Link) bool) {
		for _, b := range books {
			for _, link := range bookLinks(b) {
				if !yield(link) {
					return
				}
			}
		}
	}, nil
}

// Libraries returns a summary of every indexed server ordered by URL.
func (e *Engine) Libraries(ctx context.Context) ([]ServerSummary, error) {
	servers, err := e.Servers.FindServers(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]ServerSummary, 0, len(servers))
	for _, s := range servers {
		summary := ServerSummary{
			URL:        s.URL,
			TotalBooks: s.TotalBooks,
			Indexed:    s.Indexed(),
			Libraries:  make([]LibrarySummary, 0, len(s.Libraries)),
		}
		for _, name := range s.LibraryNames() {
			lib := s.Libraries[name]
			summary.Libraries = append(summary.Libraries, LibrarySummary{
				Name:        name,
				TotalCount:  lib.TotalCount,
				LastIndexed: lib.LastIndexed,
			})
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// NewBookView projects b into its display form.
func NewBookView(b *calidex.Book) BookView {
	return BookView{
		UUID:      b.UUID,
		Title:     b.String("title"),
		Authors:   b.Strings("authors"),
		Languages: b.Strings("languages"),
		Library:   b.Library,
		Server:    b.ServerURL,
		Download:  bookLinks(b),
	}
}

func (e *Engine) find(ctx context.Context, q calidex.Query) ([]*calidex.Book, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return e.Books.SearchBooks(ctx, q)
}

func bookLinks(b *calidex.Book) []Link {
	links := make([]Link, 0, len(b.Download))
	for _, format := range b.Formats() {
		links = append(links, Link{Format: format, URL: b.Download[format]})
	}
	return links
}
