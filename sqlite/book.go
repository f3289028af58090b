package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fwojciec/calidex"
)

// Compile-time interface verification.
var _ calidex.BookService = (*BookService)(nil)

// BookService implements calidex.BookService using SQLite.
type BookService struct {
	db *DB
}

// NewBookService creates a new BookService.
func NewBookService(db *DB) *BookService {
	return &BookService{db: db}
}

// InsertBook stores the book unless its uuid already exists.
func (s *BookService) InsertBook(ctx context.Context, book *calidex.Book) (bool, error) {
	if err := book.Validate(); err != nil {
		return false, err
	}

	doc, err := book.Document()
	if err != nil {
		return false, fmt.Errorf("failed to encode book %s: %w", book.UUID, err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO items (uuid, document, server, library)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(uuid) DO NOTHING
	`, book.UUID, doc, book.ServerURL, book.Library)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

// FindBookByUUID retrieves a book by uuid.
func (s *BookService) FindBookByUUID(ctx context.Context, uuid string) (*calidex.Book, error) {
	var doc string

	err := s.db.QueryRowContext(ctx, "SELECT document FROM items WHERE uuid = ?", uuid).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, calidex.Errorf(calidex.ENOTFOUND, "book %q not found", uuid)
	}
	if err != nil {
		return nil, err
	}

	return decodeBook(doc)
}

// FindBooks retrieves books matching the filter.
func (s *BookService) FindBooks(ctx context.Context, filter calidex.BookFilter) ([]*calidex.Book, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT document FROM items WHERE 1=1")

	if filter.Server != nil {
		query.WriteString(" AND server = ?")
		args = append(args, *filter.Server)
	}
	if filter.Library != nil {
		query.WriteString(" AND library = ?")
		args = append(args, *filter.Library)
	}

	query.WriteString(" ORDER BY rowid")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	return s.queryBooks(ctx, query.String(), args, nil)
}

// SearchBooks retrieves books matching a single-field or two-field query.
//
// Each term first narrows the rows with a LIKE over the serialized document
// when that cannot drop a real match; the surviving rows are decoded and
// checked field by field with Query.Match.
func (s *BookService) SearchBooks(ctx context.Context, q calidex.Query) ([]*calidex.Book, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var query strings.Builder
	var args []any

	query.WriteString("SELECT document FROM items WHERE 1=1")
	for _, term := range q.Terms {
		if term == "" || !prefilterable(term) {
			continue
		}
		query.WriteString(` AND document LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(term))
	}
	query.WriteString(" ORDER BY rowid")

	return s.queryBooks(ctx, query.String(), args, q.Match)
}

func (s *BookService) queryBooks(ctx context.Context, query string, args []any, match func(*calidex.Book) bool) ([]*calidex.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*calidex.Book
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}

		book, err := decodeBook(doc)
		if err != nil {
			return nil, err
		}
		if match != nil && !match(book) {
			continue
		}
		books = append(books, book)
	}

	return books, rows.Err()
}

func decodeBook(doc string) (*calidex.Book, error) {
	book, err := calidex.DecodeBook(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode book document: %w", err)
	}
	return book, nil
}
