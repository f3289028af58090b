package mock

import (
	"context"

	"github.com/fwojciec/calidex"
)

var _ calidex.BookService = (*BookService)(nil)

// BookService is a mock implementation of calidex.BookService.
type BookService struct {
	InsertBookFn     func(ctx context.Context, book *calidex.Book) (bool, error)
	FindBookByUUIDFn func(ctx context.Context, uuid string) (*calidex.Book, error)
	FindBooksFn      func(ctx context.Context, filter calidex.BookFilter) ([]*calidex.Book, error)
	SearchBooksFn    func(ctx context.Context, q calidex.Query) ([]*calidex.Book, error)
}

func (s *BookService) InsertBook(ctx context.Context, book *calidex.Book) (bool, error) {
	return s.InsertBookFn(ctx, book)
}

func (s *BookService) FindBookByUUID(ctx context.Context, uuid string) (*calidex.Book, error) {
	return s.FindBookByUUIDFn(ctx, uuid)
}

func (s *BookService) FindBooks(ctx context.Context, filter calidex.BookFilter) ([]*calidex.Book, error) {
	return s.FindBooksFn(ctx, filter)
}

func (s *BookService) SearchBooks(ctx context.Context, q calidex.Query) ([]*calidex.Book, error) {
	return s.SearchBooksFn(ctx, q)
}
