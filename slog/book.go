package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/calidex"
)

// Ensure LoggingBookService implements calidex.BookService.
var _ calidex.BookService = (*LoggingBookService)(nil)

// LoggingBookService wraps a BookService with logging.
type LoggingBookService struct {
	next   calidex.BookService
	logger *slog.Logger
}

// NewLoggingBookService creates a new LoggingBookService.
func NewLoggingBookService(next calidex.BookService, logger *slog.Logger) *LoggingBookService {
	return &LoggingBookService{next: next, logger: logger}
}

// InsertBook delegates to the wrapped service and logs skipped duplicates.
func (s *LoggingBookService) InsertBook(ctx context.Context, book *calidex.Book) (bool, error) {
	inserted, err := s.next.InsertBook(ctx, book)
	if err == nil && !inserted {
		s.logger.Debug("book already indexed, skipping", "uuid", book.UUID)
	}
	return inserted, err
}

// FindBookByUUID delegates to the wrapped service.
func (s *LoggingBookService) FindBookByUUID(ctx context.Context, uuid string) (*calidex.Book, error) {
	return s.next.FindBookByUUID(ctx, uuid)
}

// FindBooks delegates to the wrapped service.
func (s *LoggingBookService) FindBooks(ctx context.Context, filter calidex.BookFilter) ([]*calidex.Book, error) {
	return s.next.FindBooks(ctx, filter)
}

// SearchBooks delegates to the wrapped service and logs the query.
func (s *LoggingBookService) SearchBooks(ctx context.Context, q calidex.Query) (books []*calidex.Book, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("search",
			"terms", q.Terms,
			"fields", q.Fields,
			"count", len(books),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SearchBooks(ctx, q)
}
