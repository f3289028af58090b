package slog

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/calidex"
)

// Ensure LoggingFileFetcher implements calidex.FileFetcher.
var _ calidex.FileFetcher = (*LoggingFileFetcher)(nil)

// LoggingFileFetcher wraps a FileFetcher with logging.
type LoggingFileFetcher struct {
	next   calidex.FileFetcher
	logger *slog.Logger
}

// NewLoggingFileFetcher creates a new LoggingFileFetcher.
func NewLoggingFileFetcher(next calidex.FileFetcher, logger *slog.Logger) *LoggingFileFetcher {
	return &LoggingFileFetcher{next: next, logger: logger}
}

// FetchFile delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFileFetcher) FetchFile(ctx context.Context, url string) (rc io.ReadCloser, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch file",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchFile(ctx, url)
}
