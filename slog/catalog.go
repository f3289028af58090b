// Package slog provides log/slog decorators for the calidex services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/calidex"
)

// Ensure LoggingCatalog implements calidex.Catalog.
var _ calidex.Catalog = (*LoggingCatalog)(nil)

// LoggingCatalog wraps a Catalog with request logging.
type LoggingCatalog struct {
	next   calidex.Catalog
	logger *slog.Logger
}

// NewLoggingCatalog creates a new LoggingCatalog.
func NewLoggingCatalog(next calidex.Catalog, logger *slog.Logger) *LoggingCatalog {
	return &LoggingCatalog{next: next, logger: logger}
}

// ServerURL delegates to the wrapped catalog.
func (c *LoggingCatalog) ServerURL() string {
	return c.next.ServerURL()
}

// Libraries delegates to the wrapped catalog and logs the operation.
func (c *LoggingCatalog) Libraries(ctx context.Context) (libraries []string, err error) {
	defer func(begin time.Time) {
		c.logger.Info("catalog libraries",
			"server", c.next.ServerURL(),
			"count", len(libraries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Libraries(ctx)
}

// Count delegates to the wrapped catalog and logs the operation.
func (c *LoggingCatalog) Count(ctx context.Context, library string) (n int, err error) {
	defer func(begin time.Time) {
		c.logger.Info("catalog count",
			"server", c.next.ServerURL(),
			"library", library,
			"count", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Count(ctx, library)
}

// FetchIDs delegates to the wrapped catalog and logs the operation.
func (c *LoggingCatalog) FetchIDs(ctx context.Context, library string, limit, offset int) (ids []int, err error) {
	defer func(begin time.Time) {
		c.logger.Debug("catalog page",
			"library", library,
			"offset", offset,
			"limit", limit,
			"count", len(ids),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.FetchIDs(ctx, library, limit, offset)
}

// FetchMetadata delegates to the wrapped catalog and logs the operation.
func (c *LoggingCatalog) FetchMetadata(ctx context.Context, library string, ids []int) (records map[int]calidex.Metadata, err error) {
	defer func(begin time.Time) {
		c.logger.Debug("catalog metadata",
			"library", library,
			"requested", len(ids),
			"count", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.FetchMetadata(ctx, library, ids)
}
