package mock

import (
	"context"

	"github.com/fwojciec/calidex"
)

var _ calidex.Catalog = (*Catalog)(nil)

// Catalog is a mock implementation of calidex.Catalog.
type Catalog struct {
	ServerURLFn     func() string
	LibrariesFn     func(ctx context.Context) ([]string, error)
	CountFn         func(ctx context.Context, library string) (int, error)
	FetchIDsFn      func(ctx context.Context, library string, limit, offset int) ([]int, error)
	FetchMetadataFn func(ctx context.Context, library string, ids []int) (map[int]calidex.Metadata, error)
}

func (c *Catalog) ServerURL() string {
	return c.ServerURLFn()
}

func (c *Catalog) Libraries(ctx context.Context) ([]string, error) {
	return c.LibrariesFn(ctx)
}

func (c *Catalog) Count(ctx context.Context, library string) (int, error) {
	return c.CountFn(ctx, library)
}

func (c *Catalog) FetchIDs(ctx context.Context, library string, limit, offset int) ([]int, error) {
	return c.FetchIDsFn(ctx, library, limit, offset)
}

func (c *Catalog) FetchMetadata(ctx context.Context, library string, ids []int) (map[int]calidex.Metadata, error) {
	return c.FetchMetadataFn(ctx, library, ids)
}

var _ calidex.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a mock implementation of calidex.RateLimiter.
type RateLimiter struct {
	WaitFn func(ctx context.Context, host string) error
}

func (r *RateLimiter) Wait(ctx context.Context, host string) error {
	return r.WaitFn(ctx, host)
}
