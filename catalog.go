package calidex

import "context"

// Catalog is the paginated catalog API of one remote server.
// All methods return EUNAVAILABLE on transport or HTTP failure.
type Catalog interface {
	// ServerURL returns the canonical URL of the server.
	ServerURL() string

	// Libraries returns the names of the server's libraries.
	Libraries(ctx context.Context) ([]string, error)

	// Count returns the total number of items in library.
	Count(ctx context.Context, library string) (int, error)

	// FetchIDs returns one page of item ids, newest first.
	FetchIDs(ctx context.Context, library string, limit, offset int) ([]int, error)

	// FetchMetadata returns the raw records for ids. Ids the server does not
	// know are absent from the result.
	FetchMetadata(ctx context.Context, library string, ids []int) (map[int]Metadata, error)
}

// RateLimiter provides per-host request throttling.
type RateLimiter interface {
	// Wait blocks until the rate limit allows a request to host.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, host string) error
}
