package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/calidex"
)

// DefaultFetchTimeout is the default timeout for file downloads.
// Books can be large, so this bounds the whole transfer generously.
const DefaultFetchTimeout = 10 * time.Minute

// Ensure FileFetcher implements calidex.FileFetcher at compile time.
var _ calidex.FileFetcher = (*FileFetcher)(nil)

// FileFetcher retrieves book files using HTTP GET requests.
type FileFetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a FileFetcher.
type Option func(*FileFetcher)

// WithTimeout sets the timeout for a single download.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *FileFetcher) {
		f.timeout = d
	}
}

// NewFileFetcher creates a new HTTP-based FileFetcher.
func NewFileFetcher(opts ...Option) *FileFetcher {
	f := &FileFetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// FetchFile opens the file at url. The caller must close the returned body.
func (f *FileFetcher) FetchFile(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, calidex.Errorf(calidex.EDOWNLOAD, "invalid download URL %s: %v", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, calidex.Errorf(calidex.EDOWNLOAD, "download %s: %v", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, calidex.Errorf(calidex.EDOWNLOAD, "HTTP %d for %s", resp.StatusCode, url)
	}

	return resp.Body, nil
}
