// Package download copies the files of indexed books to local disk.
// It resolves every book of a server into target paths and fetches them
// through a bounded worker pool.
package download

import (
	"context"
	"net/url"

	"github.com/fwojciec/calidex"
	"golang.org/x/sync/errgroup"
)

// DefaultPageSize is the number of books read from the store at a time.
const DefaultPageSize = 500

// Downloader fetches every file of an indexed server.
type Downloader struct {
	Servers     calidex.ServerService
	Books       calidex.BookService
	Fetcher     calidex.FileFetcher
	Store       calidex.FileStore
	RateLimiter calidex.RateLimiter
	Concurrency int
	PageSize    int
}

// Failure records one file that could not be downloaded.
type Failure struct {
	URL  string
	Path string
	Err  error
}

// Result holds the outcome of a download run.
type Result struct {
	Downloaded int
	Bytes      int64
	Failures   []Failure
}

// ProgressEvent reports progress during a download run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Path      string
	Bytes     int64
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting download progress.
type ProgressFunc func(event ProgressEvent)

type downloadResult struct {
	target calidex.DownloadTarget
	bytes  int64
	err    error
}

// DownloadServer downloads every format of every book indexed from
// serverURL into root. A failed file is recorded and the remaining files
// are still attempted. Returns ENOTFOUND if the server is not indexed.
func (d *Downloader) DownloadServer(ctx context.Context, serverURL, root string, progress ProgressFunc) (*Result, error) {
	server, err := d.Servers.FindServerByURL(ctx, serverURL)
	if err != nil {
		return nil, err
	}

	targets, err := d.resolve(ctx, server.URL, root)
	if err != nil {
		return nil, err
	}

	concurrency := d.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var completed int
	total := len(targets)

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	resultCh := make(chan downloadResult, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, target := range targets {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				n, err := d.fetch(gctx, target)
				resultCh <- downloadResult{target: target, bytes: n, err: err}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	result := &Result{}
	for r := range resultCh {
		completed++

		if r.err != nil {
			result.Failures = append(result.Failures, Failure{URL: r.target.URL, Path: r.target.Path, Err: r.err})
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: completed,
					Total:     total,
					Path:      r.target.Path,
					Error:     r.err,
				})
			}
			continue
		}

		result.Downloaded++
		result.Bytes += r.bytes
		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressCompleted,
				Completed: completed,
				Total:     total,
				Path:      r.target.Path,
				Bytes:     r.bytes,
			})
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	return result, nil
}

// resolve pages through the server's books and collects their targets.
func (d *Downloader) resolve(ctx context.Context, serverURL, root string) ([]calidex.DownloadTarget, error) {
	pageSize := d.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var targets []calidex.DownloadTarget
	for offset := 0; ; offset += pageSize {
		books, err := d.Books.FindBooks(ctx, calidex.BookFilter{
			Server: &serverURL,
			Offset: offset,
			Limit:  pageSize,
		})
		if err != nil {
			return nil, err
		}
		for _, b := range books {
			targets = append(targets, calidex.ResolveDownloads(root, b)...)
		}
		if len(books) < pageSize {
			return targets, nil
		}
	}
}

// fetch downloads a single target.
func (d *Downloader) fetch(ctx context.Context, target calidex.DownloadTarget) (int64, error) {
	if d.RateLimiter != nil {
		if err := d.RateLimiter.Wait(ctx, targetHost(target.URL)); err != nil {
			return 0, err
		}
	}

	body, err := d.Fetcher.FetchFile(ctx, target.URL)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	n, err := d.Store.WriteFile(ctx, target.Path, body)
	if err != nil {
		return n, calidex.Errorf(calidex.EDOWNLOAD, "write %s: %v", target.Path, err)
	}
	return n, nil
}

func targetHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
