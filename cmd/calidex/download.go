package main

import (
	"fmt"

	"github.com/fwojciec/calidex"
	"github.com/fwojciec/calidex/download"
)

// Run executes the download command.
func (c *DownloadCmd) Run(deps *Dependencies) error {
	serverURL, err := calidex.CanonicalServerURL(c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", calidex.ErrorMessage(err))
		return err
	}

	if c.Concurrency > 0 {
		deps.Downloader.Concurrency = c.Concurrency
	}

	progress := func(event download.ProgressEvent) {
		switch event.Type {
		case download.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Downloading %d files from %s\n", event.Total, serverURL)
		case download.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", event.Completed, event.Total, download.TruncatePath(event.Path, 80))
		case download.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", event.Path, calidex.ErrorMessage(event.Error))
		case download.ProgressFinished:
			// Summary printed after download completes
		}
	}

	result, err := deps.Downloader.DownloadServer(deps.Ctx, serverURL, c.Output, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", calidex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Downloaded %d files (%s)\n", result.Downloaded, download.FormatBytes(result.Bytes))

	if len(result.Failures) > 0 {
		fmt.Fprintln(deps.Stderr, "Errors:")
		for _, f := range result.Failures {
			fmt.Fprintf(deps.Stderr, "  %s -> %s\n", f.URL, f.Path)
		}
		return calidex.Errorf(calidex.EDOWNLOAD, "%d of %d files failed", len(result.Failures), result.Downloaded+len(result.Failures))
	}

	return nil
}
