package main

import (
	"fmt"

	"github.com/fwojciec/calidex"
	"github.com/fwojciec/calidex/crawl"
)

// Run executes the index command.
func (c *IndexCmd) Run(deps *Dependencies) error {
	for _, rawURL := range c.URLs {
		catalog, err := deps.NewCatalog(rawURL)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", calidex.ErrorMessage(err))
			return err
		}

		fmt.Fprintf(deps.Stdout, "Indexing %s\n", catalog.ServerURL())

		progress := func(event crawl.ProgressEvent) {
			done := min(event.Offset+c.PageSize, event.Total)
			fmt.Fprintf(deps.Stdout, "  %s: %d/%d (%d new)\n", event.Library, done, event.Total, event.Inserted)
		}

		result, err := deps.Indexer.Process(deps.Ctx, catalog, c.PageSize, c.Offset, progress)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", calidex.ErrorMessage(err))
			return err
		}

		fmt.Fprintf(deps.Stdout, "  Added %d books (%d already indexed, %d invalid)\n",
			result.Inserted, result.Skipped, result.Invalid)
	}

	return nil
}
