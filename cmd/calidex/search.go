package main

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/fwojciec/calidex"
	"github.com/fwojciec/calidex/search"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	q, err := calidex.ParseQuery(c.Query, c.Fields)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", calidex.ErrorMessage(err))
		return err
	}

	if c.LinksOnly {
		links, err := deps.Engine.Links(deps.Ctx, q)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", calidex.ErrorMessage(err))
			return err
		}
		for link := range links {
			fmt.Fprintln(deps.Stdout, link.URL)
		}
		return nil
	}

	books, err := deps.Engine.Search(deps.Ctx, q)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", calidex.ErrorMessage(err))
		return err
	}

	if c.JSON {
		views := slices.Collect(books)
		if views == nil {
			views = []search.BookView{}
		}
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(views)
	}

	found := 0
	for b := range books {
		found++
		fmt.Fprintf(deps.Stdout, "Title: %s\n", b.Title)
		for _, author := range b.Authors {
			fmt.Fprintf(deps.Stdout, "Author: %s\n", author)
		}
		fmt.Fprintf(deps.Stdout, "Languages: %s\n", strings.Join(b.Languages, ", "))
		fmt.Fprintf(deps.Stdout, "Library: %s\n", b.Library)
		fmt.Fprintf(deps.Stdout, "Server: %s\n", b.Server)
		fmt.Fprintln(deps.Stdout, "Download Links:")
		for _, link := range b.Download {
			fmt.Fprintf(deps.Stdout, "  %s: %s\n", link.Format, link.URL)
		}
		fmt.Fprintln(deps.Stdout, strings.Repeat("-", 50))
	}

	if found == 0 {
		fmt.Fprintln(deps.Stdout, "No matching books.")
	}
	return nil
}
