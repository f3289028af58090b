package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/calidex"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	servers, err := deps.Engine.Libraries(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", calidex.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(servers)
	}

	if len(servers) == 0 {
		fmt.Fprintln(deps.Stdout, "No servers indexed. Use 'calidex index' to add one.")
		return nil
	}

	for _, s := range servers {
		fmt.Fprintf(deps.Stdout, "Server: %s\n", s.URL)
		fmt.Fprintf(deps.Stdout, "  Total books: %d (indexed %d)\n", s.TotalBooks, s.Indexed)
		for _, lib := range s.Libraries {
			fmt.Fprintf(deps.Stdout, "  Library: %s, Books: %d, Indexed: %d\n", lib.Name, lib.TotalCount, lib.LastIndexed)
		}
	}

	return nil
}
