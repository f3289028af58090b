package main

import (
	"fmt"

	"github.com/fwojciec/calidex"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return calidex.Errorf(calidex.EINVALID, "use --force to confirm deletion")
	}

	serverURL, err := calidex.CanonicalServerURL(c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", calidex.ErrorMessage(err))
		return err
	}

	if err := deps.Servers.DeleteServer(deps.Ctx, serverURL); err != nil {
		if calidex.ErrorCode(err) == calidex.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: server %q not found. Use 'calidex list' to see indexed servers.\n", serverURL)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", calidex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted server %q\n", serverURL)
	return nil
}
