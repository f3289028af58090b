package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/calidex"
	"github.com/fwojciec/calidex/crawl"
	"github.com/fwojciec/calidex/download"
	"github.com/fwojciec/calidex/search"
	"github.com/fwojciec/calidex/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	DB         *sqlite.DB
	Servers    calidex.ServerService
	Books      calidex.BookService
	Engine     *search.Engine
	Indexer    *crawl.Indexer
	Downloader *download.Downloader
	NewCatalog func(rawURL string) (calidex.Catalog, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `name:"db" short:"d" help:"Index database path (default: $CALIDEX_DB or ~/.calidex/calidex.db)"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Index    IndexCmd    `cmd:"" help:"Index the catalog of one or more Calibre servers"`
	List     ListCmd     `cmd:"" help:"List indexed servers and their libraries"`
	Search   SearchCmd   `cmd:"" help:"Search indexed books"`
	Download DownloadCmd `cmd:"" help:"Download every book of an indexed server"`
	Delete   DeleteCmd   `cmd:"" help:"Delete a server and its books from the index"`
}

// IndexCmd is the "index" subcommand.
type IndexCmd struct {
	URLs     []string `arg:"" name:"url" help:"Server URL, e.g. http://host:8080"`
	PageSize int      `short:"p" default:"1000" help:"Books requested per page"`
	Offset   int      `default:"0" help:"Offset to start each library at"`
	Rate     float64  `default:"0" help:"Maximum requests per second per server (0 for no limit)"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	JSON bool `name:"json" help:"Print as JSON"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query     string `arg:"" optional:"" help:"Text to look for; comma-separated for a two-field search"`
	Fields    string `short:"m" default:"all" help:"Metadata field to search; comma-separated for a two-field search"`
	LinksOnly bool   `short:"l" name:"links-only" help:"Print only download links"`
	JSON      bool   `name:"json" help:"Print as JSON"`
}

// DownloadCmd is the "download" subcommand.
type DownloadCmd struct {
	URL         string  `arg:"" help:"Indexed server URL"`
	Output      string  `short:"o" default:"." help:"Directory to save books into"`
	Concurrency int     `short:"c" default:"1" help:"Concurrent download limit"`
	Rate        float64 `default:"0" help:"Maximum requests per second (0 for no limit)"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	URL   string `arg:"" help:"Indexed server URL"`
	Force bool   `help:"Confirm deletion"`
}
