package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/calidex"
	"github.com/fwojciec/calidex/crawl"
	"github.com/fwojciec/calidex/download"
	"github.com/fwojciec/calidex/flock"
	"github.com/fwojciec/calidex/fs"
	calhttp "github.com/fwojciec/calidex/http"
	"github.com/fwojciec/calidex/search"
	calslog "github.com/fwojciec/calidex/slog"
	"github.com/fwojciec/calidex/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run(); --db overrides it.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	ServerService calidex.ServerService
	BookService   calidex.BookService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("calidex"),
		kong.Description("Index, search and download the catalogs of Calibre content servers."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		err := fmt.Errorf("no command specified. Run 'calidex --help' to see available commands")
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	if cli.DB != "" {
		m.DBPath = cli.DB
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	// Commands that write to the store hold its lock for their whole run.
	if cmd == "index" || cmd == "download" || cmd == "delete" {
		lock := flock.NewStoreLock(m.DBPath)
		if err := lock.Acquire(); err != nil {
			fmt.Fprintf(stderr, "error: %s\n", calidex.ErrorMessage(err))
			return err
		}
		defer lock.Release()
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		err = fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		fmt.Fprintf(stderr, "error: %v\n", err)
		fmt.Fprintf(stderr, "Hint: Set CALIDEX_DB or --db to use a different database path\n")
		return err
	}
	defer m.Close()

	m.ServerService = calslog.NewLoggingServerService(sqlite.NewServerService(m.DB), logger)
	m.BookService = calslog.NewLoggingBookService(sqlite.NewBookService(m.DB), logger)
	deps.DB = m.DB
	deps.Servers = m.ServerService
	deps.Books = m.BookService
	deps.Engine = &search.Engine{Books: m.BookService, Servers: m.ServerService}

	switch cmd {
	case "index":
		deps.NewCatalog = func(rawURL string) (calidex.Catalog, error) {
			catalog, err := calhttp.NewCatalog(rawURL)
			if err != nil {
				return nil, err
			}
			return calslog.NewLoggingCatalog(catalog, logger), nil
		}
		deps.Indexer = &crawl.Indexer{
			Servers: m.ServerService,
			Books:   m.BookService,
			Logger:  logger,
		}
		if cli.Index.Rate > 0 {
			deps.Indexer.RateLimiter = crawl.NewHostLimiter(cli.Index.Rate)
		}

	case "download":
		deps.Downloader = &download.Downloader{
			Servers:     m.ServerService,
			Books:       m.BookService,
			Fetcher:     calslog.NewLoggingFileFetcher(calhttp.NewFileFetcher(), logger),
			Store:       fs.NewStore(),
			Concurrency: cli.Download.Concurrency,
		}
		if cli.Download.Rate > 0 {
			deps.Downloader.RateLimiter = crawl.NewHostLimiter(cli.Download.Rate)
		}
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("CALIDEX_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "calidex.db"
	}
	dir := filepath.Join(home, ".calidex")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "calidex.db")
}
