package calidex

import (
	"context"
	"net/url"
	"sort"
	"strings"
)

// Server represents a remote Calibre content server and its crawl progress.
type Server struct {
	URL        string              `json:"-"`
	Libraries  map[string]*Library `json:"libraries"`
	TotalBooks int                 `json:"total_books"`
}

// Library holds the item count of one library observed when indexing
// started and the number of items newly inserted from it so far.
type Library struct {
	TotalCount  int `json:"total_count"`
	LastIndexed int `json:"last_indexed"`
}

// Validate returns an error if the server contains invalid fields.
func (s *Server) Validate() error {
	if s.URL == "" {
		return Errorf(EINVALID, "server URL required")
	}
	return nil
}

// LibraryNames returns the server's library names in sorted order.
func (s *Server) LibraryNames() []string {
	names := make([]string, 0, len(s.Libraries))
	for name := range s.Libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Indexed returns the sum of LastIndexed across all libraries.
func (s *Server) Indexed() int {
	var n int
	for _, lib := range s.Libraries {
		n += lib.LastIndexed
	}
	return n
}

// CanonicalServerURL normalizes a server address to scheme://host[:port].
// A missing scheme defaults to http. Paths, queries and fragments are dropped.
func CanonicalServerURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", Errorf(EINVALID, "server URL required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", Errorf(EINVALID, "invalid server URL %q", raw)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", Errorf(EINVALID, "unsupported scheme %q in server URL", u.Scheme)
	}
	if u.Host == "" {
		return "", Errorf(EINVALID, "server URL %q has no host", raw)
	}

	return scheme + "://" + strings.ToLower(u.Host), nil
}

// ServerService represents a service for managing indexed servers.
type ServerService interface {
	// UpsertServer inserts the server if its URL is new.
	// An existing server is left untouched and created is false.
	UpsertServer(ctx context.Context, server *Server) (created bool, err error)

	// RefreshServer overwrites the stored server metadata with server.
	// Returns ENOTFOUND if the server does not exist.
	RefreshServer(ctx context.Context, server *Server) error

	// FindServers retrieves all servers ordered by URL.
	FindServers(ctx context.Context) ([]*Server, error)

	// FindServerByURL retrieves a server by its canonical URL.
	// Returns ENOTFOUND if the server does not exist.
	FindServerByURL(ctx context.Context, url string) (*Server, error)

	// DeleteServer permanently removes a server and all of its books.
	// Returns ENOTFOUND if the server does not exist.
	DeleteServer(ctx context.Context, url string) error
}
