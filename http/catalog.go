// Package http provides HTTP implementations of the calidex remote
// interfaces: the Calibre content server catalog API and file downloads.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/calidex"
)

// DefaultCatalogTimeout is the default timeout for catalog requests.
// Metadata pages of a thousand books can take a while to render server-side.
const DefaultCatalogTimeout = 30 * time.Second

// Ensure Catalog implements calidex.Catalog at compile time.
var _ calidex.Catalog = (*Catalog)(nil)

// Catalog talks to the /ajax API of one Calibre content server.
type Catalog struct {
	serverURL string
	client    *http.Client
	timeout   time.Duration
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) CatalogOption {
	return func(c *Catalog) {
		c.client = client
	}
}

// WithCatalogTimeout sets the timeout for catalog requests.
// Defaults to DefaultCatalogTimeout if not specified. Ignored when a client
// is supplied with WithHTTPClient.
func WithCatalogTimeout(d time.Duration) CatalogOption {
	return func(c *Catalog) {
		c.timeout = d
	}
}

// NewCatalog creates a Catalog for the server at rawURL.
// The URL is normalized to scheme://host[:port].
func NewCatalog(rawURL string, opts ...CatalogOption) (*Catalog, error) {
	serverURL, err := calidex.CanonicalServerURL(rawURL)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		serverURL: serverURL,
		timeout:   DefaultCatalogTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}

	return c, nil
}

// ServerURL returns the canonical server URL.
func (c *Catalog) ServerURL() string {
	return c.serverURL
}

type libraryInfoResponse struct {
	LibraryMap map[string]string `json:"library_map"`
}

type searchResponse struct {
	TotalNum int   `json:"total_num"`
	BookIDs  []int `json:"book_ids"`
}

// Libraries returns the server's library ids in sorted order.
func (c *Catalog) Libraries(ctx context.Context) ([]string, error) {
	var resp libraryInfoResponse
	if err := c.get(ctx, "/ajax/library-info", nil, &resp); err != nil {
		return nil, err
	}

	libraries := make([]string, 0, len(resp.LibraryMap))
	for id := range resp.LibraryMap {
		libraries = append(libraries, id)
	}
	sort.Strings(libraries)
	return libraries, nil
}

// Count returns the number of books in library using an empty search page.
func (c *Catalog) Count(ctx context.Context, library string) (int, error) {
	var resp searchResponse
	if err := c.get(ctx, "/ajax/search/"+url.PathEscape(library), url.Values{"num": {"0"}}, &resp); err != nil {
		return 0, err
	}
	return resp.TotalNum, nil
}

// FetchIDs returns up to limit book ids from library starting at offset,
// sorted by date added, newest first.
func (c *Catalog) FetchIDs(ctx context.Context, library string, limit, offset int) ([]int, error) {
	params := url.Values{
		"num":        {strconv.Itoa(limit)},
		"offset":     {strconv.Itoa(offset)},
		"sort":       {"timestamp"},
		"sort_order": {"desc"},
	}

	var resp searchResponse
	if err := c.get(ctx, "/ajax/search/"+url.PathEscape(library), params, &resp); err != nil {
		return nil, err
	}
	return resp.BookIDs, nil
}

// FetchMetadata returns the metadata records for ids in one request.
func (c *Catalog) FetchMetadata(ctx context.Context, library string, ids []int) (map[int]calidex.Metadata, error) {
	if len(ids) == 0 {
		return map[int]calidex.Metadata{}, nil
	}

	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = strconv.Itoa(id)
	}

	var resp map[string]calidex.Metadata
	if err := c.get(ctx, "/ajax/books/"+url.PathEscape(library), url.Values{"ids": {strings.Join(strs, ",")}}, &resp); err != nil {
		return nil, err
	}

	records := make(map[int]calidex.Metadata, len(resp))
	for key, md := range resp {
		if md == nil {
			continue
		}
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, calidex.Errorf(calidex.EUNAVAILABLE, "unexpected book id %q from %s", key, c.serverURL)
		}
		records[id] = md
	}
	return records, nil
}

// get issues a GET request for path and decodes the JSON response into v.
// Every failure is reported as EUNAVAILABLE.
func (c *Catalog) get(ctx context.Context, path string, params url.Values, v any) error {
	u := c.serverURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return calidex.Errorf(calidex.EUNAVAILABLE, "invalid request %s: %v", u, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return calidex.Errorf(calidex.EUNAVAILABLE, "request %s: %v", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return calidex.Errorf(calidex.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, u)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return calidex.Errorf(calidex.EUNAVAILABLE, "decode response from %s: %v", u, err)
	}
	return nil
}
