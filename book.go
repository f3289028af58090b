package calidex

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Reserved document keys. They are derived at ingest time rather than
// copied from remote metadata.
const (
	KeyUUID     = "uuid"
	KeyServer   = "server"
	KeyLibrary  = "library"
	KeyDownload = "download"
)

// Remote metadata keys holding format maps.
const (
	KeyMainFormat   = "main_format"
	KeyOtherFormats = "other_formats"
)

// Value is a single metadata field value: either a Scalar or a List.
type Value interface {
	// Contains reports whether the value contains substr, ignoring case.
	Contains(substr string) bool

	isValue()
}

// Scalar is a single-string metadata value.
type Scalar string

// Contains reports whether s contains substr, ignoring case.
func (s Scalar) Contains(substr string) bool {
	return containsFold(string(s), substr)
}

func (Scalar) isValue() {}

// List is an ordered, multi-string metadata value such as authors.
type List []string

// Contains reports whether any element of l contains substr, ignoring case.
func (l List) Contains(substr string) bool {
	for _, s := range l {
		if containsFold(s, substr) {
			return true
		}
	}
	return false
}

func (List) isValue() {}

func containsFold(s, substr string) bool {
	return strings.Contains(foldCase(s), foldCase(substr))
}

// foldCase lower-cases s, except that non-ASCII runes whose lower case is
// ASCII (such as the Kelvin sign) are kept. An ASCII term then only ever
// matches ASCII text, which keeps matching consistent with SQLite's LIKE.
func foldCase(s string) string {
	return strings.Map(func(r rune) rune {
		l := unicode.ToLower(r)
		if r >= utf8.RuneSelf && l < utf8.RuneSelf {
			return r
		}
		return l
	}, s)
}

// Metadata is one raw catalog record as returned by a remote server.
type Metadata map[string]json.RawMessage

// Formats maps a format name (epub, pdf, ...) to a server-relative path.
// A nil Formats means the record carried no such map.
type Formats map[string]string

// DownloadLinks merges main and other into absolute retrieval URLs by
// prefixing each path with serverURL. Absent maps merge as empty; on a
// duplicate format the entry from other wins.
func DownloadLinks(serverURL string, main, other Formats) map[string]string {
	links := make(map[string]string, len(main)+len(other))
	for _, f := range []Formats{main, other} {
		for format, path := range f {
			links[format] = serverURL + path
		}
	}
	return links
}

// Book represents one indexed catalog item.
type Book struct {
	UUID      string
	ServerURL string
	Library   string
	Fields    map[string]Value
	Download  map[string]string
}

// NewBook builds a Book from a raw catalog record of library on serverURL.
func NewBook(serverURL, library string, md Metadata) (*Book, error) {
	var id string
	if raw, ok := md[KeyUUID]; !ok || json.Unmarshal(raw, &id) != nil || id == "" {
		return nil, Errorf(EINVALID, "catalog record has no uuid")
	}

	main, err := parseFormats(md[KeyMainFormat])
	if err != nil {
		return nil, Errorf(EINVALID, "book %s: invalid %s", id, KeyMainFormat)
	}
	other, err := parseFormats(md[KeyOtherFormats])
	if err != nil {
		return nil, Errorf(EINVALID, "book %s: invalid %s", id, KeyOtherFormats)
	}

	b := &Book{
		UUID:      id,
		ServerURL: serverURL,
		Library:   library,
		Fields:    make(map[string]Value, len(md)),
		Download:  DownloadLinks(serverURL, main, other),
	}
	for key, raw := range md {
		switch key {
		case KeyUUID, KeyServer, KeyLibrary, KeyDownload, KeyMainFormat, KeyOtherFormats:
			continue
		}
		v, err := decodeValue(raw)
		if err != nil {
			return nil, Errorf(EINVALID, "book %s: invalid field %q", id, key)
		}
		if v != nil {
			b.Fields[key] = v
		}
	}

	return b, b.Validate()
}

// Validate returns an error if the book contains invalid fields.
func (b *Book) Validate() error {
	if b.UUID == "" {
		return Errorf(EINVALID, "book uuid required")
	}
	if b.ServerURL == "" {
		return Errorf(EINVALID, "book server URL required")
	}
	if b.Library == "" {
		return Errorf(EINVALID, "book library required")
	}
	return nil
}

// Field returns the named field. Reserved keys resolve to the book's own
// attributes; download resolves to its URLs in format order.
func (b *Book) Field(name string) (Value, bool) {
	switch name {
	case KeyUUID:
		return Scalar(b.UUID), true
	case KeyServer:
		return Scalar(b.ServerURL), true
	case KeyLibrary:
		return Scalar(b.Library), true
	case KeyDownload:
		urls := make(List, 0, len(b.Download))
		for _, format := range b.Formats() {
			urls = append(urls, b.Download[format])
		}
		return urls, true
	}
	v, ok := b.Fields[name]
	return v, ok
}

// Formats returns the book's downloadable format names in sorted order.
func (b *Book) Formats() []string {
	formats := make([]string, 0, len(b.Download))
	for format := range b.Download {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// String returns the named field as a single string. List fields are
// joined with ", ".
func (b *Book) String(name string) string {
	switch v, _ := b.Field(name); v := v.(type) {
	case Scalar:
		return string(v)
	case List:
		return strings.Join(v, ", ")
	}
	return ""
}

// Strings returns the named field as a list. A Scalar becomes a
// single-element list.
func (b *Book) Strings(name string) []string {
	switch v, _ := b.Field(name); v := v.(type) {
	case Scalar:
		return []string{string(v)}
	case List:
		return []string(v)
	}
	return nil
}

// Document returns the serialized form the book is stored as: one flat
// JSON object holding every field plus the reserved keys. HTML characters
// are not escaped so field text appears verbatim wherever JSON allows.
func (b *Book) Document() (string, error) {
	doc := make(map[string]any, len(b.Fields)+4)
	for key, v := range b.Fields {
		doc[key] = v
	}
	doc[KeyUUID] = b.UUID
	doc[KeyServer] = b.ServerURL
	doc[KeyLibrary] = b.Library
	download := b.Download
	if download == nil {
		download = map[string]string{}
	}
	doc[KeyDownload] = download

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// DecodeBook parses a document produced by Book.Document.
func DecodeBook(doc string) (*Book, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		return nil, err
	}

	b := &Book{Fields: make(map[string]Value, len(raw))}
	for key, msg := range raw {
		var err error
		switch key {
		case KeyUUID:
			err = json.Unmarshal(msg, &b.UUID)
		case KeyServer:
			err = json.Unmarshal(msg, &b.ServerURL)
		case KeyLibrary:
			err = json.Unmarshal(msg, &b.Library)
		case KeyDownload:
			err = json.Unmarshal(msg, &b.Download)
		default:
			var v Value
			if v, err = decodeValue(msg); err == nil && v != nil {
				b.Fields[key] = v
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

// decodeValue converts one JSON value into a field Value. Strings become
// Scalars and arrays become Lists. Numbers, booleans and objects become a
// Scalar of their compact JSON text. Null yields a nil Value.
func decodeValue(raw json.RawMessage) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	switch raw[0] {
	case 'n':
		return nil, nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return Scalar(s), nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, err
		}
		list := make(List, 0, len(elems))
		for _, elem := range elems {
			s, err := jsonText(elem)
			if err != nil {
				return nil, err
			}
			list = append(list, s)
		}
		return list, nil
	default:
		s, err := jsonText(raw)
		if err != nil {
			return nil, err
		}
		return Scalar(s), nil
	}
}

// jsonText returns a JSON string's content, or the compact text of any
// other JSON value.
func jsonText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func parseFormats(raw json.RawMessage) (Formats, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var f Formats
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return f, nil
}

// BookService represents a service for managing indexed books.
type BookService interface {
	// InsertBook stores the book unless its uuid is already present.
	// Existing books are never overwritten; inserted is false for them.
	InsertBook(ctx context.Context, book *Book) (inserted bool, err error)

	// FindBookByUUID retrieves a book by uuid.
	// Returns ENOTFOUND if the book does not exist.
	FindBookByUUID(ctx context.Context, uuid string) (*Book, error)

	// FindBooks retrieves books matching the filter in insertion order.
	FindBooks(ctx context.Context, filter BookFilter) ([]*Book, error)

	// SearchBooks retrieves books matching a substring query.
	// Returns EINVALID if the query is malformed.
	SearchBooks(ctx context.Context, query Query) ([]*Book, error)
}

// BookFilter represents a filter for FindBooks.
type BookFilter struct {
	Server  *string `json:"server"`
	Library *string `json:"library"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
