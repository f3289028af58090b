package calidex

import (
	"context"
	"encoding/hex"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// MaxNameLength bounds the length of a sanitized path component.
const MaxNameLength = 200

// DownloadTarget is one file to fetch and the local path it is saved to.
type DownloadTarget struct {
	UUID   string
	Format string
	URL    string
	Path   string
}

// ResolveDownloads maps every downloadable format of b to a target under
// root/<author>/<title>.<format>. Targets are returned in format order.
func ResolveDownloads(root string, b *Book) []DownloadTarget {
	author := SanitizeName(bookAuthor(b))
	title := bookTitle(b)

	targets := make([]DownloadTarget, 0, len(b.Download))
	for _, format := range b.Formats() {
		targets = append(targets, DownloadTarget{
			UUID:   b.UUID,
			Format: format,
			URL:    b.Download[format],
			Path:   filepath.Join(root, author, title+"."+SanitizeName(format)),
		})
	}
	return targets
}

func bookAuthor(b *Book) string {
	if sort := b.String("author_sort"); sort != "" {
		first := strings.FieldsFunc(sort, func(r rune) bool { return r == ';' || r == '&' })
		if len(first) > 0 && strings.TrimSpace(first[0]) != "" {
			return first[0]
		}
	}
	if authors := b.Strings("authors"); len(authors) > 0 {
		return authors[0]
	}
	return ""
}

// bookTitle returns the sanitized file name stem of b. Titles that lose
// letters or digits to sanitization carry the uuid so that books titled
// in other scripts never share a path.
func bookTitle(b *Book) string {
	for _, key := range []string{"title_sort", "title"} {
		s := b.String(key)
		if strings.TrimSpace(s) == "" {
			continue
		}
		if !lossyName(s) {
			return SanitizeName(s)
		}
		if name := SanitizeName(s); hasAlnum(name) {
			return SanitizeName(name + "-" + b.UUID)
		}
		break
	}
	return SanitizeName(b.UUID)
}

// lossyName reports whether SanitizeName would drop a letter or digit of s.
func lossyName(s string) bool {
	for _, r := range s {
		if r >= utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return true
		}
	}
	return false
}

func hasAlnum(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
	}) >= 0
}

// SanitizeName turns s into a safe single path component: lower-cased,
// whitespace runs replaced by "_", characters outside [a-z0-9_.-] dropped
// and leading dots stripped. Names longer than MaxNameLength are truncated
// and suffixed with a hash of the full name. An empty result is "unknown".
func SanitizeName(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte('_')
			}
			space = true
			continue
		}
		space = false
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	name := strings.TrimLeft(b.String(), ".")
	if name == "" {
		return "unknown"
	}
	if len(name) > MaxNameLength {
		suffix := "-" + hashName(name)
		name = name[:MaxNameLength-len(suffix)] + suffix
	}
	return name
}

func hashName(name string) string {
	h := xxhash.Sum64String(name)
	b := []byte{byte(h >> 56), byte(h >> 48), byte(h >> 40), byte(h >> 32)}
	return hex.EncodeToString(b)
}

// FileFetcher retrieves remote files.
type FileFetcher interface {
	// FetchFile opens url for reading. The caller must close the reader.
	// Returns EDOWNLOAD if the file cannot be retrieved.
	FetchFile(ctx context.Context, url string) (io.ReadCloser, error)
}

// FileStore persists downloaded files.
type FileStore interface {
	// WriteFile writes r to path, creating parent directories as needed.
	// The file at path is replaced only once r has been fully written.
	WriteFile(ctx context.Context, path string, r io.Reader) (int64, error)
}
