package sqlite

import (
	"strings"
	"unicode/utf8"
)

// appendPagination appends LIMIT and OFFSET clauses to a query builder if values are > 0.
// SQLite requires a LIMIT before OFFSET, so an offset without a limit uses LIMIT -1.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	} else if offset > 0 {
		query.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}

// likePattern returns a LIKE pattern matching documents that contain term,
// for use with ESCAPE '\'.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// prefilterable reports whether a LIKE pre-filter on the serialized document
// is guaranteed to keep every document containing term. LIKE folds ASCII
// case only, and JSON escapes quotes, backslashes and control characters,
// so any other term must skip the pre-filter.
func prefilterable(term string) bool {
	for i := 0; i < len(term); i++ {
		c := term[i]
		if c >= utf8.RuneSelf || c < 0x20 || c == '"' || c == '\\' {
			return false
		}
	}
	return true
}
