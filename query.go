package calidex

import (
	"strings"
)

// FieldAll matches a term against the whole serialized record.
const FieldAll = "all"

// Query is a single-field or two-field conjunctive substring query.
// Terms[i] is matched against Fields[i].
type Query struct {
	Terms  []string
	Fields []string
}

// NewQuery returns a single-field query.
func NewQuery(term, field string) Query {
	return Query{Terms: []string{term}, Fields: []string{field}}
}

// ParseQuery builds a query from command-line style arguments. A comma in
// fields selects the two-field form and splits terms on commas as well; a
// comma in terms alone is part of the search text. An empty field defaults
// to FieldAll.
func ParseQuery(terms, fields string) (Query, error) {
	if fields == "" {
		fields = FieldAll
	}

	q := NewQuery(terms, fields)
	if strings.Contains(fields, ",") {
		q = Query{
			Terms:  strings.Split(terms, ","),
			Fields: strings.Split(fields, ","),
		}
		for i, f := range q.Fields {
			q.Fields[i] = strings.TrimSpace(f)
		}
	}

	return q, q.Validate()
}

// Validate returns EINVALID unless the query holds exactly one or exactly
// two term/field pairs.
func (q Query) Validate() error {
	if len(q.Terms) != len(q.Fields) {
		return Errorf(EINVALID, "query has %d terms but %d fields; provide one query per field", len(q.Terms), len(q.Fields))
	}
	if len(q.Terms) != 1 && len(q.Terms) != 2 {
		return Errorf(EINVALID, "provide one query and field, or two comma-separated queries and fields")
	}
	for _, f := range q.Fields {
		if f == "" {
			return Errorf(EINVALID, "query field required")
		}
	}
	return nil
}

// Match reports whether b satisfies every term/field pair of q. A pair on
// FieldAll matches if the term appears anywhere in the book's serialized
// document. Any other field must exist on the book and contain the term;
// list fields match if any element does.
func (q Query) Match(b *Book) bool {
	var doc *string
	for i, term := range q.Terms {
		field := strings.ToLower(q.Fields[i])
		if field == FieldAll {
			if doc == nil {
				s, err := b.Document()
				if err != nil {
					return false
				}
				doc = &s
			}
			if !containsFold(*doc, term) {
				return false
			}
			continue
		}

		v, ok := b.Field(q.Fields[i])
		if !ok || !v.Contains(term) {
			return false
		}
	}
	return true
}
