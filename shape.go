// Result shaping: sort then project.
//
// Shaping runs after the matcher and in a fixed order, sort before
// projection, so comparators always see full documents. The sort is
// stable and multi-key: the first key with a non-zero comparison
// decides, ties fall through to the next key, and a full tie keeps the
// matcher's output order. Shaped results are copies; callers never
// alias stored state.
package shelf

import (
	"cmp"
	"slices"
	"strings"
)

// Sort directions for SortKey.Order.
const (
	Asc  = 1
	Desc = -1
)

// SortKey names one sort field and its direction. A zero Order sorts
// ascending.
type SortKey struct {
	Field string
	Order int
}

// FindOptions shapes Find results. Sort keys apply in slice order as a
// priority chain; Projection, when non-nil, restricts each result to
// the named fields (missing fields are omitted, not defaulted).
type FindOptions struct {
	Sort       []SortKey
	Projection []string
}

// shape applies sort and projection to matched rows and returns
// detached documents.
func shape(rows []row, opts *FindOptions) []Document {
	docs := make([]Document, len(rows))
	for i, r := range rows {
		docs[i] = r.doc.Clone()
	}

	if opts == nil {
		return docs
	}

	if len(opts.Sort) > 0 {
		slices.SortStableFunc(docs, func(a, b Document) int {
			for _, key := range opts.Sort {
				c := compareValues(a[key.Field], b[key.Field])
				if key.Order == Desc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	if opts.Projection != nil {
		for i, doc := range docs {
			docs[i] = project(doc, opts.Projection)
		}
	}
	return docs
}

// compareValues orders two field values: lexicographic for strings,
// numeric for numbers. Mismatched or array kinds compare as equal so
// the next sort key decides.
func compareValues(a, b Value) int {
	if a.Kind() == KindString && b.Kind() == KindString {
		return strings.Compare(a.Str(), b.Str())
	}
	if a.Kind() == KindNumber && b.Kind() == KindNumber {
		return cmp.Compare(a.Num(), b.Num())
	}
	return 0
}

// project returns a new document holding only the named fields.
func project(doc Document, fields []string) Document {
	out := make(Document, len(fields))
	for _, field := range fields {
		if v, ok := doc[field]; ok {
			out[field] = v
		}
	}
	return out
}
