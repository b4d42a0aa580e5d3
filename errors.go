// Package shelf provides an embedded document store backed by a single
// append-only line log. Each stored row is one newline-terminated line:
// a marker byte ('E' live, 'D' tombstone) followed by the document as a
// JSON object. Deleting never truncates: matched rows have their marker
// flipped to 'D' and the whole file is rewritten atomically, so every row
// ever written stays physically present (in append order) until an
// explicit Compact.
//
// Queries are Mongo-style: $text for whole-word matching over the
// configured full-text fields, $and/$or combinators with set-algebra
// semantics, and per-field $eq/$in/$lt/$gt conditions. Results can be
// sorted on multiple keys and projected to a field subset.
//
// A DB serialises its own callers with an internal RW mutex and takes an
// advisory flock on the file, but there is no coordination with processes
// that ignore the advisory lock. A foreign write landing between a
// Delete's load and its rewrite is lost; callers that share a file across
// non-cooperating processes must serialise access themselves.
package shelf

import "errors"

// Sentinel errors for programmatic handling. Callers use errors.Is.
// Operational failures (missing file, unwritable disk) are returned as
// the underlying os/io errors, wrapped with context.
var (
	ErrClosed       = errors.New("database is closed")
	ErrMalformedLog = errors.New("malformed log line")
	ErrQueryShape   = errors.New("unrecognised query shape")
	ErrInvalidValue = errors.New("value outside the scalar model")
	ErrTextField    = errors.New("full-text field is not a string")
	ErrTooLarge     = errors.New("document exceeds maximum record size")
)
