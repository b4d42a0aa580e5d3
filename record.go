// Row encoding for the line log.
//
// One row per line: a single marker byte followed by the document as a
// JSON object, terminated by '\n'. MarkerLive rows are visible to
// queries; MarkerDead rows are tombstones kept for audit and append
// safety. Documents serialise with map keys sorted, so a row's payload
// bytes are a canonical form: two documents with equal content always
// produce identical payloads, which is the identity notion Delete uses.
package shelf

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Row markers, the first byte of every line.
const (
	MarkerLive = 'E' // row is visible to queries
	MarkerDead = 'D' // row is tombstoned
)

// Document is a schema-shaped field mapping. The engine imposes no
// identity field; rows with equal content are indistinguishable.
type Document map[string]Value

// Clone returns an independent copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// row pairs a document with its tombstone flag. ord is the row's
// position in the loaded file, used as row identity by the matcher so
// that duplicate documents survive set operations.
type row struct {
	deleted bool
	doc     Document
	ord     int
}

// encodeDoc serialises a document to its canonical payload bytes.
func encodeDoc(doc Document) ([]byte, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return payload, nil
}

// encodeRow produces the full on-disk line (marker + payload, no
// trailing newline).
func encodeRow(r row) ([]byte, error) {
	payload, err := encodeDoc(r.doc)
	if err != nil {
		return nil, err
	}
	line := make([]byte, 0, len(payload)+1)
	marker := byte(MarkerLive)
	if r.deleted {
		marker = MarkerDead
	}
	line = append(line, marker)
	line = append(line, payload...)
	return line, nil
}

// decodeRow parses one log line. The marker must be present and valid
// and the payload must decode as a document of in-model values; any
// other shape means the log is corrupt and the whole load aborts.
func decodeRow(line []byte, ord int) (row, error) {
	if len(line) < 2 {
		return row{}, fmt.Errorf("%w: line %d: too short", ErrMalformedLog, ord+1)
	}
	var deleted bool
	switch line[0] {
	case MarkerLive:
		deleted = false
	case MarkerDead:
		deleted = true
	default:
		return row{}, fmt.Errorf("%w: line %d: marker %q", ErrMalformedLog, ord+1, line[0])
	}

	var doc Document
	if err := json.Unmarshal(line[1:], &doc); err != nil {
		return row{}, fmt.Errorf("%w: line %d: %v", ErrMalformedLog, ord+1, err)
	}
	return row{deleted: deleted, doc: doc, ord: ord}, nil
}
