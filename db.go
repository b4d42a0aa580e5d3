// Core database type and lifecycle operations.
//
// DB owns the log file path, the configured full-text fields, and the
// access discipline: an internal RW mutex serialises callers sharing
// one DB, and an advisory flock covers cooperating processes. Find is
// read-only; Insert appends one live row; Delete flips matched rows to
// tombstones and rewrites the whole file.
package shelf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// Config holds database configuration options. The zero value is
// usable; defaults are applied by Open.
type Config struct {
	HashAlgorithm int  // 1=xxHash3, 2=FNV1a, 3=Blake2b
	MaxRecordSize int  // Maximum single row size (default 16MB)
	SyncWrites    bool // Call fsync after appends
}

// DB represents an open database.
type DB struct {
	root       *os.Root  // Sandboxed filesystem access
	name       string    // Log filename within root
	reader     *os.File  // Read handle (O_RDONLY)
	writer     *os.File  // Write handle (O_RDWR)
	lock       *fileLock // OS-level advisory lock
	textFields map[string]bool
	config     Config
	tail       int64 // Append offset (end of file)
	closed     atomic.Bool
	mu         sync.RWMutex
}

// Open opens or creates a database file. textFields is the fixed set of
// fields eligible for $text matching; it is configuration, not derived
// from data.
func Open(path string, textFields []string, config Config) (*DB, error) {
	if config.HashAlgorithm == 0 {
		config.HashAlgorithm = AlgXXHash3
	}
	if config.MaxRecordSize == 0 {
		config.MaxRecordSize = 16 * 1024 * 1024
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}

	if _, err := root.Stat(name); os.IsNotExist(err) {
		file, err := root.Create(name)
		if err != nil {
			root.Close()
			return nil, err
		}
		file.Close()
	}

	// A leftover .tmp means a rewrite crashed before its rename; the
	// original file is intact, so the partial copy is just discarded.
	if _, err := root.Stat(name + ".tmp"); err == nil {
		root.Remove(name + ".tmp")
	}

	reader, err := root.OpenFile(name, os.O_RDONLY, 0644)
	if err != nil {
		root.Close()
		return nil, err
	}
	writer, err := root.OpenFile(name, os.O_RDWR, 0644)
	if err != nil {
		reader.Close()
		root.Close()
		return nil, err
	}

	info, err := writer.Stat()
	if err != nil {
		reader.Close()
		writer.Close()
		root.Close()
		return nil, err
	}

	fields := make(map[string]bool, len(textFields))
	for _, f := range textFields {
		fields[f] = true
	}

	return &DB{
		root:       root,
		name:       name,
		reader:     reader,
		writer:     writer,
		lock:       &fileLock{f: writer},
		textFields: fields,
		config:     config,
		tail:       info.Size(),
	}, nil
}

// Close closes the database and releases resources.
func (db *DB) Close() error {
	db.closed.Store(true)

	db.mu.Lock()
	defer db.mu.Unlock()

	db.lock.Unlock()
	db.lock.setFile(nil)

	var errs []error
	if err := db.reader.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := db.writer.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := db.root.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Blocking helpers for the access discipline.

func (db *DB) blockWrite() error {
	if db.closed.Load() {
		return ErrClosed
	}
	if err := db.lock.Lock(LockExclusive); err != nil {
		return err
	}
	db.mu.Lock()
	if db.closed.Load() {
		db.mu.Unlock()
		db.lock.Unlock()
		return ErrClosed
	}
	return nil
}

func (db *DB) blockRead() error {
	if db.closed.Load() {
		return ErrClosed
	}
	if err := db.lock.Lock(LockShared); err != nil {
		return err
	}
	db.mu.RLock()
	if db.closed.Load() {
		db.mu.RUnlock()
		db.lock.Unlock()
		return ErrClosed
	}
	return nil
}

// Find evaluates a query against the live rows and returns shaped
// copies: filter, then sort, then project. Storage is never mutated.
func (db *DB) Find(q Query, opts *FindOptions) ([]Document, error) {
	if err := db.blockRead(); err != nil {
		return nil, err
	}
	defer func() {
		db.mu.RUnlock()
		db.lock.Unlock()
	}()

	rows, err := db.readLog()
	if err != nil {
		return nil, err
	}
	matched := evaluate(liveRows(rows), q, db.textFields)
	return shape(matched, opts), nil
}

// Insert appends a document as a live row. The document must stay
// within the value model, and any configured full-text field it
// carries must be a string.
func (db *DB) Insert(doc Document) error {
	if err := validateDoc(doc, db.textFields); err != nil {
		return err
	}

	if err := db.blockWrite(); err != nil {
		return err
	}
	defer func() {
		db.mu.Unlock()
		db.lock.Unlock()
	}()

	return db.appendRow(doc)
}

// Delete tombstones every live row matched by the query and rewrites
// the file. The matched set is keyed on canonical payload digests, so
// rows whose content is structurally identical to a matched row are
// tombstoned with it. Dead rows stay in the file, flag-flipped, in
// their original order. Returns the number of rows tombstoned.
func (db *DB) Delete(q Query) (int, error) {
	if err := db.blockWrite(); err != nil {
		return 0, err
	}
	defer func() {
		db.mu.Unlock()
		db.lock.Unlock()
	}()

	rows, err := db.readLog()
	if err != nil {
		return 0, err
	}

	matched := evaluate(liveRows(rows), q, db.textFields)
	if len(matched) == 0 {
		return 0, nil
	}

	doomed := make(map[string]bool, len(matched))
	for _, r := range matched {
		payload, err := encodeDoc(r.doc)
		if err != nil {
			return 0, err
		}
		doomed[digest(payload, db.config.HashAlgorithm)] = true
	}

	n := 0
	for i, r := range rows {
		if r.deleted {
			continue
		}
		payload, err := encodeDoc(r.doc)
		if err != nil {
			return 0, err
		}
		if doomed[digest(payload, db.config.HashAlgorithm)] {
			rows[i].deleted = true
			n++
		}
	}

	if err := db.rewriteLog(rows); err != nil {
		return 0, err
	}
	return n, nil
}

// Count returns the number of live rows.
func (db *DB) Count() (int, error) {
	if err := db.blockRead(); err != nil {
		return 0, err
	}
	defer func() {
		db.mu.RUnlock()
		db.lock.Unlock()
	}()

	rows, err := db.readLog()
	if err != nil {
		return 0, err
	}
	return len(liveRows(rows)), nil
}

// liveRows filters out tombstones, preserving order and ordinals.
func liveRows(rows []row) []row {
	var out []row
	for _, r := range rows {
		if !r.deleted {
			out = append(out, r)
		}
	}
	return out
}

// validateDoc rejects documents outside the value model before any
// bytes are written. The full-text check is defensive: a non-string
// value in a configured field would silently never match $text.
func validateDoc(doc Document, textFields map[string]bool) error {
	if len(doc) == 0 {
		return fmt.Errorf("%w: empty document", ErrInvalidValue)
	}
	for field, v := range doc {
		if v.Kind() == KindInvalid {
			return fmt.Errorf("%w: field %q", ErrInvalidValue, field)
		}
		if textFields[field] && v.Kind() != KindString {
			return fmt.Errorf("%w: field %q", ErrTextField, field)
		}
	}
	return nil
}
