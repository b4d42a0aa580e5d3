// Log primitives: full-file read, tail append, atomic rewrite.
//
// The log is read in one pass; there is no index and no partial load.
// Appends always land at db.tail (the current end of file) via WriteAt,
// so concurrent readers sharing the handle are unaffected by a moving
// file position. A rewrite never touches the live file in place: rows
// are written to a sibling .tmp file, synced, and renamed over the
// original, so a crash mid-rewrite leaves the old log intact.
package shelf

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// readLog reads and decodes the whole file. Rows come back in file
// order with their ordinals assigned. A line that fails to decode
// aborts the load: silently skipping would mask corruption.
func (db *DB) readLog() ([]row, error) {
	sz, err := size(db.reader)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if sz == 0 {
		return nil, nil
	}

	data, err := io.ReadAll(io.NewSectionReader(db.reader, 0, sz))
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return decodeAll(data)
}

// decodeAll parses raw log bytes into rows, assigning ordinals in file
// order. Empty lines (the trailing newline) are skipped; anything else
// that fails to decode aborts the whole parse.
func decodeAll(data []byte) ([]row, error) {
	var rows []row
	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line = data[:i]
			data = data[i+1:]
		} else {
			data = nil
		}
		if len(line) == 0 {
			continue
		}
		r, err := decodeRow(line, len(rows))
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// appendRow serialises a document and appends it as a live row at
// db.tail. Never reads existing content; the file grows monotonically.
func (db *DB) appendRow(doc Document) error {
	line, err := encodeRow(row{doc: doc})
	if err != nil {
		return err
	}
	if len(line) > db.config.MaxRecordSize {
		return ErrTooLarge
	}

	line = append(line, '\n')
	if _, err := db.writer.WriteAt(line, db.tail); err != nil {
		return fmt.Errorf("append: %w", err)
	}
	db.tail += int64(len(line))

	if db.config.SyncWrites {
		db.writer.Sync()
	}
	return nil
}

// rewriteLog replaces the file contents with the given rows, in order,
// live and dead alike. The replacement is atomic: write to .tmp, sync,
// rename over the original, then reopen the handles on the new inode.
func (db *DB) rewriteLog(rows []row) error {
	var buf bytes.Buffer
	for _, r := range rows {
		line, err := encodeRow(r)
		if err != nil {
			return err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	tmpName := db.name + ".tmp"
	tmp, err := db.root.Create(tmpName)
	if err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		db.root.Remove(tmpName)
		return fmt.Errorf("rewrite: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		db.root.Remove(tmpName)
		return fmt.Errorf("rewrite: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		db.root.Remove(tmpName)
		return fmt.Errorf("rewrite: %w", err)
	}

	if err := db.root.Rename(tmpName, db.name); err != nil {
		db.root.Remove(tmpName)
		return fmt.Errorf("rewrite: rename: %w", err)
	}

	return db.reopen(int64(buf.Len()))
}

// reopen swaps the reader and writer handles onto the renamed file. The
// flock handle is cleared first so an in-flight lock syscall cannot race
// with the close, then restored on the new writer.
func (db *DB) reopen(tail int64) error {
	db.lock.setFile(nil)
	db.reader.Close()
	db.writer.Close()

	reader, err := db.root.OpenFile(db.name, os.O_RDONLY, 0644)
	if err != nil {
		return fmt.Errorf("reopen: %w", err)
	}
	writer, err := db.root.OpenFile(db.name, os.O_RDWR, 0644)
	if err != nil {
		reader.Close()
		return fmt.Errorf("reopen: %w", err)
	}

	db.reader = reader
	db.writer = writer
	db.tail = tail
	db.lock.setFile(writer)
	return nil
}

func size(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
