// Compressed snapshots of the log.
//
// Backup streams the raw log bytes through Zstd into a destination
// file; Restore decodes a snapshot, validates every row, and installs
// it with the same atomic rewrite Delete uses. Snapshots are taken
// under the read discipline, so a backup is always a consistent
// point-in-time copy, tombstones included.
package shelf

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// SpeedFastest keeps Backup cheap on large logs; snapshot bytes are
// line-delimited JSON and compress well at any level.
var backupLevel = zstd.WithEncoderLevel(zstd.SpeedFastest)

// Backup writes a Zstd-compressed snapshot of the log to path. The
// destination may live outside the database directory.
func (db *DB) Backup(path string) error {
	if err := db.blockRead(); err != nil {
		return err
	}
	defer func() {
		db.mu.RUnlock()
		db.lock.Unlock()
	}()

	sz, err := size(db.reader)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	enc, err := zstd.NewWriter(dst, backupLevel)
	if err != nil {
		dst.Close()
		return fmt.Errorf("backup: %w", err)
	}

	if _, err := io.Copy(enc, io.NewSectionReader(db.reader, 0, sz)); err != nil {
		enc.Close()
		dst.Close()
		return fmt.Errorf("backup: %w", err)
	}
	if err := enc.Close(); err != nil {
		dst.Close()
		return fmt.Errorf("backup: %w", err)
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		return fmt.Errorf("backup: sync: %w", err)
	}
	return dst.Close()
}

// Restore replaces the log with the contents of a snapshot written by
// Backup. Every row is decoded before anything is written, so a
// corrupt snapshot fails with ErrMalformedLog and leaves the current
// log untouched.
func (db *DB) Restore(path string) error {
	if err := db.blockWrite(); err != nil {
		return err
	}
	defer func() {
		db.mu.Unlock()
		db.lock.Unlock()
	}()

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	defer src.Close()

	dec, err := zstd.NewReader(src)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	rows, err := decodeAll(data)
	if err != nil {
		return err
	}
	return db.rewriteLog(rows)
}
