// Physical reclamation of tombstoned rows.
package shelf

// Compact rewrites the log with only its live rows, dropping every
// tombstone permanently. Delete itself never shrinks the file; Compact
// is the explicit opt-in that trades the audit trail for disk space.
// Live row order is preserved. Returns the number of rows dropped.
func (db *DB) Compact() (int, error) {
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

	live := liveRows(rows)
	dropped := len(rows) - len(live)
	if dropped == 0 {
		return 0, nil
	}

	if err := db.rewriteLog(live); err != nil {
		return 0, err
	}
	return dropped, nil
}
