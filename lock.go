// OS-level file locking for cooperating processes.
//
// fileLock wraps flock(2) / LockFileEx around the writer handle. The
// mutex is held for the whole syscall so that Fd() cannot race with a
// handle swap: rewriteLog renames a fresh file over the log and must
// close the old writer, so it calls setFile(nil) first, which drains
// any in-flight lock call and turns Lock/Unlock into no-ops until the
// new handle is installed.
package shelf

import (
	"os"
	"sync"
)

// LockMode selects shared (read) or exclusive (write) locking.
type LockMode int

const (
	LockShared LockMode = iota
	LockExclusive
)

type fileLock struct {
	mu sync.Mutex
	f  *os.File
}

// Lock acquires a shared or exclusive lock, blocking until granted.
// Returns nil immediately if the handle has been cleared.
func (l *fileLock) Lock(mode LockMode) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	return l.lock(mode)
}

// Unlock releases the lock. Returns nil immediately if the handle has
// been cleared.
func (l *fileLock) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	return l.unlock()
}

// setFile swaps the underlying handle. Passing nil blocks until any
// in-flight syscall completes, then disables locking; used by Close
// and by the rewrite path before closing the old writer.
func (l *fileLock) setFile(f *os.File) {
	l.mu.Lock()
	l.f = f
	l.mu.Unlock()
}
