// Package flock guards a calidex store against concurrent writers with an
// advisory lock file next to the database.
package flock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/calidex"
	"github.com/gofrs/flock"
)

// LockSuffix is appended to the database path to name its lock file.
const LockSuffix = ".lock"

// StoreLock is an exclusive cross-process lock on one store.
type StoreLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewStoreLock creates a lock for the database at dbPath.
// The lock file is <dbPath>.lock.
func NewStoreLock(dbPath string) *StoreLock {
	path := dbPath + LockSuffix
	return &StoreLock{
		path:  path,
		flock: flock.New(path),
	}
}

// Acquire takes the lock without blocking.
// Returns ECONFLICT if another process holds it.
func (l *StoreLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return calidex.Errorf(calidex.ECONFLICT, "store is in use by another process (lock %s)", l.path)
	}

	l.locked = true
	return nil
}

// Release drops the lock. Releasing an unheld lock is a no-op.
func (l *StoreLock) Release() error {
	if !l.locked {
		return nil
	}
	l.locked = false

	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the path of the lock file.
func (l *StoreLock) Path() string {
	return l.path
}
