// Package lockfile implements the dotlock protocol used for every file the
// repository updates in place: writes go to `<path>.lock`, which is renamed
// over the target on commit.
package lockfile

import (
	"errors"
	"fmt"
	"os"
)

// ErrLockDenied is returned by Hold when another process already owns the
// lock for the target file.
var ErrLockDenied = errors.New("lock denied")

// ErrStaleLock is returned when writing or committing without holding the lock.
var ErrStaleLock = errors.New("not holding lock")

type Lockfile struct {
	filePath string
	lockPath string
	lock     *os.File
}

func New(path string) *Lockfile {
	return &Lockfile{
		filePath: path,
		lockPath: path + ".lock",
	}
}

// Hold acquires the lock by creating `<path>.lock` exclusively. Holding an
// already held lock is a no-op.
func (l *Lockfile) Hold() error {
	if l.lock != nil {
		return nil
	}

	f, err := os.OpenFile(l.lockPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: unable to create %s", ErrLockDenied, l.lockPath)
		}
		return fmt.Errorf("holding lock %s: %w", l.lockPath, err)
	}

	l.lock = f
	return nil
}

func (l *Lockfile) Write(data []byte) error {
	if l.lock == nil {
		return fmt.Errorf("%w on file: %s", ErrStaleLock, l.lockPath)
	}

	if _, err := l.lock.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", l.lockPath, err)
	}
	return nil
}

// Commit closes the lock and renames it over the target file.
func (l *Lockfile) Commit() error {
	if l.lock == nil {
		return fmt.Errorf("%w on file: %s", ErrStaleLock, l.lockPath)
	}

	if err := l.lock.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", l.lockPath, err)
	}
	l.lock = nil

	if err := os.Rename(l.lockPath, l.filePath); err != nil {
		return fmt.Errorf("committing %s: %w", l.lockPath, err)
	}
	return nil
}

// Rollback discards the lock and any data written to it. Rolling back a lock
// that is not held is a no-op.
func (l *Lockfile) Rollback() error {
	if l.lock == nil {
		return nil
	}

	if err := l.lock.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", l.lockPath, err)
	}
	l.lock = nil

	if err := os.Remove(l.lockPath); err != nil {
		return fmt.Errorf("removing %s: %w", l.lockPath, err)
	}
	return nil
}
