// Package lock keeps a single process writing timer state for a data
// directory at a time.
package lock

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"

	"studyroom/internal/config"
)

// ErrHeld is returned when another studyroom process owns the data directory.
var ErrHeld = errors.New("another studyroom instance is already running")

type Lock struct {
	path  string
	flock *flock.Flock
}

// Acquire takes the data directory lock without blocking.
func Acquire(cfg *config.Config) (*Lock, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return AcquirePath(cfg.LockPath())
}

// AcquirePath takes the lock at path without blocking.
func AcquirePath(path string) (*Lock, error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrHeld, path)
	}
	return &Lock{path: path, flock: fl}, nil
}

func (l *Lock) Path() string {
	return l.path
}

// Release unlocks the data directory. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
