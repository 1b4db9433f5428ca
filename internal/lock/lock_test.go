package lock_test

import (
	"errors"
	"testing"

	"studyroom/internal/lock"
	"studyroom/internal/testsupport"
)

func TestAcquireIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first, err := lock.Acquire(cfg)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	if _, err := lock.Acquire(cfg); !errors.Is(err, lock.ErrHeld) {
		t.Fatalf("expected ErrHeld while locked, got %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}

	again, err := lock.Acquire(cfg)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	defer again.Release()

	if again.Path() != cfg.LockPath() {
		t.Fatalf("unexpected lock path %q", again.Path())
	}
}
