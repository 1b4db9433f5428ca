package studylog

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidData marks caller input that was rejected before any store call.
	ErrInvalidData = errors.New("invalid data")
	// ErrInvalidDuration is the ErrInvalidData case for negative durations.
	ErrInvalidDuration = fmt.Errorf("%w: invalid duration", ErrInvalidData)
	// ErrStoreUnavailable wraps every failing Store call surfaced to callers.
	ErrStoreUnavailable = errors.New("log store unavailable")
)

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
