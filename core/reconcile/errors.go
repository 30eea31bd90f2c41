package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord reports a missing required field or an unparseable attribute.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrUnresolvedReference reports a reference to an upstream natural key with no surrogate id.
	ErrUnresolvedReference = errors.New("unresolved cross-entity reference")

	// ErrDuplicateKey reports a natural key appearing twice in one snapshot.
	ErrDuplicateKey = errors.New("duplicate natural key in snapshot")

	// ErrEmptySource reports a snapshot too small to safely retire the active set.
	ErrEmptySource = errors.New("snapshot has too few records to replace the active set")

	// ErrRetireThreshold reports a plan retiring more of the active set than allowed.
	ErrRetireThreshold = errors.New("plan retires more than the allowed share of the active set")

	// ErrStaleSnapshot reports a snapshot dated before rows already active in the catalog.
	ErrStaleSnapshot = errors.New("snapshot is older than the active catalog")

	// ErrCommitFailed reports a failed commit transaction. The catalog is unchanged.
	ErrCommitFailed = errors.New("commit failed")

	// ErrNotConfirmed reports an apply attempted without confirmation.
	ErrNotConfirmed = errors.New("commit not confirmed")

	// ErrStagingSealed reports a write to a staging buffer that was already planned.
	ErrStagingSealed = errors.New("staging buffer already sealed")
)

// RunError wraps any failure of an entity type's run with where it happened.
type RunError struct {
	Entity string
	State  State
	Err    error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("reconcile %s failed while %s: %v", e.Entity, e.State, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Malformed builds an ErrMalformedRecord for a source line.
func Malformed(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedRecord, line, fmt.Sprintf(format, args...))
}
