package sign

import "errors"

var (
	// ErrInvalidOrder marks order input that fails validation or
	// canonicalization. Never retried; surfaced to the caller as is.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrSigningFailure marks corrupted or unusable key state. Fatal:
	// signing is deterministic, so a failure is a precondition
	// violation, not a transient fault.
	ErrSigningFailure = errors.New("signing failure")
)
