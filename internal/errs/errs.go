// Package errs defines the error taxonomy shared by services and handlers.
// Services wrap these sentinels with context via fmt.Errorf("...: %w", ...);
// handlers match them with errors.Is to pick HTTP status codes.
package errs

import "errors"

var (
	// ErrNotFound indicates a referenced subscriber, draw, entry or winner
	// does not exist. Surfaced to the caller, never retried.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStateTransition indicates an illegal lifecycle transition
	// (verify a non-pending winner, settle a non-verified one, execute a
	// non-scheduled draw). The attempted mutation did not happen.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrSyncUnavailable indicates the external billing system could not be
	// reached or timed out. It is never a subscription status: the caller
	// may retry or fall back to cached data.
	ErrSyncUnavailable = errors.New("billing sync unavailable")

	// ErrPersistenceConflict indicates a concurrent write was detected and
	// the bounded internal retries were exhausted.
	ErrPersistenceConflict = errors.New("persistence conflict")

	// ErrConfiguration indicates missing or invalid configuration, such as
	// absent billing credentials. Fatal for the operation, no retry.
	ErrConfiguration = errors.New("configuration error")
)
