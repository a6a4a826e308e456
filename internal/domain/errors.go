package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. Callers match with
// errors.Is; infrastructure wraps them with context.

var (
	// Lookup errors
	ErrDonationNotFound = errors.New("donation not found")
	ErrResourceNotFound = errors.New("resource not found")

	// Allocation errors
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrConflict signals a concurrent mutation detected at commit time.
	// The allocation primitive retries once internally before surfacing it.
	ErrConflict = errors.New("concurrent modification conflict")

	// ErrStoreUnavailable signals collaborator I/O failure. Never retried by
	// the core; surfaced to the caller.
	ErrStoreUnavailable = errors.New("store unavailable")
)
