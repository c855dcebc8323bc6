package apperror

import "errors"

// Sentinel errors shared by all services. Handlers map them to HTTP status
// codes with errors.Is; services add context with fmt.Errorf("...: %w", err).
var (
	// ErrNotFound: a referenced role, permission or user does not exist, or a
	// permission is soft-deleted where an active one is required.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyInState: granting an already-granted override, revoking an
	// already-revoked one, or any duplicate insert outside the synchronizer.
	ErrAlreadyInState = errors.New("already in requested state")

	// ErrForbidden: a Verify/VerifyAny check failed. Surfaced to the caller,
	// never retried.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated: missing or invalid bearer credential.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrSyncFailure: a catalog sync run aborted and rolled back. The catalog
	// mirror is unchanged and the whole sync may be retried.
	ErrSyncFailure = errors.New("permission sync failed")
)
