package sessions

import (
	"context"
)

// UpdateIntent describes what the runtime should do with the current session.
type UpdateIntent struct {
	// Refresh asks the runtime to re-acquire tokens using the stored refresh
	// material.
	Refresh bool
}

// UpdateResult is the outcome of an Update call. Err is set when the call
// itself completed but the requested operation failed (for example the
// provider rejected the refresh token); callers must treat it the same as an
// error return.
type UpdateResult struct {
	Session *Session
	Err     error
}

// Runtime is the session/auth collaborator. It owns the credential material
// and is the only writer of session state; liveness components read the
// session and request updates through it.
type Runtime interface {
	// Session returns the current session, or nil if none exists.
	Session() *Session

	// Status returns the current session status.
	Status() Status

	// Update mutates the session per the intent and returns the new state.
	Update(ctx context.Context, intent UpdateIntent) (UpdateResult, error)

	// SignOut destroys the current session.
	SignOut(ctx context.Context) error
}
