package sessions

import (
	"time"
)

// Status is the session state as reported by the auth runtime.
type Status int

const (
	// StatusUnauthenticated indicates no signed-in session exists.
	StatusUnauthenticated Status = iota
	// StatusLoading indicates the runtime has not yet resolved the session.
	StatusLoading
	// StatusAuthenticated indicates a valid signed-in session.
	StatusAuthenticated
	// StatusUpdating is derived, never stored: an authenticated session with
	// a refresh attempt outstanding.
	StatusUpdating
)

// String returns a string representation of the Status.
func (s Status) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUpdating:
		return "updating"
	default:
		return "unknown"
	}
}

// Session stores the authenticated user's credential state. It is created by
// the auth runtime on sign-in, replaced wholesale on every successful token
// refresh, and destroyed on sign-out. Nothing here is persisted; the session
// is rebuilt from the runtime on each process start.
type Session struct {
	ID           string     // Unique session identifier (UUID), stable across refreshes
	UserEmail    string     // Set from the ID token claims
	AccessToken  string     // Bearer token for the dashboard backend
	RefreshToken string     // Opaque refresh material, owned by the runtime
	IDToken      string     // Raw OIDC ID token (JWT)
	ExpiresAt    *time.Time // When the session expires; nil if the runtime did not report one
	CreatedAt    time.Time  // When this session instance was installed
}

// Expired reports whether the session's expiry, if known, has passed.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}
