package ports

import (
	"context"

	"github.com/quickserve/pos-system/internal/core/domain"
)

// SessionService owns the terminal's single session: authentication,
// durable persistence, expiry and permission queries.
type SessionService interface {
	// Restore loads a previously persisted session at startup. Envelopes
	// older than the session timeout are purged and ignored.
	Restore(ctx context.Context) error
	// Login authenticates the given credentials. Unknown usernames, wrong
	// passwords and inactive accounts all return domain.ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*domain.Session, error)
	// Logout clears the session unconditionally; calling it while signed
	// out is a no-op.
	Logout(ctx context.Context) error
	// Refresh re-syncs display name, email, role and permissions from the
	// canonical user record. A record that no longer exists leaves the
	// session untouched.
	Refresh(ctx context.Context) (*domain.Session, error)
	// ChangePassword verifies the current password and persists a new
	// hashed digest for the signed-in user. The session itself is unchanged.
	ChangePassword(ctx context.Context, current, next string) error

	Authorizer
}

// Authorizer is the read-only slice of the session manager that gated
// components consume.
type Authorizer interface {
	// CurrentSession returns a copy of the active session, or nil when
	// signed out.
	CurrentSession() *domain.Session
	// HasPermission reports whether the active session grants the
	// capability; false whenever no session is active.
	HasPermission(c domain.Capability) bool
	// State returns the manager's authentication state.
	State() domain.SessionState
}
