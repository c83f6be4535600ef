package domain

import "time"

// SessionState is the session manager's authentication state.
type SessionState string

const (
	StateUnauthenticated SessionState = "unauthenticated"
	StateAuthenticating  SessionState = "authenticating"
	StateAuthenticated   SessionState = "authenticated"
)

// Session is the snapshot of the signed-in operator held by the session
// manager and mirrored to durable storage. Permissions are copied from the
// catalog at login/refresh time, not re-derived per access, so a role change
// only takes effect after an explicit refresh.
type Session struct {
	UserID      string        `json:"user_id"`
	Username    string        `json:"username"`
	DisplayName string        `json:"display_name"`
	Email       string        `json:"email,omitempty"`
	Role        Role          `json:"role"`
	Permissions PermissionSet `json:"permissions"`
	LastLoginAt *time.Time    `json:"last_login_at,omitempty"`
}

// NewSession builds a session snapshot for the given user, resolving its
// permissions through the catalog.
func NewSession(u *User) *Session {
	return &Session{
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Role:        u.Role,
		Permissions: PermissionsFor(u.Role),
		LastLoginAt: u.LastLoginAt,
	}
}
