package domain

import (
	"errors"
	"time"
)

// Role is the closed set of roles a user can hold. Privilege order is
// admin > cashier > kitchen.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
	RoleKitchen Role = "kitchen"
)

// DefaultRole is assigned when a new user is registered without an explicit
// role. Kitchen is the lowest-privilege role.
const DefaultRole = RoleKitchen

// IsValid reports whether the role is one of the predefined roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCashier, RoleKitchen:
		return true
	default:
		return false
	}
}

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUnauthorized = errors.New("operation not permitted")
var ErrSelfDeactivation = errors.New("cannot deactivate own account")

// User models an operator account on the terminal. PasswordHash is never
// serialized and is only populated on the credential-verification read path.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	DisplayName  string     `json:"display_name"`
	Email        string     `json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserPatch carries partial updates for a user record. Nil fields are left
// untouched. PasswordHash must already be hashed when it reaches the store.
type UserPatch struct {
	DisplayName  *string
	Email        *string
	Role         *Role
	PasswordHash *string
	LastLoginAt  *time.Time
}

// IsZero reports whether the patch would change nothing.
func (p UserPatch) IsZero() bool {
	return p.DisplayName == nil && p.Email == nil && p.Role == nil &&
		p.PasswordHash == nil && p.LastLoginAt == nil
}
