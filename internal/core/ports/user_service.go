package ports

import (
	"context"

	"github.com/quickserve/pos-system/internal/core/domain"
)

// RegisterUserInput carries all data needed to create an operator account.
// Role may be empty, in which case the lowest-privilege role is assigned.
type RegisterUserInput struct {
	Username    string
	Password    string
	DisplayName string
	Email       string
	Role        domain.Role
}

// UpdateUserInput carries a partial update for an existing account.
// Password, when set, is plaintext and gets hashed before persisting.
type UpdateUserInput struct {
	DisplayName *string
	Email       *string
	Role        *domain.Role
	Password    *string
}

// UserService defines user lifecycle operations. Every call is authorized
// against the acting session's manage-users capability before the store is
// touched.
type UserService interface {
	Register(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	Deactivate(ctx context.Context, id string) error
	Reactivate(ctx context.Context, id string) error
	// Reload replaces the cached user list with the store's current state.
	Reload(ctx context.Context) error
	// AllUsers returns the unfiltered cached list (admin view).
	AllUsers() []*domain.User
	// ActiveUsers returns the cached list filtered to active accounts.
	ActiveUsers() []*domain.User
}
