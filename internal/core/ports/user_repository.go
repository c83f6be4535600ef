package ports

import (
	"context"

	"github.com/quickserve/pos-system/internal/core/domain"
)

// UserRepository defines persistence operations for operator accounts.
//
// Every read path except FindActiveByUsername must leave PasswordHash empty;
// that lookup exists solely so credentials can be verified and is never
// returned to a client.
type UserRepository interface {
	// FindActiveByUsername retrieves an active user by username, including
	// the stored password digest. Inactive and unknown users both resolve
	// to domain.ErrUserNotFound.
	FindActiveByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByID retrieves a user regardless of active flag, digest excluded.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Insert persists a new user. Username and email must be unique across
	// active and inactive records; violations return domain.ErrUserExists.
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update applies a partial patch and returns the updated record,
	// digest excluded.
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	// SetActive toggles the soft-disable flag; records are never deleted.
	SetActive(ctx context.Context, id string, active bool) error
	// List returns all users, newest first, inactive ones included.
	List(ctx context.Context) ([]*domain.User, error)
}
