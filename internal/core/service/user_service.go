package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quickserve/pos-system/internal/core/domain"
	"github.com/quickserve/pos-system/internal/core/ports"
	"github.com/quickserve/pos-system/internal/pkg/password"
)

// UserService implements user lifecycle operations. Every mutation is gated
// by the acting session's manage-users capability and, on success, followed
// by a full reload of the cached list so the in-memory view always matches
// the store. The user base is tens of records, not millions; correctness
// beats incremental patching here.
type UserService struct {
	repo       ports.UserRepository
	authorizer ports.Authorizer
	logger     zerolog.Logger

	mu    sync.RWMutex
	users []*domain.User
}

func NewUserService(repo ports.UserRepository, authorizer ports.Authorizer, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, authorizer: authorizer, logger: logger}
}

// Register creates a new operator account. An empty role defaults to the
// lowest-privilege role; the plaintext password is hashed before it reaches
// the store and never logged.
func (s *UserService) Register(ctx context.Context, input ports.RegisterUserInput) (*domain.User, error) {
	if err := s.requireManager(); err != nil {
		return nil, err
	}
	if input.Username == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	role := input.Role
	if role == "" {
		role = domain.DefaultRole
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidCredentials, input.Role)
	}

	digest, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Insert(ctx, &domain.User{
		Username:     input.Username,
		DisplayName:  input.DisplayName,
		Email:        input.Email,
		PasswordHash: digest,
		Role:         role,
		Active:       true,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", created.Username).Str("role", string(created.Role)).Msg("user registered")
	s.reloadAfterMutation(ctx)
	return created, nil
}

// Update applies a partial patch to an account. A plaintext password in the
// input is hashed here; the returned record never carries the digest.
func (s *UserService) Update(ctx context.Context, id string, input ports.UpdateUserInput) (*domain.User, error) {
	if err := s.requireManager(); err != nil {
		return nil, err
	}

	patch := domain.UserPatch{
		DisplayName: input.DisplayName,
		Email:       input.Email,
		Role:        input.Role,
	}
	if input.Role != nil && !input.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidCredentials, *input.Role)
	}
	if input.Password != nil {
		digest, err := password.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &digest
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", id).Msg("user updated")
	s.reloadAfterMutation(ctx)
	return updated, nil
}

// Deactivate soft-disables an account. The acting operator may not disable
// their own account; an administrator locking themselves out of the only
// terminal is unrecoverable without database surgery.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	if err := s.requireManager(); err != nil {
		return err
	}
	if sess := s.authorizer.CurrentSession(); sess != nil && sess.UserID == id {
		return domain.ErrSelfDeactivation
	}

	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id).Msg("user deactivated")
	s.reloadAfterMutation(ctx)
	return nil
}

// Reactivate re-enables a soft-disabled account.
func (s *UserService) Reactivate(ctx context.Context, id string) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id).Msg("user reactivated")
	s.reloadAfterMutation(ctx)
	return nil
}

// Reload replaces the cached list with the store's current state.
func (s *UserService) Reload(ctx context.Context) error {
	users, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("reload users: %w", err)
	}

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return nil
}

// AllUsers returns the unfiltered cached list, newest first (admin view).
func (s *UserService) AllUsers() []*domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.User, len(s.users))
	copy(out, s.users)
	return out
}

// ActiveUsers filters the cached list to active accounts (general UI view).
func (s *UserService) ActiveUsers() []*domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		if u.Active {
			out = append(out, u)
		}
	}
	return out
}

func (s *UserService) requireManager() error {
	if !s.authorizer.HasPermission(domain.CapManageUsers) {
		return domain.ErrUnauthorized
	}
	return nil
}

// reloadAfterMutation refreshes the cached list after a successful write.
// The mutation itself already succeeded, so a failed reload is logged and
// the stale cache stands until the next mutation or explicit Reload.
func (s *UserService) reloadAfterMutation(ctx context.Context) {
	if err := s.Reload(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("user list reload failed")
	}
}
