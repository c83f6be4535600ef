package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quickserve/pos-system/internal/core/domain"
	"github.com/quickserve/pos-system/internal/core/ports"
	"github.com/quickserve/pos-system/internal/pkg/password"
)

// SessionTimeout is the fixed validity window of a stored session, measured
// from the envelope's issued-at timestamp.
const SessionTimeout = 8 * time.Hour

// SessionService implements ports.SessionService for the terminal's single
// session. The mutex only protects the in-memory state against concurrent
// handlers; whole operations are not serialized, so two overlapping logins
// race last-writer-wins on the store (one session per terminal).
type SessionService struct {
	repo   ports.UserRepository
	store  ports.SessionStore
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	state   domain.SessionState
	session *domain.Session
}

func NewSessionService(repo ports.UserRepository, store ports.SessionStore, logger zerolog.Logger) *SessionService {
	return &SessionService{
		repo:   repo,
		store:  store,
		logger: logger,
		now:    time.Now,
		state:  domain.StateUnauthenticated,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// Restore attempts to resume a persisted session at startup. Missing,
// corrupt and expired envelopes all leave the service unauthenticated;
// expired ones are purged from the store.
func (s *SessionService) Restore(ctx context.Context) error {
	env, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrNoSession) {
			return nil
		}
		return fmt.Errorf("restore session: %w", err)
	}

	if s.now().Sub(env.IssuedAt) >= SessionTimeout {
		s.logger.Info().Str("username", env.Session.Username).Msg("stored session expired, purging")
		if err := s.store.Remove(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to purge expired session")
		}
		return nil
	}

	restored := env.Session
	s.mu.Lock()
	s.session = &restored
	s.state = domain.StateAuthenticated
	s.mu.Unlock()

	s.logger.Info().Str("username", restored.Username).Str("role", string(restored.Role)).Msg("session restored")
	return nil
}

// Login verifies the credentials and establishes a new session. Unknown
// usernames, inactive accounts and wrong passwords are indistinguishable to
// the caller: all return domain.ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, username, pass string) (*domain.Session, error) {
	if username == "" || pass == "" {
		return nil, domain.ErrInvalidCredentials
	}

	s.setState(domain.StateAuthenticating)

	user, err := s.repo.FindActiveByUsername(ctx, username)
	if err != nil {
		s.setState(domain.StateUnauthenticated)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	if !password.Verify(pass, user.PasswordHash) {
		s.setState(domain.StateUnauthenticated)
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	user.LastLoginAt = &now
	if _, err := s.repo.Update(ctx, user.ID, domain.UserPatch{LastLoginAt: &now}); err != nil {
		// Credentials already checked out; a failed bookkeeping write must
		// not keep the operator out.
		s.logger.Warn().Err(err).Str("username", username).Msg("failed to record last login")
	}

	session := domain.NewSession(user)
	if err := s.store.Set(ctx, &ports.SessionEnvelope{Session: *session, IssuedAt: now}); err != nil {
		s.setState(domain.StateUnauthenticated)
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.session = session
	s.state = domain.StateAuthenticated
	s.mu.Unlock()

	s.logger.Info().Str("username", username).Str("role", string(user.Role)).Msg("login succeeded")
	return s.CurrentSession(), nil
}

// Logout clears the durable entry and in-memory session unconditionally.
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.store.Remove(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to remove stored session")
	}

	s.mu.Lock()
	s.session = nil
	s.state = domain.StateUnauthenticated
	s.mu.Unlock()
	return nil
}

// Refresh re-reads the canonical user record and re-syncs the session's
// name, email, role and permissions. Re-persisting stamps the envelope with
// the current time, so a refresh extends the session window. A user record
// that no longer exists leaves the session as it was.
func (s *SessionService) Refresh(ctx context.Context) (*domain.Session, error) {
	current := s.CurrentSession()
	if current == nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.repo.FindByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return current, nil
		}
		return nil, fmt.Errorf("refresh lookup: %w", err)
	}

	session := domain.NewSession(user)
	session.LastLoginAt = current.LastLoginAt
	if err := s.store.Set(ctx, &ports.SessionEnvelope{Session: *session, IssuedAt: s.now()}); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	return s.CurrentSession(), nil
}

// ChangePassword verifies the current password for the signed-in user and
// persists a bcrypt digest of the new one. The session object is untouched.
func (s *SessionService) ChangePassword(ctx context.Context, current, next string) error {
	sess := s.CurrentSession()
	if sess == nil {
		return domain.ErrUnauthorized
	}

	// The active-by-username lookup is the one read path that carries the
	// stored digest.
	user, err := s.repo.FindActiveByUsername(ctx, sess.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidCredentials
		}
		return fmt.Errorf("change password lookup: %w", err)
	}

	if !password.Verify(current, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	digest, err := password.Hash(next)
	if err != nil {
		return err
	}
	if _, err := s.repo.Update(ctx, user.ID, domain.UserPatch{PasswordHash: &digest}); err != nil {
		return fmt.Errorf("persist password: %w", err)
	}

	s.logger.Info().Str("username", sess.Username).Msg("password changed")
	return nil
}

// CurrentSession returns a copy of the active session, or nil when signed out.
func (s *SessionService) CurrentSession() *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.StateAuthenticated || s.session == nil {
		return nil
	}
	copy := *s.session
	return &copy
}

// HasPermission is a pure query against the session's permission snapshot.
// It fails closed: no session means no capability.
func (s *SessionService) HasPermission(c domain.Capability) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.StateAuthenticated || s.session == nil {
		return false
	}
	return s.session.Permissions.Allows(c)
}

// State returns the manager's authentication state.
func (s *SessionService) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *SessionService) setState(st domain.SessionState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
