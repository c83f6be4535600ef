package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quickserve/pos-system/internal/core/domain"
	"github.com/quickserve/pos-system/internal/core/ports"
	"github.com/quickserve/pos-system/internal/pkg/password"
)

// --- stubs ---

type stubUserRepo struct {
	users map[string]*domain.User // keyed by id
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) add(u *domain.User) *domain.User {
	r.seq++
	copy := cloneUser(u)
	copy.ID = fmt.Sprintf("u%d", r.seq)
	copy.CreatedAt = time.Unix(int64(r.seq), 0).UTC()
	r.users[copy.ID] = copy
	return cloneUser(copy)
}

func (r *stubUserRepo) FindActiveByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	public := cloneUser(u)
	public.PasswordHash = ""
	return public, nil
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username || (user.Email != "" && u.Email == user.Email) {
			return nil, domain.ErrUserExists
		}
	}
	created := r.add(user)
	created.PasswordHash = ""
	return created, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.DisplayName != nil {
		u.DisplayName = *patch.DisplayName
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.LastLoginAt != nil {
		t := *patch.LastLoginAt
		u.LastLoginAt = &t
	}
	public := cloneUser(u)
	public.PasswordHash = ""
	return public, nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id string, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Active = active
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	// newest first: ids are u1..uN in insertion order
	for i := r.seq; i >= 1; i-- {
		if u, ok := r.users[fmt.Sprintf("u%d", i)]; ok {
			public := cloneUser(u)
			public.PasswordHash = ""
			out = append(out, public)
		}
	}
	return out, nil
}

type memStore struct {
	env     *ports.SessionEnvelope
	setErr  error
	removed int
}

func (m *memStore) Get(context.Context) (*ports.SessionEnvelope, error) {
	if m.env == nil {
		return nil, ports.ErrNoSession
	}
	copy := *m.env
	return &copy, nil
}

func (m *memStore) Set(_ context.Context, env *ports.SessionEnvelope) error {
	if m.setErr != nil {
		return m.setErr
	}
	copy := *env
	m.env = &copy
	return nil
}

func (m *memStore) Remove(context.Context) error {
	m.removed++
	m.env = nil
	return nil
}

func mustHash(t *testing.T, plaintext string) string {
	t.Helper()
	digest, err := password.Hash(plaintext)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	return digest
}

func seedUser(t *testing.T, repo *stubUserRepo, username, pass string, role domain.Role, active bool) *domain.User {
	t.Helper()
	return repo.add(&domain.User{
		Username:     username,
		DisplayName:  username,
		Email:        username + "@example.com",
		PasswordHash: mustHash(t, pass),
		Role:         role,
		Active:       active,
	})
}

func newSessionService(repo *stubUserRepo, store *memStore) *SessionService {
	return NewSessionService(repo, store, zerolog.Nop())
}

// --- tests ---

func TestSessionService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	store := &memStore{}
	seedUser(t, repo, "alice", "s3cret", domain.RoleAdmin, true)
	svc := newSessionService(repo, store)

	sess, err := svc.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if svc.State() != domain.StateAuthenticated {
		t.Fatalf("expected authenticated state, got %s", svc.State())
	}
	if sess.Permissions != domain.PermissionsFor(domain.RoleAdmin) {
		t.Fatalf("permissions not resolved from catalog: %+v", sess.Permissions)
	}
	if store.env == nil {
		t.Fatalf("session not persisted to store")
	}
	if store.env.Session.Username != "alice" {
		t.Fatalf("persisted wrong session: %+v", store.env.Session)
	}
	if sess.LastLoginAt == nil {
		t.Fatalf("last login not stamped on session")
	}
	if u := repo.users["u1"]; u.LastLoginAt == nil {
		t.Fatalf("last login not recorded on store")
	}
}

func TestSessionService_Login_FailuresAreIndistinguishable(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "bob", "goodpass", domain.RoleCashier, true)
	seedUser(t, repo, "carol", "pass", domain.RoleCashier, false)
	svc := newSessionService(repo, &memStore{})

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "bob", "badpass"},
		{"unknown user", "ghost", "goodpass"},
		{"inactive user", "carol", "pass"},
		{"empty password", "bob", ""},
	}
	for _, tc := range cases {
		if _, err := svc.Login(context.Background(), tc.username, tc.password); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", tc.name, err)
		}
		if svc.State() != domain.StateUnauthenticated {
			t.Fatalf("%s: expected unauthenticated state after failure", tc.name)
		}
	}
}

func TestSessionService_Login_LegacyPlaintextDigest(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&domain.User{
		Username:     "oldtimer",
		PasswordHash: "migration-era-password",
		Role:         domain.RoleKitchen,
		Active:       true,
	})
	svc := newSessionService(repo, &memStore{})

	if _, err := svc.Login(context.Background(), "oldtimer", "migration-era-password"); err != nil {
		t.Fatalf("legacy login failed: %v", err)
	}

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "oldtimer", "Migration-era-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("legacy digest must match on exact equality only, got %v", err)
	}
}

func TestSessionService_Restore(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	fresh := ports.SessionEnvelope{
		Session:  *domain.NewSession(&domain.User{ID: "u1", Username: "alice", Role: domain.RoleAdmin}),
		IssuedAt: now.Add(-SessionTimeout + time.Minute),
	}

	svc := newSessionService(newStubUserRepo(), &memStore{env: &fresh}).
		WithClock(func() time.Time { return now })
	if err := svc.Restore(context.Background()); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if svc.State() != domain.StateAuthenticated {
		t.Fatalf("fresh session should restore, state=%s", svc.State())
	}
	if !svc.HasPermission(domain.CapManageUsers) {
		t.Fatalf("restored session lost its permissions")
	}
}

func TestSessionService_Restore_Expired(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	stale := ports.SessionEnvelope{
		Session:  *domain.NewSession(&domain.User{ID: "u1", Username: "alice", Role: domain.RoleAdmin}),
		IssuedAt: now.Add(-SessionTimeout - time.Millisecond),
	}
	store := &memStore{env: &stale}

	svc := newSessionService(newStubUserRepo(), store).
		WithClock(func() time.Time { return now })
	if err := svc.Restore(context.Background()); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if svc.State() != domain.StateUnauthenticated {
		t.Fatalf("expired session must not restore")
	}
	if store.env != nil {
		t.Fatalf("expired envelope should have been purged")
	}
}

func TestSessionService_Restore_Absent(t *testing.T) {
	svc := newSessionService(newStubUserRepo(), &memStore{})
	if err := svc.Restore(context.Background()); err != nil {
		t.Fatalf("restore with empty store should be a no-op, got %v", err)
	}
	if svc.State() != domain.StateUnauthenticated {
		t.Fatalf("expected unauthenticated state")
	}
}

func TestSessionService_Logout(t *testing.T) {
	repo := newStubUserRepo()
	store := &memStore{}
	seedUser(t, repo, "alice", "pass", domain.RoleAdmin, true)
	svc := newSessionService(repo, store)

	if _, err := svc.Login(context.Background(), "alice", "pass"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if svc.HasPermission(domain.CapManageUsers) {
		t.Fatalf("permissions must fail closed after logout")
	}
	if store.env != nil {
		t.Fatalf("stored session not cleared")
	}
	if svc.CurrentSession() != nil {
		t.Fatalf("session still present after logout")
	}

	// idempotent
	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("second logout returned error: %v", err)
	}
}

func TestSessionService_Refresh_SyncsRoleAndExtendsWindow(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	repo := newStubUserRepo()
	store := &memStore{}
	seeded := seedUser(t, repo, "alice", "pass", domain.RoleCashier, true)
	svc := newSessionService(repo, store).WithClock(func() time.Time { return now })

	if _, err := svc.Login(context.Background(), "alice", "pass"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if svc.HasPermission(domain.CapManageUsers) {
		t.Fatalf("cashier must not manage users")
	}

	// promote mid-session; permissions only change on refresh
	admin := domain.RoleAdmin
	if _, err := repo.Update(context.Background(), seeded.ID, domain.UserPatch{Role: &admin}); err != nil {
		t.Fatalf("repo update failed: %v", err)
	}
	if svc.HasPermission(domain.CapManageUsers) {
		t.Fatalf("permission snapshot must not change before refresh")
	}

	later := now.Add(2 * time.Hour)
	svc.WithClock(func() time.Time { return later })
	sess, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if sess.Role != domain.RoleAdmin || !svc.HasPermission(domain.CapManageUsers) {
		t.Fatalf("refresh did not re-sync role/permissions: %+v", sess)
	}
	if !store.env.IssuedAt.Equal(later) {
		t.Fatalf("refresh should re-stamp the envelope, got %v", store.env.IssuedAt)
	}
}

func TestSessionService_Refresh_MissingUserLeavesSessionIntact(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedUser(t, repo, "alice", "pass", domain.RoleAdmin, true)
	svc := newSessionService(repo, &memStore{})

	if _, err := svc.Login(context.Background(), "alice", "pass"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	delete(repo.users, seeded.ID)

	sess, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if sess == nil || sess.Username != "alice" {
		t.Fatalf("session should survive a vanished record: %+v", sess)
	}
	if svc.State() != domain.StateAuthenticated {
		t.Fatalf("refresh must not force logout")
	}
}

func TestSessionService_Refresh_RequiresSession(t *testing.T) {
	svc := newSessionService(newStubUserRepo(), &memStore{})
	if _, err := svc.Refresh(context.Background()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSessionService_ChangePassword(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedUser(t, repo, "alice", "oldpass", domain.RoleAdmin, true)
	svc := newSessionService(repo, &memStore{})

	if _, err := svc.Login(context.Background(), "alice", "oldpass"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	digestBefore := repo.users[seeded.ID].PasswordHash
	if err := svc.ChangePassword(context.Background(), "wrongpass", "newpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if repo.users[seeded.ID].PasswordHash != digestBefore {
		t.Fatalf("digest must be untouched after a failed change")
	}

	if err := svc.ChangePassword(context.Background(), "oldpass", "newpass"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if svc.State() != domain.StateAuthenticated {
		t.Fatalf("password change must not alter the session")
	}

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "alice", "oldpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted")
	}
	if _, err := svc.Login(context.Background(), "alice", "newpass"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestSessionService_ChangePassword_RequiresSession(t *testing.T) {
	svc := newSessionService(newStubUserRepo(), &memStore{})
	if err := svc.ChangePassword(context.Background(), "a", "b"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSessionService_HasPermission_FailsClosed(t *testing.T) {
	svc := newSessionService(newStubUserRepo(), &memStore{})
	if svc.HasPermission(domain.CapProcessOrders) {
		t.Fatalf("unauthenticated service must deny every capability")
	}
}
