package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quickserve/pos-system/internal/core/ports"
)

// sessionKey is the single fixed key the terminal's session envelope lives
// under. One terminal, one session.
const sessionKey = "pos:session"

// opTimeout bounds every store call at the integration boundary.
const opTimeout = 3 * time.Second

// SessionStore persists the session envelope as a JSON blob in Redis.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Get loads the stored envelope. A missing key returns ports.ErrNoSession;
// a value that no longer parses is purged and reported the same way rather
// than surfacing as an error.
func (s *SessionStore) Get(ctx context.Context) (*ports.SessionEnvelope, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := s.client.Get(ctx, sessionKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrNoSession
		}
		return nil, fmt.Errorf("session get: %w", err)
	}

	var env ports.SessionEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		_ = s.client.Del(ctx, sessionKey).Err()
		return nil, ports.ErrNoSession
	}
	return &env, nil
}

// Set overwrites the stored envelope. Last writer wins.
func (s *SessionStore) Set(ctx context.Context, env *ports.SessionEnvelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, sessionKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

// Remove deletes the stored envelope. Removing an absent key is a no-op.
func (s *SessionStore) Remove(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("session remove: %w", err)
	}
	return nil
}
