package ports

import (
	"context"
	"errors"
	"time"

	"github.com/quickserve/pos-system/internal/core/domain"
)

// ErrNoSession is returned by SessionStore.Get when no envelope is stored.
// A corrupted stored value is purged and reported the same way.
var ErrNoSession = errors.New("no stored session")

// SessionEnvelope is the durable form of a session: the snapshot itself plus
// the timestamp the expiry window is measured from.
type SessionEnvelope struct {
	Session  domain.Session `json:"session"`
	IssuedAt time.Time      `json:"issued_at"`
}

// SessionStore persists the terminal's single session envelope under one
// fixed key.
type SessionStore interface {
	Get(ctx context.Context) (*SessionEnvelope, error)
	Set(ctx context.Context, env *SessionEnvelope) error
	Remove(ctx context.Context) error
}
