package ports

import (
	"context"

	"github.com/BartekB-it/prawda-w-sieci-verifier/core"
)

// SessionStore is the concurrency-safe table of verification sessions.
type SessionStore interface {
	// Create inserts a fresh pending session for an already-validated URL
	// and returns it with its generated token.
	Create(ctx context.Context, url string) (core.Session, error)

	// Get returns the session for token, applying read-triggered lazy
	// expiry: a pending session past its TTL is stored as expired before
	// being returned. The bool is false when no session exists.
	Get(ctx context.Context, token string) (core.Session, bool, error)

	// TransitionTerminal atomically moves a pending session into the given
	// terminal status, setting verdict and reason exactly once. It returns
	// core.ErrSessionNotFound for unknown tokens and *core.ConflictError
	// when the session is already terminal; under concurrent confirms for
	// one token exactly one caller succeeds.
	TransitionTerminal(ctx context.Context, token string, status core.Status, verdict bool, reason string) (core.Session, error)
}
