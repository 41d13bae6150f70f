package store

import (
	"context"
	"sync"
	"time"

	verifier "github.com/BartekB-it/prawda-w-sieci-verifier"
	"github.com/BartekB-it/prawda-w-sieci-verifier/core"
)

// MemoryStore is the in-process implementation of the SessionStore
// interface. Sessions are not persisted across restarts.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]core.Session
	ttl      time.Duration

	// now is swappable so tests can drive expiry deterministically
	now func() time.Time
}

// NewMemoryStore creates a memory store with the given session TTL. A
// non-positive ttl falls back to the default.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = core.DefaultSessionTTL
	}
	return &MemoryStore{
		sessions: make(map[string]core.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL returns the store's session TTL.
func (s *MemoryStore) TTL() time.Duration { return s.ttl }

// Create inserts a fresh pending session and opportunistically sweeps
// entries older than SweepFactor times the TTL. The sweep is amortized
// cleanup only; correctness never depends on it.
func (s *MemoryStore) Create(ctx context.Context, url string) (core.Session, error) {
	token, err := verifier.NewToken()
	if err != nil {
		return core.Session{}, err
	}

	session := core.Session{
		Token:     token,
		URL:       url,
		CreatedAt: s.now(),
		Status:    core.StatusPending,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	s.sessions[token] = session

	return session, nil
}

// Get returns the session for token, applying lazy expiry: the first read
// that observes a pending session past its TTL stores the expired state,
// short-circuiting any later confirm attempt.
func (s *MemoryStore) Get(ctx context.Context, token string) (core.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return core.Session{}, false, nil
	}

	if session.ExpiredAt(s.now(), s.ttl) {
		session.Status = core.StatusExpired
		s.sessions[token] = session
	}

	return session, true, nil
}

// TransitionTerminal performs the atomic check-and-set from pending into a
// terminal state. Exactly one of two racing confirms wins; the loser gets a
// ConflictError carrying the state it lost to.
func (s *MemoryStore) TransitionTerminal(ctx context.Context, token string, status core.Status, verdict bool, reason string) (core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return core.Session{}, core.ErrSessionNotFound
	}

	// a pending session past its TTL counts as terminal even if no read
	// observed it yet
	if session.ExpiredAt(s.now(), s.ttl) {
		session.Status = core.StatusExpired
		s.sessions[token] = session
	}

	if session.Status.Terminal() {
		return core.Session{}, &core.ConflictError{Status: session.Status}
	}

	session.Status = status
	session.Verdict = &verdict
	session.VerdictReason = reason
	s.sessions[token] = session

	return session, nil
}

// Len returns the number of sessions currently held, swept or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemoryStore) sweepLocked() {
	cutoff := s.now().Add(-time.Duration(core.SweepFactor) * s.ttl)
	for token, session := range s.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(s.sessions, token)
		}
	}
}
