package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	verifier "github.com/BartekB-it/prawda-w-sieci-verifier"
	"github.com/BartekB-it/prawda-w-sieci-verifier/core"
)

// RedisStore is a redis-backed SessionStore for running more than one
// instance behind a balancer. The redis key expiry plays the role of the
// memory store's sweep: sessions vanish after SweepFactor times the TTL,
// and absence is indistinguishable from "not found".
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a redis store with the given session TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = core.DefaultSessionTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		prefix: "verifier:session:",
		now:    time.Now,
	}
}

// TTL returns the store's session TTL.
func (s *RedisStore) TTL() time.Duration { return s.ttl }

func (s *RedisStore) key(token string) string { return s.prefix + token }

// Create inserts a fresh pending session. The key expiry doubles as
// garbage collection.
func (s *RedisStore) Create(ctx context.Context, url string) (core.Session, error) {
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

	payload, err := json.Marshal(session)
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to encode session: %w", err)
	}

	holdFor := time.Duration(core.SweepFactor) * s.ttl
	if err := s.client.Set(ctx, s.key(token), payload, holdFor).Err(); err != nil {
		return core.Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	return session, nil
}

// Get returns the session for token, storing the expired state the first
// time a stale pending session is observed.
func (s *RedisStore) Get(ctx context.Context, token string) (core.Session, bool, error) {
	raw, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.Session{}, false, nil
	}
	if err != nil {
		return core.Session{}, false, fmt.Errorf("failed to read session: %w", err)
	}

	var session core.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return core.Session{}, false, fmt.Errorf("failed to decode session: %w", err)
	}

	if session.ExpiredAt(s.now(), s.ttl) {
		session.Status = core.StatusExpired
		payload, err := json.Marshal(session)
		if err != nil {
			return core.Session{}, false, fmt.Errorf("failed to encode session: %w", err)
		}
		if err := s.client.Set(ctx, s.key(token), payload, redis.KeepTTL).Err(); err != nil {
			return core.Session{}, false, fmt.Errorf("failed to store session: %w", err)
		}
	}

	return session, true, nil
}

// TransitionTerminal runs the check-and-set as an optimistic WATCH
// transaction so two instances racing to confirm the same token cannot
// both win.
func (s *RedisStore) TransitionTerminal(ctx context.Context, token string, status core.Status, verdict bool, reason string) (core.Session, error) {
	key := s.key(token)

	var updated core.Session
	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return core.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read session: %w", err)
		}

		var session core.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			return fmt.Errorf("failed to decode session: %w", err)
		}

		if session.ExpiredAt(s.now(), s.ttl) {
			session.Status = core.StatusExpired
		}
		if session.Status.Terminal() {
			return &core.ConflictError{Status: session.Status}
		}

		session.Status = status
		session.Verdict = &verdict
		session.VerdictReason = reason

		payload, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}

		updated = session
		return nil
	}

	for {
		err := s.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			// another writer touched the key between GET and EXEC; re-read
			// and re-check, the loser will now observe the terminal state
			continue
		}
		if err != nil {
			return core.Session{}, err
		}
		return updated, nil
	}
}
