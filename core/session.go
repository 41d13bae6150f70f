package core

import "time"

// Status is the lifecycle state of a verification session.
type Status string

const (
	// StatusPending means the session was created and awaits confirmation
	StatusPending Status = "pending"

	// StatusConfirmed means a second party confirmed the session and the
	// verdict was computed
	StatusConfirmed Status = "confirmed"

	// StatusRejected means confirmation ran but the URL failed the trust
	// predicate
	StatusRejected Status = "rejected"

	// StatusExpired means the session outlived its TTL before confirmation
	StatusExpired Status = "expired"
)

// Terminal reports whether the status is a sink state. A terminal session
// never transitions again.
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusRejected || s == StatusExpired
}

const (
	// DefaultSessionTTL is how long a pending session stays confirmable
	DefaultSessionTTL = 120 * time.Second

	// SweepFactor times the TTL is the age past which a session is
	// garbage-collected from the store
	SweepFactor = 4
)

// Session is one URL-verification handshake between the party that created
// it and the second party that confirms it.
type Session struct {
	Token         string    `json:"token"`
	URL           string    `json:"url"`
	CreatedAt     time.Time `json:"created_at"`
	Status        Status    `json:"status"`
	Verdict       *bool     `json:"verdict"`
	VerdictReason string    `json:"verdict_reason"`
}

// ExpiresAt returns the instant the session stops being confirmable.
func (s Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.CreatedAt.Add(ttl)
}

// ExpiredAt reports whether the session's TTL has elapsed at the given time.
// Only meaningful while the session is pending; terminal states stay put.
func (s Session) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return s.Status == StatusPending && now.Sub(s.CreatedAt) > ttl
}
