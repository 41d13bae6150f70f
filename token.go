// Package verifier holds the small shared pieces of the gov.pl URL
// verification service; the domain model lives in core and the wiring in
// service, adapters and transport.
package verifier

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes is the entropy of a session token. 24 random bytes give 192
// bits, comfortably above the 128-bit floor for unguessable tokens, and
// encode without padding.
const tokenBytes = 24

// NewToken returns a fresh URL-safe session token from the system's
// cryptographically secure random source. Collisions are treated as
// impossible and are not handled anywhere.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
