package core

import (
	"errors"
	"fmt"
)

// Validation failures. The messages are the safe, user-facing strings; raw
// parser or transport error text never crosses the API boundary.
var (
	ErrEmptyURL         = errors.New("empty URL")
	ErrURLTooLong       = errors.New("URL too long")
	ErrSchemeNotAllowed = errors.New("only http and https URLs are allowed")
	ErrHostMissing      = errors.New("could not extract a hostname from the URL")
	ErrForbiddenAddress = errors.New("IP address is not allowed")
	ErrDomainNotTrusted = errors.New("domain not on trusted list")
	ErrNotGovZone       = errors.New("only domains in the gov.pl zone are allowed")
)

// IsValidationError reports whether err is one of the URL validation
// failures above.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyURL) ||
		errors.Is(err, ErrURLTooLong) ||
		errors.Is(err, ErrSchemeNotAllowed) ||
		errors.Is(err, ErrHostMissing) ||
		errors.Is(err, ErrForbiddenAddress) ||
		errors.Is(err, ErrDomainNotTrusted) ||
		errors.Is(err, ErrNotGovZone)
}

// ErrSessionNotFound is returned when no session exists for a token,
// including sessions already swept by garbage collection.
var ErrSessionNotFound = errors.New("session not found")

// ConflictError is returned when a terminal transition is attempted on a
// session that already reached a terminal state. It carries the state the
// losing caller observed.
type ConflictError struct {
	Status Status
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("session already %s", e.Status)
}
