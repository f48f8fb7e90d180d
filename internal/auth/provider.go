package auth

import "time"

// Provider checks the shared secret and issues and validates the session
// marker handed to the client after a successful login.
type Provider interface {
	Check(password string) bool
	Issue(now time.Time) (string, error)
	// Validate checks token against now rather than the wall clock.
	Validate(token string, now time.Time) error
}
