package domain

import (
	"errors"
	"time"
)

// ErrInvalidToken is returned by TokenVerifier for missing, malformed, or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer issues bearer tokens (e.g. JWT) for an operator subject.
type TokenIssuer interface {
	Issue(subject string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated subject.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}
