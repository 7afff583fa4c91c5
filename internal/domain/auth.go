package domain

import "time"

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user identity.
type TokenVerifier interface {
	Verify(token string) (Actor, error)
}

// APIKeyVerifier checks an administrative API key against a stored hash.
type APIKeyVerifier interface {
	Verify(key string) error
}
