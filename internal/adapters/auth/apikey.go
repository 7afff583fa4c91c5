package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"eventticketing/internal/domain"
)

type bcryptAPIKeyVerifier struct {
	hash []byte
}

// NewBcryptAPIKeyVerifier returns an APIKeyVerifier that compares presented
// keys against a bcrypt hash (typically from configuration). An empty hash
// rejects every key, disabling the guarded endpoints.
func NewBcryptAPIKeyVerifier(hash string) domain.APIKeyVerifier {
	return &bcryptAPIKeyVerifier{hash: []byte(hash)}
}

func (v *bcryptAPIKeyVerifier) Verify(key string) error {
	if len(v.hash) == 0 {
		return fmt.Errorf("admin api key is not configured")
	}
	if key == "" {
		return fmt.Errorf("missing api key")
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(key)); err != nil {
		return fmt.Errorf("invalid api key")
	}
	return nil
}
