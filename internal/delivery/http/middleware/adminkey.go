package middleware

import (
	"net/http"

	h "eventticketing/internal/delivery/http/helpers"
	"eventticketing/internal/domain"
)

// apiKeyHeader carries the administrative API key.
const apiKeyHeader = "X-API-Key"

// RequireAdminKey returns a wrapper that checks the X-API-Key header against
// the configured admin key hash. On failure it responds with 401 and does
// not call next.
func RequireAdminKey(verifier domain.APIKeyVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if err := verifier.Verify(r.Header.Get(apiKeyHeader)); err != nil {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or missing api key")
				return
			}
			next(w, r)
		}
	}
}
