package middleware

import (
	"context"
	"net/http"
	"strings"

	h "eventticketing/internal/delivery/http/helpers"
	"eventticketing/internal/domain"
)

type contextKey string

const actorKey contextKey = "actor"

// SetActor returns a context with the authenticated actor set. Used by auth middleware.
func SetActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the authenticated actor from the context, if present.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the actor in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			actor, ok := bearerActor(r, verifier)
			if !ok {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or missing bearer token")
				return
			}
			next(w, r.WithContext(SetActor(r.Context(), actor)))
		}
	}
}

// OptionalAuth sets the actor in the request context when a valid Bearer
// token is present, and calls next either way. Used by endpoints that behave
// differently for elevated callers but stay public.
func OptionalAuth(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if actor, ok := bearerActor(r, verifier); ok {
				r = r.WithContext(SetActor(r.Context(), actor))
			}
			next(w, r)
		}
	}
}

func bearerActor(r *http.Request, verifier domain.TokenVerifier) (domain.Actor, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return domain.Actor{}, false
	}
	token := strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return domain.Actor{}, false
	}
	actor, err := verifier.Verify(token)
	if err != nil {
		return domain.Actor{}, false
	}
	return actor, true
}
