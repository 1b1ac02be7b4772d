package middleware

import (
	"context"
	"net/http"
	"strings"

	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
)

type contextKey string

const actorKey contextKey = "actor"

// ActorFromContext returns the authenticated user the auth middleware
// stored, or nil outside an authenticated request.
func ActorFromContext(ctx context.Context) *domain.User {
	actor, _ := ctx.Value(actorKey).(*domain.User)
	return actor
}

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// Auth resolves the bearer token to a user and stores it in the request
// context. Requests without a valid token get a 401.
func Auth(auth domain.AuthService, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			actor, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				log.Warn("Token rejected", map[string]interface{}{
					"path":  r.URL.Path,
					"error": err.Error(),
				})
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route on the actor's role. It must run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFromContext(r.Context())
		if actor == nil {
			unauthorized(w)
			return
		}
		if !actor.IsAdmin() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"this action requires administrator privileges"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"message":"authentication required"}`))
}
