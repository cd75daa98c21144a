// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/alukyanov/MarketDesk/internal/models"
	"github.com/alukyanov/MarketDesk/internal/session"
)

type ctxKey string

const userKey ctxKey = "user"

// SessionAuth is a middleware that enforces token authentication.
//
// It expects an "Authorization: Bearer <token>" header carrying a token
// minted by the login endpoint. On successful lookup the session's user is
// stored in the request context, so it can be used downstream as the
// authenticated caller.
func SessionAuth(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "no session token provided", http.StatusUnauthorized)
				return
			}
			user, ok := store.Get(token)
			if !ok {
				http.Error(w, "invalid or expired session", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext extracts the authenticated user from the request
// context. Returns nil if not found.
func GetUserFromContext(ctx context.Context) *models.User {
	val := ctx.Value(userKey)
	if u, ok := val.(*models.User); ok {
		return u
	}
	return nil
}

// WithUser returns a copy of ctx carrying user as the authenticated caller.
// Intended for tests and the bootstrap path.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}
