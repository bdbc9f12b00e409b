package auth

import (
	"context"
	"errors"
	"net/http"

	"MiniCatalog/pkg/kit"
)

type ctxKey string

const userKey ctxKey = "user"

// UserFromContext returns the email of the authenticated caller.
func UserFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(userKey).(string)
	return u, ok && u != ""
}

// WithUser is used by Authenticate and by tests that bypass it.
func WithUser(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userKey, email)
}

// Authenticate admits requests carrying a valid bearer token for a user that
// still exists.
func Authenticate(tokens *TokenMaker, users UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "Invalid token", nil)
				return
			}

			claims, err := tokens.Parse(raw)
			if errors.Is(err, ErrTokenExpired) {
				kit.WriteError(w, r, http.StatusUnauthorized, "Token expired!", nil)
				return
			}
			if err != nil || !users.Exists(claims.User) {
				kit.WriteError(w, r, http.StatusUnauthorized, "Invalid token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.User)))
		})
	}
}
