package middleware

import (
	"context"
	"net/http"
	"strings"

	"cheatsheets/pkg/errors"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

// TokenVerifier resolves a bearer token to a user id
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserIDFromContext returns the user id set by RequireAuthAPI
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID stores a user id the way RequireAuthAPI does
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// RequireAuthAPI rejects requests without a valid bearer token
func RequireAuthAPI(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				errors.WriteJSON(w, errors.ErrNotAuthenticated)
				return
			}

			uid, err := verifier.Verify(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				errors.WriteJSON(w, errors.ErrNotAuthenticated)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
		})
	}
}
