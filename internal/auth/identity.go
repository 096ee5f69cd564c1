// Package auth resolves who is calling the API and hashes stored credentials.
//
// There is no login: every request is attributed to one configured user id.
// FixedIdentity puts that id into the request context and handlers read it
// back with UserIDFromContext, so swapping in real authentication later
// only means replacing the middleware.
package auth

import (
	"context"
	"net/http"
)

// contextKey is unexported so no other package can read or overwrite the
// caller id stored under it.
type contextKey string

const userIDKey contextKey = "userID"

// FixedIdentity attributes every request to userID.
func FixedIdentity(userID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying the caller id.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the caller id, or (0, false) if none was set.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}
