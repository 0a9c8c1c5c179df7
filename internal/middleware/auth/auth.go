// Package auth is the identity boundary of the HTTP API: an optional static
// bearer token plus propagation of the caller identity header into the
// request context.
package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
)

// ContextKey type for context keys
type ContextKey string

// UserKey is the context key for the caller identity.
const UserKey ContextKey = "user"

// userHeader names the caller for audit logging. The value is recorded
// as-is; the bearer token is what actually authenticates the request.
const userHeader = "X-User"

// Middleware enforces the bearer token and records the caller identity.
type Middleware struct {
	token  string
	exempt map[string]struct{}
}

// NewMiddleware creates an auth middleware. An empty token disables the
// check entirely; exempt paths (health probes) always pass.
func NewMiddleware(token string, exemptPaths ...string) *Middleware {
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = struct{}{}
	}
	return &Middleware{token: token, exempt: exempt}
}

// Middleware returns the HTTP middleware function
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := r.Header.Get(userHeader); user != "" {
			r = r.WithContext(context.WithValue(r.Context(), UserKey, user))
		}

		if _, ok := m.exempt[r.URL.Path]; ok || m.token == "" {
			next.ServeHTTP(w, r)
			return
		}

		if !m.authorized(r) {
			slog.WarnContext(r.Context(), "Rejected unauthorized request",
				"method", r.Method,
				"path", r.URL.Path)
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) authorized(r *http.Request) bool {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(m.token)) == 1
}

// User extracts the caller identity from the request context. Empty when the
// request carried no identity header.
func User(ctx context.Context) string {
	if user, ok := ctx.Value(UserKey).(string); ok {
		return user
	}
	return ""
}
