package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sakif/township/internal/model"
)

// CookieName is the HttpOnly cookie carrying the token.
const CookieName = "token"

// contextKey is an unexported type used for context keys in this package,
// so no other package can read or shadow the value.
type contextKey string

const userKey contextKey = "user"

// SessionSource returns the identity currently logged in on this instance,
// or nil when nobody is. The coordinator implements it.
type SessionSource interface {
	Session(ctx context.Context) (*model.User, error)
}

// RequireAuth enforces authentication on protected routes.
//
// The token is read from the Authorization header ("Bearer <jwt>") or, if
// absent, from the "token" cookie. A token is accepted only if it is valid
// AND its subject is the user currently stored as the session. The session
// record, not the token, supplies the user put into the context.
func RequireAuth(tokens *TokenService, sessions SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := authenticate(r, tokens, sessions)
			if !ok {
				deny(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must be mounted after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok || u.Role != model.RoleAdmin {
			deny(w, http.StatusForbidden, "forbidden", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext returns the authenticated user stored by RequireAuth.
func UserFromContext(ctx context.Context) (model.User, bool) {
	u, ok := ctx.Value(userKey).(model.User)
	return u, ok && u.Username != ""
}

// WithUser returns a context carrying u, as RequireAuth would. Handler
// tests use it to skip token plumbing.
func WithUser(ctx context.Context, u model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// TokenFromRequest extracts the raw token, or "" if there is none.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func authenticate(r *http.Request, tokens *TokenService, sessions SessionSource) (model.User, bool) {
	raw := TokenFromRequest(r)
	if raw == "" {
		return model.User{}, false
	}
	claims, err := tokens.Validate(raw)
	if err != nil {
		return model.User{}, false
	}
	current, err := sessions.Session(r.Context())
	if err != nil || current == nil {
		return model.User{}, false
	}
	if current.Username != claims.Username() || current.Role != claims.Role {
		return model.User{}, false
	}
	return *current, true
}

func deny(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": kind, "message": message})
}
