package auth

import (
	"context"
	"net/http"

	"github.com/mosswell/inkwell/internal/models"
)

// contextKey is a custom type for context keys
type contextKey string

// SessionContextKey is the key for storing session claims in context
const SessionContextKey contextKey = "session"

// SessionMiddleware validates the session cookie and injects the claims into
// the request context. A validation failure of any kind is treated as "no
// session" and answered with 401 — it is an authorization gate, not an
// error. Valid tokens older than the refresh interval are transparently
// reissued so an active session never hits the hard expiry.
func SessionMiddleware(sm *SessionManager, cookieConfig CookieConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := GetSessionCookie(r)
			if err != nil || tokenString == "" {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			claims, err := sm.Validate(tokenString)
			if err != nil {
				http.Error(w, "invalid or expired session", http.StatusUnauthorized)
				return
			}

			// Sliding refresh: at most one reissue per refresh interval.
			if sm.NeedsRefresh(claims) {
				user := &models.User{ID: claims.UserID, Email: claims.Email, Role: claims.Role}
				if fresh, err := sm.Issue(user); err == nil {
					SetSessionCookie(w, fresh, cookieConfig)
				}
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole enforces that the session carries the given role. Must run
// after SessionMiddleware.
func RequireRole(role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetSessionFromContext(r)
			if claims == nil {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			if claims.Role != role {
				http.Error(w, "forbidden: insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts session claims from the request context.
func GetSessionFromContext(r *http.Request) *models.SessionClaims {
	claims, ok := r.Context().Value(SessionContextKey).(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
