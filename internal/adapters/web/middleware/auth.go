package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/core/ports"
)

type contextKey string

const (
	SessionContextKey contextKey = "session"

	// CookieName carries the session token for browser clients.
	CookieName = "auth_token"
)

// TokenFromRequest reads the session token from the cookie, falling back to
// a bearer Authorization header for API clients.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// SessionFromContext returns the session stored by AuthMiddleware.
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(SessionContextKey).(*domain.Session)
	return session, ok && session != nil
}

// AuthMiddleware ensures the request has a valid session.
func AuthMiddleware(authService ports.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			session, err := authService.ValidateToken(r.Context(), token)
			if err != nil {
				// Clear cookie if invalid
				http.SetCookie(w, &http.Cookie{
					Name:   CookieName,
					Value:  "",
					Path:   "/",
					MaxAge: -1,
				})
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MountChecker reports whether the monitoring view is live.
type MountChecker interface {
	Mounted() bool
}

// MountedMiddleware answers 503 while the monitoring view is not mounted.
func MountedMiddleware(view MountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !view.Mounted() {
				http.Error(w, "Monitoring view not mounted", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
