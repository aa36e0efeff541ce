package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/lcalzada-xor/widsview/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/core/ports"
	"github.com/lcalzada-xor/widsview/internal/core/services/auth"
)

// AuthHandler handles the authentication gate endpoints
type AuthHandler struct {
	Service ports.AuthService
	// CookieTTL is the browser lifetime of the session cookie
	CookieTTL time.Duration
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service ports.AuthService) *AuthHandler {
	return &AuthHandler{
		Service:   service,
		CookieTTL: auth.DefaultSessionTTL,
	}
}

// HandleLogin checks credentials and hands out a session cookie
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := decodeBody(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}

	token, err := h.Service.Login(r.Context(), creds)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrRateLimitExceeded):
		writeError(w, http.StatusTooManyRequests, "Too many login attempts")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	default:
		log.Printf("Login failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, "Monitoring view unavailable")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.CookieTTL.Seconds()),
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "logged_in",
		"token":  token,
	})
}

// HandleLogout closes the caller's session. Closing the last one closes the gate.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFromRequest(r); token != "" {
		if err := h.Service.Logout(r.Context(), token); err != nil {
			log.Printf("Logout failed: %v", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:   middleware.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// HandleMe returns the session behind the request
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username":   session.Username,
		"expires_at": session.ExpiresAt,
	})
}
