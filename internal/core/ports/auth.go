package ports

import (
	"context"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
)

// AuthService defines the authentication gate.
type AuthService interface {
	// Login validates credentials and returns a session token.
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	// ValidateToken checks if a token is valid and returns the associated session.
	ValidateToken(ctx context.Context, token string) (*domain.Session, error)
	// Logout invalidates a session token.
	Logout(ctx context.Context, token string) error
	// IsOpen reports whether at least one session holds the gate open.
	IsOpen() bool
}

// SessionListener is told when a session ends, whether by logout, expiry or
// shutdown. It is called once per closed token.
type SessionListener interface {
	OnSessionClosed(token string)
}

// SessionNotifier is an AuthService that announces closed sessions.
type SessionNotifier interface {
	AddSessionListener(l SessionListener)
}
