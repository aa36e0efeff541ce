package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/core/ports"
	"github.com/lcalzada-xor/widsview/internal/telemetry"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrInvalidSession     = errors.New("invalid session")
)

const (
	DefaultUsername      = "admin"
	DefaultPassword      = "admin"
	DefaultSessionTTL    = 24 * time.Hour
	DefaultLockoutWindow = 15 * time.Minute
	maxLoginAttempts     = 5
)

// failedLogins counts consecutive failures for one username.
type failedLogins struct {
	count int
	last  time.Time
}

// AuthService implements ports.AuthService for a single static operator.
// The gate is open while at least one session is live: its listeners are
// mounted when the first session opens and torn down when the last closes.
type AuthService struct {
	operator      domain.Operator
	sessions      map[string]domain.Session
	loginAttempts map[string]failedLogins
	mu            sync.RWMutex

	// gate serialises open/close transitions and listener callbacks
	gate             sync.Mutex
	listeners        []ports.GateListener
	sessionListeners []ports.SessionListener

	sessionTTL    time.Duration
	lockoutWindow time.Duration
	hashCost      int
	now           func() time.Time
}

// Option configures an AuthService.
type Option func(*AuthService)

// WithSessionTTL sets how long a session stays valid.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *AuthService) { s.sessionTTL = ttl }
}

// WithLockoutWindow sets how long a username stays locked after too many
// failures. The window restarts with every failure.
func WithLockoutWindow(d time.Duration) Option {
	return func(s *AuthService) { s.lockoutWindow = d }
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// WithHashCost sets the bcrypt cost used to hash the operator password.
func WithHashCost(cost int) Option {
	return func(s *AuthService) { s.hashCost = cost }
}

// WithGateListener registers a listener mounted while the gate is open.
func WithGateListener(l ports.GateListener) Option {
	return func(s *AuthService) { s.listeners = append(s.listeners, l) }
}

// AddSessionListener registers a listener told about every closed session.
func (s *AuthService) AddSessionListener(l ports.SessionListener) {
	s.gate.Lock()
	defer s.gate.Unlock()
	s.sessionListeners = append(s.sessionListeners, l)
}

// NewAuthService creates the gate for the given operator credentials. The
// password is kept only as a bcrypt hash.
func NewAuthService(username, password string, opts ...Option) (*AuthService, error) {
	if err := (domain.Credentials{Username: username, Password: password}).Validate(); err != nil {
		return nil, err
	}

	s := &AuthService{
		sessions:      make(map[string]domain.Session),
		loginAttempts: make(map[string]failedLogins),
		sessionTTL:    DefaultSessionTTL,
		lockoutWindow: DefaultLockoutWindow,
		hashCost:      bcrypt.DefaultCost,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}
	s.operator = domain.Operator{Username: username, PasswordHash: hash}
	return s, nil
}

// Login validates credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	if err := s.checkRateLimit(creds.Username); err != nil {
		telemetry.LoginAttempts.WithLabelValues("rate_limited").Inc()
		return "", err
	}

	if err := s.verify(creds); err != nil {
		s.incrementAttempts(creds.Username)
		telemetry.LoginAttempts.WithLabelValues("failure").Inc()
		return "", ErrInvalidCredentials
	}

	s.resetAttempts(creds.Username)
	telemetry.LoginAttempts.WithLabelValues("success").Inc()

	return s.openSession(ctx)
}

// ValidateToken verifies a session token. Expired sessions are closed.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if session.Expired(s.now()) {
		s.closeSessions(token)
		return nil, ErrTokenExpired
	}

	return &session, nil
}

// Logout invalidates a session token. Closing the last session closes the gate.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	s.closeSessions(token)
	return nil
}

// IsOpen reports whether at least one session is live.
func (s *AuthService) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions) > 0
}

// Sweep closes every expired session and returns how many were closed.
func (s *AuthService) Sweep() int {
	now := s.now()
	s.mu.RLock()
	var expired []string
	for token, session := range s.sessions {
		if session.Expired(now) {
			expired = append(expired, token)
		}
	}
	s.mu.RUnlock()

	if len(expired) > 0 {
		s.closeSessions(expired...)
	}
	return len(expired)
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (s *AuthService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("Expired sessions closed", "count", n)
			}
		}
	}
}

// Close ends every session and tears down the gate listeners.
func (s *AuthService) Close() {
	s.mu.RLock()
	tokens := make([]string, 0, len(s.sessions))
	for token := range s.sessions {
		tokens = append(tokens, token)
	}
	s.mu.RUnlock()

	s.closeSessions(tokens...)
}

// Private helpers

func (s *AuthService) verify(creds domain.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(creds.Username), []byte(s.operator.Username)) != 1 {
		return ErrInvalidCredentials
	}
	return s.verifyPassword(s.operator.PasswordHash, creds.Password)
}

func (s *AuthService) checkRateLimit(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	failed, ok := s.loginAttempts[username]
	if !ok {
		return nil
	}
	if s.lockoutExpired(failed) {
		delete(s.loginAttempts, username)
		return nil
	}
	if failed.count >= maxLoginAttempts {
		return ErrRateLimitExceeded
	}
	return nil
}

func (s *AuthService) incrementAttempts(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	failed := s.loginAttempts[username]
	if s.lockoutExpired(failed) {
		failed = failedLogins{}
	}
	failed.count++
	failed.last = s.now()
	s.loginAttempts[username] = failed
}

// lockoutExpired must be called with mu held.
func (s *AuthService) lockoutExpired(failed failedLogins) bool {
	return failed.count > 0 && s.now().Sub(failed.last) >= s.lockoutWindow
}

func (s *AuthService) resetAttempts(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.loginAttempts, username)
}

func (s *AuthService) verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) openSession(ctx context.Context) (string, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	token := uuid.New().String()

	s.mu.Lock()
	wasOpen := len(s.sessions) > 0
	s.sessions[token] = domain.Session{
		Token:     token,
		Username:  s.operator.Username,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	s.operator.UpdateLastLogin()
	s.mu.Unlock()

	if wasOpen {
		return token, nil
	}

	slog.Info("Gate opened", "user", s.operator.Username)
	for i, l := range s.listeners {
		if err := l.Mount(ctx); err != nil {
			// roll back so the gate stays closed
			for j := i - 1; j >= 0; j-- {
				s.listeners[j].Teardown()
			}
			s.mu.Lock()
			delete(s.sessions, token)
			s.mu.Unlock()
			return "", fmt.Errorf("open gate: %w", err)
		}
	}
	return token, nil
}

func (s *AuthService) closeSessions(tokens ...string) {
	s.gate.Lock()
	defer s.gate.Unlock()

	s.mu.Lock()
	var removed []string
	for _, token := range tokens {
		if _, ok := s.sessions[token]; ok {
			delete(s.sessions, token)
			removed = append(removed, token)
		}
	}
	closed := len(removed) > 0 && len(s.sessions) == 0
	s.mu.Unlock()

	// session listeners run before the gate listeners tear down
	for _, token := range removed {
		for _, l := range s.sessionListeners {
			l.OnSessionClosed(token)
		}
	}

	if !closed {
		return
	}

	slog.Info("Gate closed")
	for i := len(s.listeners) - 1; i >= 0; i-- {
		s.listeners[i].Teardown()
	}
}
