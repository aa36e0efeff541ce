package domain

import (
	"errors"
	"time"
)

var (
	ErrEmptyUsername = errors.New("username cannot be empty")
	ErrEmptyPassword = errors.New("password cannot be empty")
)

// Operator is the single account allowed through the authentication gate.
type Operator struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose hash in JSON
	LastLogin    time.Time `json:"last_login"`
}

// UpdateLastLogin refreshes the last login timestamp.
func (o *Operator) UpdateLastLogin() {
	o.LastLogin = time.Now().UTC()
}

// Credentials represents the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate rejects obviously incomplete credentials before any hashing work.
func (c Credentials) Validate() error {
	if c.Username == "" {
		return ErrEmptyUsername
	}
	if c.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}

// Session is an open pass through the authentication gate.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its deadline at now.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
