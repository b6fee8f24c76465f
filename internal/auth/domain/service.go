package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	// Login verifies credentials and opens a session, returning the plaintext
	// session token exactly once.
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Authenticate resolves a presented session token to its account.
	Authenticate(ctx context.Context, token string) (*Session, error)
	// Logout revokes the session behind the presented token.
	Logout(ctx context.Context, token string) error
}

type SessionRepository interface {
	Insert(ctx context.Context, db *gorm.DB, session *Session) error
	FindByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*Session, error)
	Revoke(ctx context.Context, db *gorm.DB, id int64, revokedAt time.Time) error
}

type LoginResult struct {
	Token     string
	AccountID int64
	ExpiresAt time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrSessionExpired     = errors.New("session_expired")
	ErrSessionRevoked     = errors.New("session_revoked")
)
