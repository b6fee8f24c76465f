package repository

import (
	"context"
	"time"

	authdomain "github.com/reelgate/reelgate/internal/auth/domain"
	"gorm.io/gorm"
)

type sessionRepo struct{}

func ProvideSessionRepository() authdomain.SessionRepository {
	return &sessionRepo{}
}

func (r *sessionRepo) Insert(ctx context.Context, db *gorm.DB, session *authdomain.Session) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sessions (id, account_id, token_hash, expires_at, revoked_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.AccountID,
		session.TokenHash,
		session.ExpiresAt,
		session.RevokedAt,
		session.CreatedAt,
	).Error
}

func (r *sessionRepo) FindByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*authdomain.Session, error) {
	var session authdomain.Session
	err := db.WithContext(ctx).Raw(
		`SELECT id, account_id, token_hash, expires_at, revoked_at, created_at
		 FROM sessions WHERE token_hash = ?`,
		tokenHash,
	).Scan(&session).Error
	if err != nil {
		return nil, err
	}
	if session.ID == 0 {
		return nil, nil
	}
	return &session, nil
}

func (r *sessionRepo) Revoke(ctx context.Context, db *gorm.DB, id int64, revokedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`,
		revokedAt,
		id,
	).Error
}
