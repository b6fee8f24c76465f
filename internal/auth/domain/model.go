package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Session is an opaque cookie-backed login session. Only the sha256 of the
// session token is persisted.
type Session struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	AccountID snowflake.ID `gorm:"column:account_id;not null;index:ix_sessions_account_id"`
	TokenHash string       `gorm:"column:token_hash;type:varchar(64);not null;uniqueIndex:ux_sessions_token_hash"`
	ExpiresAt time.Time    `gorm:"not null"`
	RevokedAt *time.Time   `gorm:"column:revoked_at"`
	CreatedAt time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }
