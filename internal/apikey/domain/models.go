package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status gates whether a key participates in authorization at all.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

const (
	// TokenPrefix marks every credential issued by this service.
	TokenPrefix = "rg_live_"

	tokenSecretBytes = 24
	displayPrefixLen = 12
)

// APIKey is an issued credential. The plaintext token is shown once at
// issuance; only its hash and a short display prefix are stored. A nil
// ExpiresAt means the key never expires.
type APIKey struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	AccountID snowflake.ID `gorm:"column:account_id;not null;index:ix_api_keys_account_id"`
	KeyHash   string       `gorm:"column:key_hash;type:varchar(64);not null;uniqueIndex:ux_api_keys_key_hash"`
	KeyPrefix string       `gorm:"column:key_prefix;type:varchar(16);not null"`
	Name      string       `gorm:"type:varchar(255);not null;default:''"`
	Status    Status       `gorm:"type:varchar(16);not null;default:'active'"`
	ExpiresAt *time.Time   `gorm:"column:expires_at"`
	Version   int64        `gorm:"not null;default:0"`
	CreatedAt time.Time    `gorm:"not null"`
	UpdatedAt time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (APIKey) TableName() string { return "api_keys" }

// NewToken generates a fresh plaintext credential.
func NewToken() (string, error) {
	buf := make([]byte, tokenSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return TokenPrefix + hex.EncodeToString(buf), nil
}

// HashToken derives the stored lookup hash from a plaintext token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// DisplayPrefix returns the leading fragment of a token safe to persist and
// show in listings.
func DisplayPrefix(token string) string {
	if len(token) <= displayPrefixLen {
		return token
	}
	return token[:displayPrefixLen]
}
