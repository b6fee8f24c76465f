package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	// Create issues a new key, charging the issuance cost against the owner's
	// balance in the same atomic unit. The plaintext token is returned exactly
	// once and never stored.
	Create(ctx context.Context, accountID int64, name string) (*CreateResponse, error)
	List(ctx context.Context, accountID int64) ([]Response, error)
	Revoke(ctx context.Context, accountID, keyID int64) error

	SetStatus(ctx context.Context, keyID int64, status Status) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, key *APIKey) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*APIKey, error)
	ListByAccount(ctx context.Context, db *gorm.DB, accountID int64) ([]APIKey, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status Status, updatedAt time.Time) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
}

type CreateResponse struct {
	// Token is the full plaintext credential; callers must store it themselves.
	Token string   `json:"token"`
	Key   Response `json:"key"`
}

type Response struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	KeyPrefix string     `json:"key_prefix"`
	Status    Status     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

var (
	ErrNotFound      = errors.New("api_key_not_found")
	ErrInvalidStatus = errors.New("invalid_api_key_status")
)
