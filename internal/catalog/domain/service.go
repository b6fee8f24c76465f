package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	// Get returns a title with its composed stream URL.
	Get(ctx context.Context, titleID int64) (*Response, error)

	List(ctx context.Context) ([]AdminResponse, error)
	Create(ctx context.Context, req UpsertRequest) (*AdminResponse, error)
	Update(ctx context.Context, titleID int64, req UpsertRequest) error
	Remove(ctx context.Context, titleID int64) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, title *Title) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Title, error)
	List(ctx context.Context, db *gorm.DB) ([]Title, error)
	Update(ctx context.Context, db *gorm.DB, title *Title) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
}

type UpsertRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	StoragePath string `json:"storage_path" binding:"required"`
}

// Response is the API-key-gated lookup payload.
type Response struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StreamURL   string `json:"stream_url"`
}

// AdminResponse exposes the raw storage path for catalog management.
type AdminResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	ErrNotFound = errors.New("title_not_found")

	// ErrStreamConfig means the CDN domain or the title's storage path is
	// missing, so no stream URL can be composed.
	ErrStreamConfig = errors.New("stream_configuration_missing")
)
