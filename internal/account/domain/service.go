package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Response, error)
	GetProfile(ctx context.Context, accountID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, accountID int64, req UpdateProfileRequest) error
	ChangePassword(ctx context.Context, accountID int64, current, next string) error
	LinkTelegram(ctx context.Context, accountID int64, chatID string) error
	Stats(ctx context.Context, accountID int64) (*Stats, error)

	List(ctx context.Context) ([]Response, error)
	AdminUpdate(ctx context.Context, accountID int64, req AdminUpdateRequest) error
	Remove(ctx context.Context, accountID int64) error
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type AdminUpdateRequest struct {
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	Phone          string           `json:"phone"`
	IsAdmin        bool             `json:"is_admin"`
	TelegramChatID *string          `json:"telegram_chat_id"`
	BalanceDelta   *decimal.Decimal `json:"balance_delta"`
	AdjustmentNote string           `json:"adjustment_note"`
}

type Response struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Phone     string          `json:"phone"`
	Balance   decimal.Decimal `json:"balance"`
	IsAdmin   bool            `json:"is_admin"`
	CreatedAt time.Time       `json:"created_at"`
}

type Profile struct {
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Phone          string  `json:"phone"`
	TelegramChatID *string `json:"telegram_chat_id"`
}

type Stats struct {
	Email     string          `json:"email"`
	Balance   decimal.Decimal `json:"balance"`
	TotalKeys int64           `json:"total_keys"`
}

var (
	ErrNotFound        = errors.New("account_not_found")
	ErrEmailTaken      = errors.New("email_taken")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidPassword = errors.New("invalid_password")
	ErrInvalidChatID   = errors.New("invalid_chat_id")
)
