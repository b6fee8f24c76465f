package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, account *Account) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Account, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Account, error)
	List(ctx context.Context, db *gorm.DB) ([]Account, error)
	UpdateProfile(ctx context.Context, db *gorm.DB, account *Account) error
	UpdatePassword(ctx context.Context, db *gorm.DB, id int64, passwordHash string, updatedAt time.Time) error
	CountKeys(ctx context.Context, db *gorm.DB, id int64) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, id int64) error

	// UpdateBalance performs the optimistic balance write used by every ledger
	// mutation. It reports false when the version check lost the race.
	UpdateBalance(ctx context.Context, db *gorm.DB, id int64, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) (bool, error)
}
