package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service interface {
	List(ctx context.Context, accountID int64) ([]Response, error)

	// Credit and Debit apply a balance change and its paired transaction record
	// in one atomic unit, retrying optimistic-lock conflicts internally.
	Credit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*Transaction, error)
	Debit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*Transaction, error)

	// CreditTx and DebitTx apply a single attempt inside the caller's
	// transaction so callers can bundle further writes into the same unit.
	// They return ErrConflict when the optimistic version check loses the race.
	CreditTx(ctx context.Context, tx *gorm.DB, accountID int64, amount decimal.Decimal, description string) (*Transaction, error)
	DebitTx(ctx context.Context, tx *gorm.DB, accountID int64, amount decimal.Decimal, description string) (*Transaction, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, txn *Transaction) error
	ListByAccount(ctx context.Context, db *gorm.DB, accountID int64) ([]Transaction, error)
}

type Response struct {
	ID          string          `json:"id"`
	Kind        TransactionKind `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

var (
	ErrAccountNotFound   = errors.New("ledger_account_not_found")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrConflict          = errors.New("balance_version_conflict")
)
