package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// TransactionKind distinguishes balance credits from debits.
type TransactionKind string

const (
	TransactionKindCredit TransactionKind = "credit"
	TransactionKindDebit  TransactionKind = "debit"
)

// Transaction is the append-only audit record for every balance change.
// Rows are never updated or deleted once written.
type Transaction struct {
	ID          snowflake.ID    `gorm:"primaryKey"`
	AccountID   snowflake.ID    `gorm:"column:account_id;not null;index:ix_transactions_account_id"`
	Kind        TransactionKind `gorm:"type:varchar(16);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Description string          `gorm:"type:varchar(512);not null;default:''"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "transactions" }
