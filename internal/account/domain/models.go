package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Account is a prepaid account holder. Balance is the sole source of truth for
// metered spending and only changes through external credits and gate debits.
type Account struct {
	ID                snowflake.ID    `gorm:"primaryKey"`
	Email             string          `gorm:"type:varchar(255);not null;uniqueIndex:ux_accounts_email"`
	PasswordHash      string          `gorm:"column:password_hash;type:text;not null"`
	FirstName         string          `gorm:"type:varchar(255);not null;default:''"`
	LastName          string          `gorm:"type:varchar(255);not null;default:''"`
	Phone             string          `gorm:"type:varchar(64);not null;default:''"`
	Balance           decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	Version           int64           `gorm:"not null;default:0"`
	IsAdmin           bool            `gorm:"column:is_admin;not null;default:false"`
	TelegramChatID    *string         `gorm:"column:telegram_chat_id;type:varchar(64)"`
	PaymentCustomerID *string         `gorm:"column:payment_customer_id;type:varchar(255)"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "accounts" }
