package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentEvent is the webhook idempotency journal. The unique
// (provider, event_id) pair guarantees a delivery credits an account at most
// once no matter how many times the provider retries it.
type PaymentEvent struct {
	ID          snowflake.ID    `gorm:"primaryKey"`
	Provider    string          `gorm:"type:varchar(32);not null;uniqueIndex:ux_payment_events_provider_event,priority:1"`
	EventID     string          `gorm:"column:event_id;type:varchar(255);not null;uniqueIndex:ux_payment_events_provider_event,priority:2"`
	AccountID   snowflake.ID    `gorm:"column:account_id;not null;index:ix_payment_events_account_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Payload     datatypes.JSON  `gorm:"type:json"`
	ProcessedAt time.Time       `gorm:"column:processed_at;not null"`
}

// TableName sets the database table name.
func (PaymentEvent) TableName() string { return "payment_events" }
