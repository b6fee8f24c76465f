package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service interface {
	// IngestWebhook verifies and applies one provider delivery. Redelivered
	// events are acknowledged without a second credit.
	IngestWebhook(ctx context.Context, provider string, signature string, body []byte) error

	// CreateTopup opens a provider checkout session for the given amount and
	// returns its redirect URL.
	CreateTopup(ctx context.Context, accountID int64, amount decimal.Decimal) (*TopupResponse, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *PaymentEvent) error
	FindByProviderEvent(ctx context.Context, db *gorm.DB, provider, eventID string) (*PaymentEvent, error)
}

// Provider adapts one external payment processor.
type Provider interface {
	Name() string

	// ParseWebhook authenticates a delivery against its signature header and
	// extracts the credit instruction. Events that carry no credit (e.g.
	// subscription lifecycle noise) return (nil, nil).
	ParseWebhook(signature string, body []byte) (*CreditEvent, error)

	// CreateCheckout opens a hosted payment page for the amount.
	CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error)
}

// CreditEvent is a provider-verified instruction to credit an account.
type CreditEvent struct {
	EventID   string
	AccountID int64
	Amount    decimal.Decimal
}

type CheckoutRequest struct {
	AccountID  int64
	Email      string
	Amount     decimal.Decimal
	SuccessURL string
	CancelURL  string
}

type TopupRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type TopupResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

var (
	ErrBadSignature    = errors.New("webhook_signature_invalid")
	ErrUnknownProvider = errors.New("unknown_payment_provider")
	ErrInvalidTopup    = errors.New("invalid_topup_amount")
)
