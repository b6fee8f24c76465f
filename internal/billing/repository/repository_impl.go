package repository

import (
	"context"
	"errors"

	billingdomain "github.com/reelgate/reelgate/internal/billing/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() billingdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *billingdomain.PaymentEvent) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payment_events (id, provider, event_id, account_id, amount, payload, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Provider,
		event.EventID,
		event.AccountID,
		event.Amount,
		event.Payload,
		event.ProcessedAt,
	).Error
}

func (r *repo) FindByProviderEvent(ctx context.Context, db *gorm.DB, provider, eventID string) (*billingdomain.PaymentEvent, error) {
	var event billingdomain.PaymentEvent
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM payment_events WHERE provider = ? AND event_id = ?`, provider, eventID).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}
