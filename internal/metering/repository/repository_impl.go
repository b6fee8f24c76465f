package repository

import (
	"context"
	"errors"
	"time"

	apikeydomain "github.com/reelgate/reelgate/internal/apikey/domain"
	meteringdomain "github.com/reelgate/reelgate/internal/metering/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() meteringdomain.Repository {
	return &repo{}
}

func (r *repo) FindKeyWithAccount(ctx context.Context, db *gorm.DB, tokenHash string) (*meteringdomain.Record, error) {
	var rec meteringdomain.Record
	err := db.WithContext(ctx).Raw(
		`SELECT k.id AS key_id,
		        k.expires_at,
		        k.version AS key_version,
		        a.id AS account_id,
		        a.email,
		        a.balance,
		        a.version AS account_version
		 FROM api_keys k
		 JOIN accounts a ON a.id = k.account_id
		 WHERE k.key_hash = ? AND k.status = ?`,
		tokenHash, apikeydomain.StatusActive,
	).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repo) ExtendExpiry(ctx context.Context, db *gorm.DB, keyID int64, newExpiry time.Time, expectedVersion int64, updatedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE api_keys SET expires_at = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		newExpiry, updatedAt, keyID, expectedVersion,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
