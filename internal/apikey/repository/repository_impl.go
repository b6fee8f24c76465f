package repository

import (
	"context"
	"errors"
	"time"

	apikeydomain "github.com/reelgate/reelgate/internal/apikey/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() apikeydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, key *apikeydomain.APIKey) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO api_keys (id, account_id, key_hash, key_prefix, name, status, expires_at, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key.ID,
		key.AccountID,
		key.KeyHash,
		key.KeyPrefix,
		key.Name,
		key.Status,
		key.ExpiresAt,
		key.Version,
		key.CreatedAt,
		key.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*apikeydomain.APIKey, error) {
	var key apikeydomain.APIKey
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM api_keys WHERE id = ?`, id).
		First(&key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *repo) ListByAccount(ctx context.Context, db *gorm.DB, accountID int64) ([]apikeydomain.APIKey, error) {
	var keys []apikeydomain.APIKey
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM api_keys WHERE account_id = ? ORDER BY created_at DESC, id DESC`,
		accountID,
	).Scan(&keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status apikeydomain.Status, updatedAt time.Time) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE api_keys SET status = ?, updated_at = ? WHERE id = ?`,
		status, updatedAt, id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apikeydomain.ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	result := db.WithContext(ctx).Exec(`DELETE FROM api_keys WHERE id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apikeydomain.ErrNotFound
	}
	return nil
}
