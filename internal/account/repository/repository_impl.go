package repository

import (
	"context"
	"time"

	accountdomain "github.com/reelgate/reelgate/internal/account/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() accountdomain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, account *accountdomain.Account) error {
	return db.WithContext(ctx).Create(account).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*accountdomain.Account, error) {
	var account accountdomain.Account
	err := db.WithContext(ctx).Where("id = ?", id).Take(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*accountdomain.Account, error) {
	var account accountdomain.Account
	err := db.WithContext(ctx).Where("email = ?", email).Take(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]accountdomain.Account, error) {
	var accounts []accountdomain.Account
	if err := db.WithContext(ctx).Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repo) UpdateProfile(ctx context.Context, db *gorm.DB, account *accountdomain.Account) error {
	return db.WithContext(ctx).Exec(
		`UPDATE accounts
		 SET first_name = ?, last_name = ?, phone = ?, is_admin = ?, telegram_chat_id = ?, payment_customer_id = ?, updated_at = ?
		 WHERE id = ?`,
		account.FirstName,
		account.LastName,
		account.Phone,
		account.IsAdmin,
		account.TelegramChatID,
		account.PaymentCustomerID,
		account.UpdatedAt,
		account.ID,
	).Error
}

func (r *repo) UpdatePassword(ctx context.Context, db *gorm.DB, id int64, passwordHash string, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash,
		updatedAt,
		id,
	).Error
}

func (r *repo) CountKeys(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Table("api_keys").Where("account_id = ?", id).Count(&count).Error
	return count, err
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM api_keys WHERE account_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM sessions WHERE account_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM transactions WHERE account_id = ?`, id).Error; err != nil {
			return err
		}
		return tx.Exec(`DELETE FROM accounts WHERE id = ?`, id).Error
	})
}

func (r *repo) UpdateBalance(ctx context.Context, db *gorm.DB, id int64, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE accounts
		 SET balance = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		balance,
		updatedAt,
		id,
		expectedVersion,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
