package repository

import (
	"context"

	ledgerdomain "github.com/reelgate/reelgate/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ledgerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, txn *ledgerdomain.Transaction) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO transactions (id, account_id, kind, amount, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.AccountID,
		txn.Kind,
		txn.Amount,
		txn.Description,
		txn.CreatedAt,
	).Error
}

func (r *repo) ListByAccount(ctx context.Context, db *gorm.DB, accountID int64) ([]ledgerdomain.Transaction, error) {
	var txns []ledgerdomain.Transaction
	err := db.WithContext(ctx).Raw(
		`SELECT id, account_id, kind, amount, description, created_at
		 FROM transactions WHERE account_id = ? ORDER BY created_at DESC, id DESC`,
		accountID,
	).Scan(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
