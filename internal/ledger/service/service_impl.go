package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/reelgate/reelgate/internal/account/domain"
	"github.com/reelgate/reelgate/internal/clock"
	ledgerdomain "github.com/reelgate/reelgate/internal/ledger/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxBalanceAttempts = 3

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        ledgerdomain.Repository
	AccountRepo accountdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        ledgerdomain.Repository
	accountRepo accountdomain.Repository
}

func New(p Params) ledgerdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("ledger.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		accountRepo: p.AccountRepo,
	}
}

func (s *Service) List(ctx context.Context, accountID int64) ([]ledgerdomain.Response, error) {
	txns, err := s.repo.ListByAccount(ctx, s.db, accountID)
	if err != nil {
		return nil, err
	}

	resp := make([]ledgerdomain.Response, 0, len(txns))
	for i := range txns {
		resp = append(resp, ledgerdomain.Response{
			ID:          txns[i].ID.String(),
			Kind:        txns[i].Kind,
			Amount:      txns[i].Amount,
			Description: txns[i].Description,
			CreatedAt:   txns[i].CreatedAt,
		})
	}
	return resp, nil
}

func (s *Service) Credit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*ledgerdomain.Transaction, error) {
	return s.apply(ctx, accountID, ledgerdomain.TransactionKindCredit, amount, description)
}

func (s *Service) Debit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*ledgerdomain.Transaction, error) {
	return s.apply(ctx, accountID, ledgerdomain.TransactionKindDebit, amount, description)
}

func (s *Service) CreditTx(ctx context.Context, tx *gorm.DB, accountID int64, amount decimal.Decimal, description string) (*ledgerdomain.Transaction, error) {
	return s.applyTx(ctx, tx, accountID, ledgerdomain.TransactionKindCredit, amount, description)
}

func (s *Service) DebitTx(ctx context.Context, tx *gorm.DB, accountID int64, amount decimal.Decimal, description string) (*ledgerdomain.Transaction, error) {
	return s.applyTx(ctx, tx, accountID, ledgerdomain.TransactionKindDebit, amount, description)
}

func (s *Service) apply(ctx context.Context, accountID int64, kind ledgerdomain.TransactionKind, amount decimal.Decimal, description string) (*ledgerdomain.Transaction, error) {
	var txn *ledgerdomain.Transaction
	for attempt := 0; attempt < maxBalanceAttempts; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			applied, err := s.applyTx(ctx, tx, accountID, kind, amount, description)
			if err != nil {
				return err
			}
			txn = applied
			return nil
		})
		if err == nil {
			return txn, nil
		}
		if errors.Is(err, ledgerdomain.ErrConflict) {
			continue
		}
		return nil, err
	}
	return nil, ledgerdomain.ErrConflict
}

// applyTx performs one optimistic attempt: re-read the account, write the new
// balance guarded by the version column, and append the transaction record.
func (s *Service) applyTx(ctx context.Context, tx *gorm.DB, accountID int64, kind ledgerdomain.TransactionKind, amount decimal.Decimal, description string) (*ledgerdomain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ledgerdomain.ErrInvalidAmount
	}

	account, err := s.accountRepo.FindByID(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ledgerdomain.ErrAccountNotFound
	}

	newBalance := account.Balance.Add(amount)
	if kind == ledgerdomain.TransactionKindDebit {
		if account.Balance.LessThan(amount) {
			return nil, ledgerdomain.ErrInsufficientFunds
		}
		newBalance = account.Balance.Sub(amount)
	}

	now := s.clock.Now()
	ok, err := s.accountRepo.UpdateBalance(ctx, tx, accountID, newBalance, account.Version, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ledgerdomain.ErrConflict
	}

	txn := &ledgerdomain.Transaction{
		ID:          s.genID.Generate(),
		AccountID:   snowflake.ID(accountID),
		Kind:        kind,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
	}
	if err := s.repo.Insert(ctx, tx, txn); err != nil {
		return nil, err
	}

	s.log.Debug("balance mutated",
		zap.Int64("account_id", accountID),
		zap.String("kind", string(kind)),
		zap.String("amount", amount.String()),
	)
	return txn, nil
}
