package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/reelgate/reelgate/internal/account/domain"
	apikeydomain "github.com/reelgate/reelgate/internal/apikey/domain"
	"github.com/reelgate/reelgate/internal/clock"
	"github.com/reelgate/reelgate/internal/config"
	ledgerdomain "github.com/reelgate/reelgate/internal/ledger/domain"
	meteringdomain "github.com/reelgate/reelgate/internal/metering/domain"
	"github.com/reelgate/reelgate/internal/observability/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxAuthorizeAttempts bounds re-evaluation when the renewal unit loses an
// optimistic-lock race. Losers normally observe the renewed row on the next
// read and pass without a second debit.
const maxAuthorizeAttempts = 3

const (
	outcomePass    = "pass"
	outcomeRenew   = "renew"
	outcomeDeny    = "deny"
	outcomeInvalid = "invalid"
	outcomeMissing = "missing"
	outcomeError   = "error"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Config      config.Config
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        meteringdomain.Repository
	AccountRepo accountdomain.Repository
	LedgerRepo  ledgerdomain.Repository
	Metrics     *metrics.GateMetrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        meteringdomain.Repository
	accountRepo accountdomain.Repository
	ledgerRepo  ledgerdomain.Repository
	metrics     *metrics.GateMetrics

	renewalCost   decimal.Decimal
	renewalPeriod time.Duration
}

func New(p Params) meteringdomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("metering.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		accountRepo:   p.AccountRepo,
		ledgerRepo:    p.LedgerRepo,
		metrics:       p.Metrics,
		renewalCost:   p.Config.RenewalCost,
		renewalPeriod: time.Duration(p.Config.RenewalPeriodDays) * 24 * time.Hour,
	}
}

func (s *Service) Authorize(ctx context.Context, token string) (*meteringdomain.Verdict, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		s.metrics.RecordVerdict(outcomeMissing)
		return nil, meteringdomain.ErrMissingCredential
	}
	tokenHash := apikeydomain.HashToken(token)

	for attempt := 0; attempt < maxAuthorizeAttempts; attempt++ {
		rec, err := s.repo.FindKeyWithAccount(ctx, s.db, tokenHash)
		if err != nil {
			s.metrics.RecordVerdict(outcomeError)
			return nil, fmt.Errorf("%w: resolving key: %v", meteringdomain.ErrStore, err)
		}
		if rec == nil {
			s.metrics.RecordVerdict(outcomeInvalid)
			return nil, meteringdomain.ErrInvalidCredential
		}

		now := s.clock.Now()
		switch meteringdomain.Evaluate(rec, now, s.renewalCost) {
		case meteringdomain.DecisionPass:
			s.metrics.RecordVerdict(outcomePass)
			return &meteringdomain.Verdict{
				AccountID: rec.AccountID,
				Email:     rec.Email,
				Balance:   rec.Balance,
				Renewed:   false,
			}, nil

		case meteringdomain.DecisionDeny:
			s.metrics.RecordVerdict(outcomeDeny)
			s.log.Info("authorization denied",
				zap.Int64("key_id", rec.KeyID),
				zap.Int64("account_id", rec.AccountID),
				zap.String("balance", rec.Balance.String()),
				zap.String("required", s.renewalCost.String()),
			)
			return nil, &meteringdomain.InsufficientFundsError{
				Balance:  rec.Balance,
				Required: s.renewalCost,
			}

		case meteringdomain.DecisionRenew:
			verdict, err := s.renew(ctx, rec, now)
			if errors.Is(err, meteringdomain.ErrConflict) {
				s.metrics.RecordConflict()
				continue
			}
			if err != nil {
				s.metrics.RecordVerdict(outcomeError)
				return nil, fmt.Errorf("%w: renewing key: %v", meteringdomain.ErrStore, err)
			}
			s.metrics.RecordVerdict(outcomeRenew)
			s.metrics.RecordRenewal()
			return verdict, nil
		}
	}

	// Persistent contention means the snapshot can no longer be trusted;
	// fail closed rather than allow on uncertainty.
	s.metrics.RecordVerdict(outcomeError)
	return nil, fmt.Errorf("%w: renewal contention not resolved after %d attempts", meteringdomain.ErrStore, maxAuthorizeAttempts)
}

// renew runs the atomic unit: debit the account, push the key's expiry
// forward one period from the evaluation time, and append the debit record.
// A lost version check on either row rolls the whole unit back.
func (s *Service) renew(ctx context.Context, rec *meteringdomain.Record, now time.Time) (*meteringdomain.Verdict, error) {
	newBalance := rec.Balance.Sub(s.renewalCost)
	newExpiry := now.Add(s.renewalPeriod)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.accountRepo.UpdateBalance(ctx, tx, rec.AccountID, newBalance, rec.AccountVersion, now)
		if err != nil {
			return err
		}
		if !ok {
			return meteringdomain.ErrConflict
		}

		ok, err = s.repo.ExtendExpiry(ctx, tx, rec.KeyID, newExpiry, rec.KeyVersion, now)
		if err != nil {
			return err
		}
		if !ok {
			return meteringdomain.ErrConflict
		}

		return s.ledgerRepo.Insert(ctx, tx, &ledgerdomain.Transaction{
			ID:          s.genID.Generate(),
			AccountID:   snowflake.ID(rec.AccountID),
			Kind:        ledgerdomain.TransactionKindDebit,
			Amount:      s.renewalCost,
			Description: fmt.Sprintf("api key renewal %d", rec.KeyID),
			CreatedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("api key renewed",
		zap.Int64("key_id", rec.KeyID),
		zap.Int64("account_id", rec.AccountID),
		zap.String("balance", newBalance.String()),
		zap.Time("expires_at", newExpiry),
	)
	return &meteringdomain.Verdict{
		AccountID: rec.AccountID,
		Email:     rec.Email,
		Balance:   newBalance,
		Renewed:   true,
	}, nil
}
