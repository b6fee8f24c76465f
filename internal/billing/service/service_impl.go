package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/reelgate/reelgate/internal/account/domain"
	billingdomain "github.com/reelgate/reelgate/internal/billing/domain"
	"github.com/reelgate/reelgate/internal/clock"
	"github.com/reelgate/reelgate/internal/config"
	ledgerdomain "github.com/reelgate/reelgate/internal/ledger/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxIngestAttempts = 3

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Config      config.Config
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        billingdomain.Repository
	AccountRepo accountdomain.Repository
	Ledger      ledgerdomain.Service
	Provider    billingdomain.Provider
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        billingdomain.Repository
	accountRepo accountdomain.Repository
	ledger      ledgerdomain.Service
	provider    billingdomain.Provider
	frontendURL string
}

func New(p Params) billingdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("billing.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		accountRepo: p.AccountRepo,
		ledger:      p.Ledger,
		provider:    p.Provider,
		frontendURL: p.Config.FrontendURL,
	}
}

func (s *Service) IngestWebhook(ctx context.Context, provider string, signature string, body []byte) error {
	if provider != s.provider.Name() {
		return billingdomain.ErrUnknownProvider
	}

	credit, err := s.provider.ParseWebhook(signature, body)
	if err != nil {
		return err
	}
	if credit == nil {
		// Verified but carries no credit; acknowledge and move on.
		return nil
	}

	existing, err := s.repo.FindByProviderEvent(ctx, s.db, provider, credit.EventID)
	if err != nil {
		return err
	}
	if existing != nil {
		s.log.Info("payment event already processed",
			zap.String("provider", provider),
			zap.String("event_id", credit.EventID),
		)
		return nil
	}

	// Journal insert and balance credit commit together; the unique
	// (provider, event_id) index catches concurrent redeliveries the read
	// above missed.
	for attempt := 0; attempt < maxIngestAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			event := &billingdomain.PaymentEvent{
				ID:          s.genID.Generate(),
				Provider:    provider,
				EventID:     credit.EventID,
				AccountID:   snowflake.ID(credit.AccountID),
				Amount:      credit.Amount,
				Payload:     datatypes.JSON(body),
				ProcessedAt: s.clock.Now(),
			}
			if err := s.repo.Insert(ctx, tx, event); err != nil {
				return err
			}

			description := fmt.Sprintf("%s payment %s", provider, credit.EventID)
			_, err := s.ledger.CreditTx(ctx, tx, credit.AccountID, credit.Amount, description)
			return err
		})
		if !errors.Is(err, ledgerdomain.ErrConflict) {
			break
		}
	}
	if err != nil {
		return err
	}

	s.log.Info("payment credited",
		zap.String("provider", provider),
		zap.String("event_id", credit.EventID),
		zap.Int64("account_id", credit.AccountID),
		zap.String("amount", credit.Amount.String()),
	)
	return nil
}

func (s *Service) CreateTopup(ctx context.Context, accountID int64, amount decimal.Decimal) (*billingdomain.TopupResponse, error) {
	if !amount.IsPositive() {
		return nil, billingdomain.ErrInvalidTopup
	}

	account, err := s.accountRepo.FindByID(ctx, s.db, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, accountdomain.ErrNotFound
	}

	checkoutURL, err := s.provider.CreateCheckout(ctx, billingdomain.CheckoutRequest{
		AccountID:  accountID,
		Email:      account.Email,
		Amount:     amount,
		SuccessURL: s.frontendURL + "/dashboard.html?payment=success",
		CancelURL:  s.frontendURL + "/pricing.html?payment=cancel",
	})
	if err != nil {
		return nil, err
	}
	return &billingdomain.TopupResponse{CheckoutURL: checkoutURL}, nil
}
