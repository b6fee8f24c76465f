package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	apikeydomain "github.com/reelgate/reelgate/internal/apikey/domain"
	"github.com/reelgate/reelgate/internal/clock"
	"github.com/reelgate/reelgate/internal/config"
	ledgerdomain "github.com/reelgate/reelgate/internal/ledger/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxIssueAttempts bounds retries when the issuance debit loses an optimistic
// balance race against a concurrent writer.
const maxIssueAttempts = 3

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Config config.Config
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   apikeydomain.Repository
	Ledger ledgerdomain.Service
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   apikeydomain.Repository
	ledger ledgerdomain.Service

	issueCost  decimal.Decimal
	periodDays int
}

func New(p Params) apikeydomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("apikey.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		ledger:     p.Ledger,
		issueCost:  p.Config.RenewalCost,
		periodDays: p.Config.RenewalPeriodDays,
	}
}

func (s *Service) Create(ctx context.Context, accountID int64, name string) (*apikeydomain.CreateResponse, error) {
	token, err := apikeydomain.NewToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	expiresAt := now.AddDate(0, 0, s.periodDays)
	key := &apikeydomain.APIKey{
		ID:        s.genID.Generate(),
		AccountID: snowflake.ID(accountID),
		KeyHash:   apikeydomain.HashToken(token),
		KeyPrefix: apikeydomain.DisplayPrefix(token),
		Name:      strings.TrimSpace(name),
		Status:    apikeydomain.StatusActive,
		ExpiresAt: &expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	description := fmt.Sprintf("api key issuance %s", key.KeyPrefix)
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.repo.Insert(ctx, tx, key); err != nil {
				return err
			}
			_, err := s.ledger.DebitTx(ctx, tx, accountID, s.issueCost, description)
			return err
		})
		if !errors.Is(err, ledgerdomain.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("api key issued",
		zap.String("account_id", key.AccountID.String()),
		zap.String("key_id", key.ID.String()),
		zap.String("key_prefix", key.KeyPrefix),
	)
	return &apikeydomain.CreateResponse{
		Token: token,
		Key:   toResponse(key),
	}, nil
}

func (s *Service) List(ctx context.Context, accountID int64) ([]apikeydomain.Response, error) {
	keys, err := s.repo.ListByAccount(ctx, s.db, accountID)
	if err != nil {
		return nil, err
	}

	resp := make([]apikeydomain.Response, 0, len(keys))
	for i := range keys {
		resp = append(resp, toResponse(&keys[i]))
	}
	return resp, nil
}

func (s *Service) Revoke(ctx context.Context, accountID, keyID int64) error {
	key, err := s.repo.FindByID(ctx, s.db, keyID)
	if err != nil {
		return err
	}
	if key == nil || int64(key.AccountID) != accountID {
		return apikeydomain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, keyID); err != nil {
		return err
	}
	s.log.Info("api key revoked",
		zap.String("account_id", key.AccountID.String()),
		zap.String("key_id", key.ID.String()),
	)
	return nil
}

func (s *Service) SetStatus(ctx context.Context, keyID int64, status apikeydomain.Status) error {
	if status != apikeydomain.StatusActive && status != apikeydomain.StatusInactive {
		return apikeydomain.ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, s.db, keyID, status, s.clock.Now())
}

func toResponse(key *apikeydomain.APIKey) apikeydomain.Response {
	return apikeydomain.Response{
		ID:        key.ID.String(),
		Name:      key.Name,
		KeyPrefix: key.KeyPrefix,
		Status:    key.Status,
		ExpiresAt: key.ExpiresAt,
		CreatedAt: key.CreatedAt,
	}
}
