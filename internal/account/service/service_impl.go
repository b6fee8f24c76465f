package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/reelgate/reelgate/internal/account/domain"
	authdomain "github.com/reelgate/reelgate/internal/auth/domain"
	"github.com/reelgate/reelgate/internal/auth/password"
	"github.com/reelgate/reelgate/internal/clock"
	ledgerdomain "github.com/reelgate/reelgate/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   accountdomain.Repository
	Ledger ledgerdomain.Service
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   accountdomain.Repository
	ledger ledgerdomain.Service
}

func New(p Params) accountdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("account.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		ledger: p.Ledger,
	}
}

func (s *Service) Register(ctx context.Context, req accountdomain.RegisterRequest) (*accountdomain.Response, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, accountdomain.ErrInvalidEmail
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, accountdomain.ErrInvalidPassword
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, accountdomain.ErrEmailTaken
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	account := &accountdomain.Account{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, s.db, account); err != nil {
		return nil, err
	}

	s.log.Info("account registered", zap.String("account_id", account.ID.String()))
	resp := toResponse(account)
	return &resp, nil
}

func (s *Service) GetProfile(ctx context.Context, accountID int64) (*accountdomain.Profile, error) {
	account, err := s.mustFind(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &accountdomain.Profile{
		Email:          account.Email,
		FirstName:      account.FirstName,
		LastName:       account.LastName,
		Phone:          account.Phone,
		TelegramChatID: account.TelegramChatID,
	}, nil
}

func (s *Service) UpdateProfile(ctx context.Context, accountID int64, req accountdomain.UpdateProfileRequest) error {
	account, err := s.mustFind(ctx, accountID)
	if err != nil {
		return err
	}

	account.FirstName = strings.TrimSpace(req.FirstName)
	account.LastName = strings.TrimSpace(req.LastName)
	account.Phone = strings.TrimSpace(req.Phone)
	account.UpdatedAt = s.clock.Now()
	return s.repo.UpdateProfile(ctx, s.db, account)
}

func (s *Service) ChangePassword(ctx context.Context, accountID int64, current, next string) error {
	account, err := s.mustFind(ctx, accountID)
	if err != nil {
		return err
	}

	if !password.Verify(current, account.PasswordHash) {
		return authdomain.ErrInvalidCredentials
	}
	if len(strings.TrimSpace(next)) < minPasswordLength {
		return accountdomain.ErrInvalidPassword
	}

	hashed, err := password.Hash(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, s.db, accountID, hashed, s.clock.Now())
}

func (s *Service) LinkTelegram(ctx context.Context, accountID int64, chatID string) error {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return accountdomain.ErrInvalidChatID
	}

	account, err := s.mustFind(ctx, accountID)
	if err != nil {
		return err
	}

	account.TelegramChatID = &chatID
	account.UpdatedAt = s.clock.Now()
	return s.repo.UpdateProfile(ctx, s.db, account)
}

func (s *Service) Stats(ctx context.Context, accountID int64) (*accountdomain.Stats, error) {
	account, err := s.mustFind(ctx, accountID)
	if err != nil {
		return nil, err
	}

	totalKeys, err := s.repo.CountKeys(ctx, s.db, accountID)
	if err != nil {
		return nil, err
	}

	return &accountdomain.Stats{
		Email:     account.Email,
		Balance:   account.Balance,
		TotalKeys: totalKeys,
	}, nil
}

func (s *Service) List(ctx context.Context) ([]accountdomain.Response, error) {
	accounts, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]accountdomain.Response, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, toResponse(&accounts[i]))
	}
	return resp, nil
}

func (s *Service) AdminUpdate(ctx context.Context, accountID int64, req accountdomain.AdminUpdateRequest) error {
	account, err := s.mustFind(ctx, accountID)
	if err != nil {
		return err
	}

	account.FirstName = strings.TrimSpace(req.FirstName)
	account.LastName = strings.TrimSpace(req.LastName)
	account.Phone = strings.TrimSpace(req.Phone)
	account.IsAdmin = req.IsAdmin
	if req.TelegramChatID != nil {
		trimmed := strings.TrimSpace(*req.TelegramChatID)
		if trimmed == "" {
			account.TelegramChatID = nil
		} else {
			account.TelegramChatID = &trimmed
		}
	}
	account.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateProfile(ctx, s.db, account); err != nil {
		return err
	}

	// Balance corrections go through the ledger so every change keeps its
	// paired transaction record.
	if req.BalanceDelta != nil && !req.BalanceDelta.IsZero() {
		note := strings.TrimSpace(req.AdjustmentNote)
		if note == "" {
			note = "admin balance adjustment"
		}
		if req.BalanceDelta.IsPositive() {
			_, err = s.ledger.Credit(ctx, accountID, *req.BalanceDelta, note)
		} else {
			_, err = s.ledger.Debit(ctx, accountID, req.BalanceDelta.Neg(), note)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Remove(ctx context.Context, accountID int64) error {
	account, err := s.mustFind(ctx, accountID)
	if err != nil {
		return err
	}
	s.log.Info("account removed", zap.String("account_id", account.ID.String()))
	return s.repo.Delete(ctx, s.db, accountID)
}

func (s *Service) mustFind(ctx context.Context, accountID int64) (*accountdomain.Account, error) {
	account, err := s.repo.FindByID(ctx, s.db, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, accountdomain.ErrNotFound
	}
	return account, nil
}

func toResponse(account *accountdomain.Account) accountdomain.Response {
	return accountdomain.Response{
		ID:        account.ID.String(),
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Phone:     account.Phone,
		Balance:   account.Balance,
		IsAdmin:   account.IsAdmin,
		CreatedAt: account.CreatedAt,
	}
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
