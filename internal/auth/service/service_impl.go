package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/reelgate/reelgate/internal/account/domain"
	authdomain "github.com/reelgate/reelgate/internal/auth/domain"
	"github.com/reelgate/reelgate/internal/auth/password"
	"github.com/reelgate/reelgate/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionTokenBytes = 32
	sessionTTL        = 7 * 24 * time.Hour
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Sessions    authdomain.SessionRepository
	AccountRepo accountdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	sessions    authdomain.SessionRepository
	accountRepo accountdomain.Repository
}

func New(p Params) authdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("auth.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		sessions:    p.Sessions,
		accountRepo: p.AccountRepo,
	}
}

func (s *Service) Login(ctx context.Context, email, rawPassword string) (*authdomain.LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(rawPassword) == "" {
		return nil, authdomain.ErrInvalidCredentials
	}

	account, err := s.accountRepo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	// The response is uniform whether the email is unknown or the password is
	// wrong.
	if account == nil || !password.Verify(rawPassword, account.PasswordHash) {
		return nil, authdomain.ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &authdomain.Session{
		ID:        s.genID.Generate(),
		AccountID: account.ID,
		TokenHash: hashToken(token),
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Insert(ctx, s.db, session); err != nil {
		return nil, err
	}

	s.log.Info("session opened", zap.String("account_id", account.ID.String()))
	return &authdomain.LoginResult{
		Token:     token,
		AccountID: int64(account.ID),
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (*authdomain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, authdomain.ErrInvalidSession
	}

	session, err := s.sessions.FindByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, authdomain.ErrInvalidSession
	}
	if session.RevokedAt != nil {
		return nil, authdomain.ErrSessionRevoked
	}
	if s.clock.Now().After(session.ExpiresAt) {
		return nil, authdomain.ErrSessionExpired
	}
	return session, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	session, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	return s.sessions.Revoke(ctx, s.db, int64(session.ID), s.clock.Now())
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
