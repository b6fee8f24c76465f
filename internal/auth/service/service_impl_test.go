package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accountdomain "github.com/reelgate/reelgate/internal/account/domain"
	accountrepo "github.com/reelgate/reelgate/internal/account/repository"
	authdomain "github.com/reelgate/reelgate/internal/auth/domain"
	authrepo "github.com/reelgate/reelgate/internal/auth/repository"
	"github.com/reelgate/reelgate/internal/auth/password"
	"github.com/reelgate/reelgate/internal/clock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type authFixture struct {
	service authdomain.Service
	db      *gorm.DB
	node    *snowflake.Node
	clock   *clock.FakeClock
}

func setupAuth(t *testing.T) *authFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&accountdomain.Account{}, &authdomain.Session{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	service := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fake,
		Sessions:    authrepo.ProvideSessionRepository(),
		AccountRepo: accountrepo.Provide(),
	})
	return &authFixture{service: service, db: db, node: node, clock: fake}
}

func (f *authFixture) seedAccount(t *testing.T, email, rawPassword string) snowflake.ID {
	t.Helper()
	hash, err := password.Hash(rawPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	account := &accountdomain.Account{
		ID:           f.node.Generate(),
		Email:        email,
		PasswordHash: hash,
		Balance:      decimal.Zero,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := f.db.Create(account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account.ID
}

func TestLoginOpensSession(t *testing.T) {
	f := setupAuth(t)
	accountID := f.seedAccount(t, "dana@example.com", "correct horse battery")

	result, err := f.service.Login(context.Background(), "Dana@Example.com ", "correct horse battery")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.AccountID != int64(accountID) {
		t.Fatalf("expected account %d, got %d", accountID, result.AccountID)
	}
	if result.Token == "" {
		t.Fatal("expected a session token")
	}

	session, err := f.service.Authenticate(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if session.AccountID != accountID {
		t.Fatalf("session resolves to wrong account: %d", session.AccountID)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	f := setupAuth(t)
	f.seedAccount(t, "dana@example.com", "correct horse battery")

	_, err := f.service.Login(context.Background(), "dana@example.com", "incorrect horse")
	if !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	f := setupAuth(t)

	_, err := f.service.Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	f := setupAuth(t)

	for _, token := range []string{"", "   ", "deadbeef"} {
		if _, err := f.service.Authenticate(context.Background(), token); !errors.Is(err, authdomain.ErrInvalidSession) {
			t.Fatalf("token %q: expected invalid session, got %v", token, err)
		}
	}
}

func TestAuthenticateRejectsExpiredSession(t *testing.T) {
	f := setupAuth(t)
	f.seedAccount(t, "dana@example.com", "correct horse battery")

	result, err := f.service.Login(context.Background(), "dana@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	f.clock.Advance(sessionTTL + time.Minute)
	if _, err := f.service.Authenticate(context.Background(), result.Token); !errors.Is(err, authdomain.ErrSessionExpired) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	f := setupAuth(t)
	f.seedAccount(t, "dana@example.com", "correct horse battery")

	result, err := f.service.Login(context.Background(), "dana@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := f.service.Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := f.service.Authenticate(context.Background(), result.Token); !errors.Is(err, authdomain.ErrSessionRevoked) {
		t.Fatalf("expected revoked session, got %v", err)
	}
}
