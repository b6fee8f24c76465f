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
	apikeydomain "github.com/reelgate/reelgate/internal/apikey/domain"
	authdomain "github.com/reelgate/reelgate/internal/auth/domain"
	"github.com/reelgate/reelgate/internal/auth/password"
	"github.com/reelgate/reelgate/internal/clock"
	ledgerdomain "github.com/reelgate/reelgate/internal/ledger/domain"
	ledgerrepo "github.com/reelgate/reelgate/internal/ledger/repository"
	ledgerservice "github.com/reelgate/reelgate/internal/ledger/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAccounts(t *testing.T) (accountdomain.Service, *gorm.DB, *snowflake.Node) {
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

	if err := db.AutoMigrate(&accountdomain.Account{}, &apikeydomain.APIKey{}, &authdomain.Session{}, &ledgerdomain.Transaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	repo := accountrepo.Provide()
	ledger := ledgerservice.New(ledgerservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fake,
		Repo:        ledgerrepo.Provide(),
		AccountRepo: repo,
	})

	service := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fake,
		Repo:   repo,
		Ledger: ledger,
	})
	return service, db, node
}

func TestRegisterNormalizesEmail(t *testing.T) {
	service, db, _ := setupAccounts(t)

	resp, err := service.Register(context.Background(), accountdomain.RegisterRequest{
		Email:    "  Dana@Example.COM ",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.Email != "dana@example.com" {
		t.Fatalf("expected lowercased email, got %q", resp.Email)
	}

	var account accountdomain.Account
	if err := db.Take(&account, "email = ?", "dana@example.com").Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	if account.PasswordHash == "correct horse battery" {
		t.Fatal("password stored in the clear")
	}
	if !password.Verify("correct horse battery", account.PasswordHash) {
		t.Fatal("stored hash does not verify the password")
	}
	if !account.Balance.IsZero() {
		t.Fatalf("new accounts start at zero, got %s", account.Balance)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	service, _, _ := setupAccounts(t)

	req := accountdomain.RegisterRequest{Email: "dana@example.com", Password: "correct horse battery"}
	if _, err := service.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	req.Email = "DANA@example.com"
	if _, err := service.Register(context.Background(), req); !errors.Is(err, accountdomain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	service, _, _ := setupAccounts(t)

	_, err := service.Register(context.Background(), accountdomain.RegisterRequest{Email: "not-an-email", Password: "long enough pass"})
	if !errors.Is(err, accountdomain.ErrInvalidEmail) {
		t.Fatalf("expected invalid email, got %v", err)
	}

	_, err = service.Register(context.Background(), accountdomain.RegisterRequest{Email: "dana@example.com", Password: "short"})
	if !errors.Is(err, accountdomain.ErrInvalidPassword) {
		t.Fatalf("expected invalid password, got %v", err)
	}
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	service, _, _ := setupAccounts(t)

	resp, err := service.Register(context.Background(), accountdomain.RegisterRequest{
		Email:    "dana@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	id, err := snowflake.ParseString(resp.ID)
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}

	err = service.ChangePassword(context.Background(), int64(id), "wrong current", "another long password")
	if !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	if err := service.ChangePassword(context.Background(), int64(id), "correct horse battery", "another long password"); err != nil {
		t.Fatalf("change password: %v", err)
	}
}

func TestAdminUpdateRoutesBalanceThroughLedger(t *testing.T) {
	service, db, _ := setupAccounts(t)

	resp, err := service.Register(context.Background(), accountdomain.RegisterRequest{
		Email:    "dana@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	id, err := snowflake.ParseString(resp.ID)
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}

	delta := decimal.RequireFromString("50.00")
	err = service.AdminUpdate(context.Background(), int64(id), accountdomain.AdminUpdateRequest{
		FirstName:    "Dana",
		BalanceDelta: &delta,
	})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}

	var account accountdomain.Account
	if err := db.Take(&account, "id = ?", int64(id)).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	if !account.Balance.Equal(delta) {
		t.Fatalf("expected balance 50.00, got %s", account.Balance)
	}
	var txns int64
	if err := db.Table("transactions").Count(&txns).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if txns != 1 {
		t.Fatalf("balance adjustment must leave a transaction, found %d", txns)
	}
}

func TestStatsCountsKeys(t *testing.T) {
	service, db, node := setupAccounts(t)

	resp, err := service.Register(context.Background(), accountdomain.RegisterRequest{
		Email:    "dana@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	id, err := snowflake.ParseString(resp.ID)
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}

	for i := 0; i < 3; i++ {
		key := &apikeydomain.APIKey{
			ID:        node.Generate(),
			AccountID: snowflake.ID(id),
			KeyHash:   fmt.Sprintf("hash-%d", i),
			KeyPrefix: "rg_live_test",
			Status:    apikeydomain.StatusActive,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		if err := db.Create(key).Error; err != nil {
			t.Fatalf("seed key: %v", err)
		}
	}

	stats, err := service.Stats(context.Background(), int64(id))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalKeys != 3 {
		t.Fatalf("expected 3 keys, got %d", stats.TotalKeys)
	}
	if stats.Email != "dana@example.com" {
		t.Fatalf("unexpected email %q", stats.Email)
	}
}

func TestRemoveDeletesAccount(t *testing.T) {
	service, db, _ := setupAccounts(t)

	resp, err := service.Register(context.Background(), accountdomain.RegisterRequest{
		Email:    "dana@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	id, err := snowflake.ParseString(resp.ID)
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}

	if err := service.Remove(context.Background(), int64(id)); err != nil {
		t.Fatalf("remove: %v", err)
	}
	var count int64
	if err := db.Table("accounts").Count(&count).Error; err != nil {
		t.Fatalf("count accounts: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected account gone, found %d", count)
	}
}
