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
	"github.com/reelgate/reelgate/internal/clock"
	ledgerdomain "github.com/reelgate/reelgate/internal/ledger/domain"
	ledgerrepo "github.com/reelgate/reelgate/internal/ledger/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupLedger(t *testing.T) (ledgerdomain.Service, *gorm.DB, *snowflake.Node) {
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

	if err := db.AutoMigrate(&accountdomain.Account{}, &ledgerdomain.Transaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	service := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:        ledgerrepo.Provide(),
		AccountRepo: accountrepo.Provide(),
	})
	return service, db, node
}

func seedLedgerAccount(t *testing.T, db *gorm.DB, node *snowflake.Node, balance string) snowflake.ID {
	t.Helper()
	account := &accountdomain.Account{
		ID:           node.Generate(),
		Email:        fmt.Sprintf("%s@example.com", t.Name()),
		PasswordHash: "x",
		Balance:      decimal.RequireFromString(balance),
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account.ID
}

func TestCreditAppendsTransaction(t *testing.T) {
	service, db, node := setupLedger(t)
	accountID := seedLedgerAccount(t, db, node, "10.00")

	txn, err := service.Credit(context.Background(), int64(accountID), decimal.RequireFromString("25.50"), "stripe payment evt_1")
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if txn.Kind != ledgerdomain.TransactionKindCredit {
		t.Fatalf("expected credit record, got %s", txn.Kind)
	}

	var account accountdomain.Account
	if err := db.Take(&account, "id = ?", accountID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	if !account.Balance.Equal(decimal.RequireFromString("35.50")) {
		t.Fatalf("expected balance 35.50, got %s", account.Balance)
	}
	if account.Version != 1 {
		t.Fatalf("expected version bump, got %d", account.Version)
	}
}

func TestDebitRejectsOverdraw(t *testing.T) {
	service, db, node := setupLedger(t)
	accountID := seedLedgerAccount(t, db, node, "10.00")

	_, err := service.Debit(context.Background(), int64(accountID), decimal.RequireFromString("10.01"), "overdraw")
	if !errors.Is(err, ledgerdomain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	var count int64
	if err := db.Model(&ledgerdomain.Transaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no transaction on failed debit, got %d", count)
	}
}

func TestDebitAllowsExactBalance(t *testing.T) {
	service, db, node := setupLedger(t)
	accountID := seedLedgerAccount(t, db, node, "10.00")

	if _, err := service.Debit(context.Background(), int64(accountID), decimal.RequireFromString("10.00"), "drain"); err != nil {
		t.Fatalf("debit: %v", err)
	}

	var account accountdomain.Account
	if err := db.Take(&account, "id = ?", accountID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	if !account.Balance.Equal(decimal.Zero) {
		t.Fatalf("expected zero balance, got %s", account.Balance)
	}
}

func TestApplyRejectsNonPositiveAmounts(t *testing.T) {
	service, db, node := setupLedger(t)
	accountID := seedLedgerAccount(t, db, node, "10.00")

	for _, amount := range []string{"0", "-1.00"} {
		if _, err := service.Credit(context.Background(), int64(accountID), decimal.RequireFromString(amount), "bad"); !errors.Is(err, ledgerdomain.ErrInvalidAmount) {
			t.Fatalf("credit %s: expected invalid amount, got %v", amount, err)
		}
	}
}

func TestCreditUnknownAccount(t *testing.T) {
	service, _, _ := setupLedger(t)

	_, err := service.Credit(context.Background(), 424242, decimal.RequireFromString("1.00"), "ghost")
	if !errors.Is(err, ledgerdomain.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	service, db, node := setupLedger(t)
	accountID := seedLedgerAccount(t, db, node, "50.00")

	if _, err := service.Credit(context.Background(), int64(accountID), decimal.RequireFromString("5.00"), "first"); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := service.Debit(context.Background(), int64(accountID), decimal.RequireFromString("2.00"), "second"); err != nil {
		t.Fatalf("debit: %v", err)
	}

	txns, err := service.List(context.Background(), int64(accountID))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	if txns[0].Kind != ledgerdomain.TransactionKindDebit || txns[0].Description != "second" {
		t.Fatalf("expected newest-first ordering, first entry %s %q", txns[0].Kind, txns[0].Description)
	}
}
