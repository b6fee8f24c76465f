package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accountdomain "github.com/reelgate/reelgate/internal/account/domain"
	accountrepo "github.com/reelgate/reelgate/internal/account/repository"
	apikeydomain "github.com/reelgate/reelgate/internal/apikey/domain"
	"github.com/reelgate/reelgate/internal/clock"
	"github.com/reelgate/reelgate/internal/config"
	ledgerdomain "github.com/reelgate/reelgate/internal/ledger/domain"
	ledgerrepo "github.com/reelgate/reelgate/internal/ledger/repository"
	meteringdomain "github.com/reelgate/reelgate/internal/metering/domain"
	meteringrepo "github.com/reelgate/reelgate/internal/metering/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type gateFixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	clock   *clock.FakeClock
	service meteringdomain.Service
}

func setupGate(t *testing.T) *gateFixture {
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
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error

	if err := db.AutoMigrate(
		&accountdomain.Account{},
		&apikeydomain.APIKey{},
		&ledgerdomain.Transaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	cfg := config.Config{
		RenewalCost:       decimal.RequireFromString("30.00"),
		RenewalPeriodDays: 30,
	}

	service := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		Config:      cfg,
		GenID:       node,
		Clock:       fake,
		Repo:        meteringrepo.Provide(),
		AccountRepo: accountrepo.Provide(),
		LedgerRepo:  ledgerrepo.Provide(),
	})

	return &gateFixture{db: db, node: node, clock: fake, service: service}
}

func (f *gateFixture) seedAccount(t *testing.T, balance string) snowflake.ID {
	t.Helper()
	account := &accountdomain.Account{
		ID:           f.node.Generate(),
		Email:        fmt.Sprintf("%s@example.com", t.Name()),
		PasswordHash: "x",
		Balance:      decimal.RequireFromString(balance),
		CreatedAt:    f.clock.Now(),
		UpdatedAt:    f.clock.Now(),
	}
	if err := f.db.Create(account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account.ID
}

func (f *gateFixture) seedKey(t *testing.T, accountID snowflake.ID, status apikeydomain.Status, expiresAt *time.Time) string {
	t.Helper()
	token, err := apikeydomain.NewToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	key := &apikeydomain.APIKey{
		ID:        f.node.Generate(),
		AccountID: accountID,
		KeyHash:   apikeydomain.HashToken(token),
		KeyPrefix: apikeydomain.DisplayPrefix(token),
		Status:    status,
		ExpiresAt: expiresAt,
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	if err := f.db.Create(key).Error; err != nil {
		t.Fatalf("seed key: %v", err)
	}
	return token
}

func (f *gateFixture) accountState(t *testing.T, accountID snowflake.ID) (decimal.Decimal, int64) {
	t.Helper()
	var account accountdomain.Account
	if err := f.db.Take(&account, "id = ?", accountID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	var txns int64
	if err := f.db.Model(&ledgerdomain.Transaction{}).Where("account_id = ?", accountID).Count(&txns).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return account.Balance, txns
}

func (f *gateFixture) keyExpiry(t *testing.T, token string) *time.Time {
	t.Helper()
	var key apikeydomain.APIKey
	if err := f.db.Take(&key, "key_hash = ?", apikeydomain.HashToken(token)).Error; err != nil {
		t.Fatalf("load key: %v", err)
	}
	return key.ExpiresAt
}

func timePtr(t time.Time) *time.Time { return &t }

func TestAuthorizeMissingCredential(t *testing.T) {
	f := setupGate(t)

	_, err := f.service.Authorize(context.Background(), "  ")
	if !errors.Is(err, meteringdomain.ErrMissingCredential) {
		t.Fatalf("expected missing credential, got %v", err)
	}
}

func TestAuthorizeUnknownToken(t *testing.T) {
	f := setupGate(t)

	_, err := f.service.Authorize(context.Background(), "rg_live_deadbeef")
	if !errors.Is(err, meteringdomain.ErrInvalidCredential) {
		t.Fatalf("expected invalid credential, got %v", err)
	}
}

func TestAuthorizeInactiveKey(t *testing.T) {
	f := setupGate(t)
	accountID := f.seedAccount(t, "100.00")
	token := f.seedKey(t, accountID, apikeydomain.StatusInactive, timePtr(f.clock.Now().Add(time.Hour)))

	_, err := f.service.Authorize(context.Background(), token)
	if !errors.Is(err, meteringdomain.ErrInvalidCredential) {
		t.Fatalf("expected invalid credential for inactive key, got %v", err)
	}
}

func TestAuthorizeNilExpiryAlwaysPasses(t *testing.T) {
	f := setupGate(t)
	accountID := f.seedAccount(t, "0")
	token := f.seedKey(t, accountID, apikeydomain.StatusActive, nil)

	verdict, err := f.service.Authorize(context.Background(), token)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if verdict.Renewed {
		t.Fatal("expected no renewal for never-expiring key")
	}
	if _, txns := f.accountState(t, accountID); txns != 0 {
		t.Fatalf("expected no transactions, got %d", txns)
	}
}

func TestAuthorizeFutureExpiryNoMutation(t *testing.T) {
	f := setupGate(t)
	accountID := f.seedAccount(t, "50.00")
	expiry := f.clock.Now().Add(time.Hour)
	token := f.seedKey(t, accountID, apikeydomain.StatusActive, timePtr(expiry))

	verdict, err := f.service.Authorize(context.Background(), token)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if verdict.Renewed {
		t.Fatal("expected pass without renewal")
	}
	if !verdict.Balance.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("expected balance 50.00 in verdict, got %s", verdict.Balance)
	}

	balance, txns := f.accountState(t, accountID)
	if !balance.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("balance changed on pass: %s", balance)
	}
	if txns != 0 {
		t.Fatalf("expected no transactions, got %d", txns)
	}
	if got := f.keyExpiry(t, token); !got.Equal(expiry) {
		t.Fatalf("key expiry changed on pass: %v", got)
	}
}

func TestAuthorizeRenewsExpiredFundedKey(t *testing.T) {
	f := setupGate(t)
	accountID := f.seedAccount(t, "100.00")
	token := f.seedKey(t, accountID, apikeydomain.StatusActive, timePtr(f.clock.Now().Add(-time.Hour)))

	verdict, err := f.service.Authorize(context.Background(), token)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !verdict.Renewed {
		t.Fatal("expected renewal")
	}
	if !verdict.Balance.Equal(decimal.RequireFromString("70.00")) {
		t.Fatalf("expected verdict balance 70.00, got %s", verdict.Balance)
	}

	balance, txns := f.accountState(t, accountID)
	if !balance.Equal(decimal.RequireFromString("70.00")) {
		t.Fatalf("expected stored balance 70.00, got %s", balance)
	}
	if txns != 1 {
		t.Fatalf("expected exactly one debit transaction, got %d", txns)
	}

	var txn ledgerdomain.Transaction
	if err := f.db.Take(&txn, "account_id = ?", accountID).Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if txn.Kind != ledgerdomain.TransactionKindDebit {
		t.Fatalf("expected debit transaction, got %s", txn.Kind)
	}
	if !txn.Amount.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("expected debit amount 30.00, got %s", txn.Amount)
	}

	wantExpiry := f.clock.Now().Add(30 * 24 * time.Hour)
	if got := f.keyExpiry(t, token); !got.Equal(wantExpiry) {
		t.Fatalf("expected expiry %v, got %v", wantExpiry, got)
	}
}

func TestAuthorizeExactBalanceRenews(t *testing.T) {
	f := setupGate(t)
	accountID := f.seedAccount(t, "30.00")
	token := f.seedKey(t, accountID, apikeydomain.StatusActive, timePtr(f.clock.Now().Add(-time.Minute)))

	verdict, err := f.service.Authorize(context.Background(), token)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !verdict.Renewed {
		t.Fatal("expected renewal at inclusive threshold")
	}

	balance, txns := f.accountState(t, accountID)
	if !balance.Equal(decimal.Zero) {
		t.Fatalf("expected zero balance, got %s", balance)
	}
	if txns != 1 {
		t.Fatalf("expected one transaction, got %d", txns)
	}
}

func TestAuthorizeDeniesUnderfundedKey(t *testing.T) {
	f := setupGate(t)
	accountID := f.seedAccount(t, "29.99")
	expiry := f.clock.Now().Add(-time.Minute)
	token := f.seedKey(t, accountID, apikeydomain.StatusActive, timePtr(expiry))

	_, err := f.service.Authorize(context.Background(), token)
	var insufficient *meteringdomain.InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if insufficient.Balance.String() != "29.99" {
		t.Fatalf("expected reported balance 29.99, got %s", insufficient.Balance)
	}
	if !insufficient.Required.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("expected required cost 30.00, got %s", insufficient.Required)
	}

	balance, txns := f.accountState(t, accountID)
	if !balance.Equal(decimal.RequireFromString("29.99")) {
		t.Fatalf("balance changed on deny: %s", balance)
	}
	if txns != 0 {
		t.Fatalf("expected no transactions on deny, got %d", txns)
	}
	if got := f.keyExpiry(t, token); !got.Equal(expiry) {
		t.Fatalf("expiry changed on deny: %v", got)
	}
}

func TestAuthorizeRenewalHappensOnce(t *testing.T) {
	f := setupGate(t)
	accountID := f.seedAccount(t, "100.00")
	token := f.seedKey(t, accountID, apikeydomain.StatusActive, timePtr(f.clock.Now().Add(-time.Hour)))

	first, err := f.service.Authorize(context.Background(), token)
	if err != nil {
		t.Fatalf("first authorize: %v", err)
	}
	if !first.Renewed {
		t.Fatal("expected first call to renew")
	}

	second, err := f.service.Authorize(context.Background(), token)
	if err != nil {
		t.Fatalf("second authorize: %v", err)
	}
	if second.Renewed {
		t.Fatal("expected second call to pass without renewal")
	}

	balance, txns := f.accountState(t, accountID)
	if !balance.Equal(decimal.RequireFromString("70.00")) {
		t.Fatalf("expected single debit, balance %s", balance)
	}
	if txns != 1 {
		t.Fatalf("expected one transaction, got %d", txns)
	}
}

func TestAuthorizeConcurrentSingleRenewal(t *testing.T) {
	f := setupGate(t)
	// Enough for exactly one renewal: C <= balance < 2C.
	accountID := f.seedAccount(t, "45.00")
	token := f.seedKey(t, accountID, apikeydomain.StatusActive, timePtr(f.clock.Now().Add(-time.Hour)))

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan *meteringdomain.Verdict, callers)
	failures := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			verdict, err := f.service.Authorize(context.Background(), token)
			if err != nil {
				failures <- err
				return
			}
			results <- verdict
		}()
	}
	wg.Wait()
	close(results)
	close(failures)

	var renewed int
	for verdict := range results {
		if verdict.Renewed {
			renewed++
		}
	}
	if renewed != 1 {
		t.Fatalf("expected exactly one renewal across concurrent callers, got %d", renewed)
	}

	// Losers either saw the renewed key (pass) or a consistent deny; nothing
	// else is acceptable.
	for err := range failures {
		var insufficient *meteringdomain.InsufficientFundsError
		if !errors.As(err, &insufficient) {
			t.Fatalf("unexpected failure from concurrent caller: %v", err)
		}
	}

	balance, txns := f.accountState(t, accountID)
	if !balance.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("expected one debit leaving 15.00, got %s", balance)
	}
	if txns != 1 {
		t.Fatalf("expected one debit transaction, got %d", txns)
	}
}
