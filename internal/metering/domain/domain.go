package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Record is the consolidated key-plus-account view the gate decides on. It is
// read in a single snapshot; the version fields carry the optimistic-lock
// state of both rows at read time.
type Record struct {
	KeyID          int64
	AccountID      int64
	Email          string
	Balance        decimal.Decimal
	ExpiresAt      *time.Time
	KeyVersion     int64
	AccountVersion int64
}

// Verdict is the allow outcome handed to the protected handler.
type Verdict struct {
	AccountID int64
	Email     string
	Balance   decimal.Decimal
	Renewed   bool
}

// Decision is the evaluator's classification of one request.
type Decision int

const (
	DecisionPass Decision = iota
	DecisionRenew
	DecisionDeny
)

// Evaluate classifies a record against the current time and renewal cost.
// A nil expiry never falls due. The funding threshold is inclusive: a balance
// exactly equal to the cost renews.
func Evaluate(rec *Record, now time.Time, cost decimal.Decimal) Decision {
	if rec.ExpiresAt == nil || rec.ExpiresAt.After(now) {
		return DecisionPass
	}
	if rec.Balance.GreaterThanOrEqual(cost) {
		return DecisionRenew
	}
	return DecisionDeny
}

type Service interface {
	// Authorize resolves the presented token and produces an allow verdict or
	// a typed failure. Renewal, when due, happens inside this call as one
	// atomic unit.
	Authorize(ctx context.Context, token string) (*Verdict, error)
}

type Repository interface {
	// FindKeyWithAccount resolves an active key by token hash, joined to its
	// owning account. Returns (nil, nil) when absent or inactive.
	FindKeyWithAccount(ctx context.Context, db *gorm.DB, tokenHash string) (*Record, error)

	// ExtendExpiry pushes a key's expiry forward guarded by the version
	// column. It reports false when the version check lost the race.
	ExtendExpiry(ctx context.Context, db *gorm.DB, keyID int64, newExpiry time.Time, expectedVersion int64, updatedAt time.Time) (bool, error)
}

var (
	ErrMissingCredential = errors.New("missing_credential")
	ErrInvalidCredential = errors.New("invalid_credential")

	// ErrStore marks any persistence failure during authorization; the gate
	// fails closed on it.
	ErrStore = errors.New("store_error")

	// ErrConflict signals a lost optimistic-lock race inside the renewal
	// unit. It never escapes Authorize; callers see a fresh re-evaluation or,
	// after retries are exhausted, ErrStore.
	ErrConflict = errors.New("renewal_conflict")
)

// InsufficientFundsError rejects an expired key whose balance cannot cover
// the renewal cost. Both figures are surfaced for user-facing messaging.
type InsufficientFundsError struct {
	Balance  decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, required %s", e.Balance.String(), e.Required.String())
}
