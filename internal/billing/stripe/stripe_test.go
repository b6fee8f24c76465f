package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	billingdomain "github.com/reelgate/reelgate/internal/billing/domain"
	"github.com/reelgate/reelgate/internal/clock"
	"github.com/reelgate/reelgate/internal/config"
	"github.com/shopspring/decimal"
)

const testSecret = "whsec_test"

func testAdapter() (*Adapter, *clock.FakeClock) {
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	adapter := New(config.Config{PaymentWebhookSecret: testSecret}, fake)
	return adapter, fake
}

func sign(secret string, timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func checkoutBody(eventID string, accountID int64, cents int64) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"type":"checkout.session.completed","data":{"object":{"amount_total":%d,"currency":"usd","metadata":{"account_id":"%d"}}}}`,
		eventID, cents, accountID,
	))
}

func TestParseWebhookValidSignature(t *testing.T) {
	adapter, fake := testAdapter()
	body := checkoutBody("evt_1", 42, 2550)
	ts := fake.Now().Unix()
	header := fmt.Sprintf("t=%d,v1=%s", ts, sign(testSecret, ts, body))

	credit, err := adapter.ParseWebhook(header, body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if credit == nil {
		t.Fatal("expected credit event")
	}
	if credit.EventID != "evt_1" || credit.AccountID != 42 {
		t.Fatalf("unexpected credit event: %+v", credit)
	}
	if !credit.Amount.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("expected amount 25.50, got %s", credit.Amount)
	}
}

func TestParseWebhookRejectsBadSignature(t *testing.T) {
	adapter, fake := testAdapter()
	body := checkoutBody("evt_2", 42, 1000)
	ts := fake.Now().Unix()
	header := fmt.Sprintf("t=%d,v1=%s", ts, sign("wrong_secret", ts, body))

	if _, err := adapter.ParseWebhook(header, body); !errors.Is(err, billingdomain.ErrBadSignature) {
		t.Fatalf("expected bad signature, got %v", err)
	}
}

func TestParseWebhookRejectsStaleTimestamp(t *testing.T) {
	adapter, fake := testAdapter()
	body := checkoutBody("evt_3", 42, 1000)
	ts := fake.Now().Add(-10 * time.Minute).Unix()
	header := fmt.Sprintf("t=%d,v1=%s", ts, sign(testSecret, ts, body))

	if _, err := adapter.ParseWebhook(header, body); !errors.Is(err, billingdomain.ErrBadSignature) {
		t.Fatalf("expected stale delivery rejected, got %v", err)
	}
}

func TestParseWebhookRejectsMalformedHeader(t *testing.T) {
	adapter, _ := testAdapter()
	body := checkoutBody("evt_4", 42, 1000)

	for _, header := range []string{"", "t=abc,v1=deadbeef", "v1=deadbeef", "t=123"} {
		if _, err := adapter.ParseWebhook(header, body); !errors.Is(err, billingdomain.ErrBadSignature) {
			t.Fatalf("header %q: expected bad signature, got %v", header, err)
		}
	}
}

func TestParseWebhookIgnoresNonCreditEvents(t *testing.T) {
	adapter, fake := testAdapter()
	body := []byte(`{"id":"evt_5","type":"customer.subscription.deleted","data":{"object":{}}}`)
	ts := fake.Now().Unix()
	header := fmt.Sprintf("t=%d,v1=%s", ts, sign(testSecret, ts, body))

	credit, err := adapter.ParseWebhook(header, body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if credit != nil {
		t.Fatalf("expected no credit for lifecycle event, got %+v", credit)
	}
}
