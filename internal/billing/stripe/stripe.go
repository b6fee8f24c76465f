package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	billingdomain "github.com/reelgate/reelgate/internal/billing/domain"
	"github.com/reelgate/reelgate/internal/clock"
	"github.com/reelgate/reelgate/internal/config"
	"github.com/shopspring/decimal"
)

const (
	apiBaseURL = "https://api.stripe.com/v1"

	// signatureTolerance rejects replayed deliveries with stale timestamps.
	signatureTolerance = 5 * time.Minute

	requestTimeout = 10 * time.Second
)

// creditEventTypes are the delivery types that carry a balance credit.
var creditEventTypes = map[string]bool{
	"checkout.session.completed": true,
}

// Adapter implements billingdomain.Provider against the Stripe HTTP API and
// webhook signature scheme.
type Adapter struct {
	apiKey        string
	webhookSecret string
	clock         clock.Clock
	httpClient    *http.Client
}

func New(cfg config.Config, clk clock.Clock) *Adapter {
	return &Adapter{
		apiKey:        cfg.PaymentAPIKey,
		webhookSecret: cfg.PaymentWebhookSecret,
		clock:         clk,
		httpClient:    &http.Client{Timeout: requestTimeout},
	}
}

func (a *Adapter) Name() string { return "stripe" }

// ParseWebhook checks the Stripe-Signature header (t=<unix>,v1=<hmac>) against
// the raw body and extracts a credit instruction from funded event types.
func (a *Adapter) ParseWebhook(signature string, body []byte) (*billingdomain.CreditEvent, error) {
	timestamp, candidates, err := parseSignatureHeader(signature)
	if err != nil {
		return nil, err
	}

	age := a.clock.Now().Sub(time.Unix(timestamp, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return nil, billingdomain.ErrBadSignature
	}

	expected := computeSignature(a.webhookSecret, timestamp, body)
	if !matchesAny(expected, candidates) {
		return nil, billingdomain.ErrBadSignature
	}

	var event struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				AmountTotal int64  `json:"amount_total"`
				Currency    string `json:"currency"`
				Metadata    struct {
					AccountID string `json:"account_id"`
				} `json:"metadata"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decoding stripe event: %w", err)
	}

	if !creditEventTypes[event.Type] {
		return nil, nil
	}

	accountID, err := strconv.ParseInt(event.Data.Object.Metadata.AccountID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("stripe event %s: bad account metadata: %w", event.ID, err)
	}

	// Stripe reports amounts in the currency's minor unit.
	amount := decimal.New(event.Data.Object.AmountTotal, -2)
	return &billingdomain.CreditEvent{
		EventID:   event.ID,
		AccountID: accountID,
		Amount:    amount,
	}, nil
}

// CreateCheckout opens a hosted one-time payment page and returns its URL.
func (a *Adapter) CreateCheckout(ctx context.Context, req billingdomain.CheckoutRequest) (string, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", req.Email)
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("metadata[account_id]", strconv.FormatInt(req.AccountID, 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", "usd")
	form.Set("line_items[0][price_data][product_data][name]", "Balance top-up")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.Amount.Shift(2).IntPart(), 10))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBaseURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("creating checkout session: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("stripe checkout returned status %d", resp.StatusCode)
	}

	var session struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(payload, &session); err != nil {
		return "", fmt.Errorf("decoding checkout session: %w", err)
	}
	return session.URL, nil
}

func parseSignatureHeader(header string) (int64, []string, error) {
	var timestamp int64
	var candidates []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			parsed, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, billingdomain.ErrBadSignature
			}
			timestamp = parsed
		case "v1":
			candidates = append(candidates, kv[1])
		}
	}

	if timestamp == 0 || len(candidates) == 0 {
		return 0, nil, billingdomain.ErrBadSignature
	}
	return timestamp, candidates, nil
}

func computeSignature(secret string, timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func matchesAny(expected string, candidates []string) bool {
	for _, candidate := range candidates {
		if subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1 {
			return true
		}
	}
	return false
}
