package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnPath is where the redirect gateway sends the driver back
const ReturnPath = "/api/v1/collections/payments/return"

type initiateRequest struct {
	PayerID     string          `json:"payer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	ReturnURL   string          `json:"return_url"`
}

type initiateResponse struct {
	RedirectURL string `json:"redirect_url"`
	CheckoutURL string `json:"checkout_url"`
}

// RedirectGateway collects a batch on a gateway-hosted page in the converted currency
type RedirectGateway struct {
	baseURL       string
	publicBaseURL string
	store         PendingStore
	ttl           time.Duration
	client        *http.Client
	now           func() time.Time
	newToken      func() string
}

// NewRedirectGateway creates the redirect gateway client
func NewRedirectGateway(baseURL, publicBaseURL string, store PendingStore, ttl time.Duration, client *http.Client) *RedirectGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &RedirectGateway{
		baseURL:       strings.TrimRight(baseURL, "/"),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		store:         store,
		ttl:           ttl,
		client:        client,
		now:           time.Now,
		newToken:      uuid.NewString,
	}
}

// Channel implements Gateway
func (g *RedirectGateway) Channel() Channel { return ChannelRedirect }

// Validate implements Gateway; the converted amount must be settled and positive
func (g *RedirectGateway) Validate(batch Batch) error {
	if len(batch.RequestIDs) == 0 {
		return ErrEmptySelection
	}
	if !batch.ConversionSettled || !batch.Converted.IsPositive() {
		return ErrConversionUnavailable
	}
	return nil
}

// ReturnURL builds the return link for a token
func (g *RedirectGateway) ReturnURL(token string) string {
	q := url.Values{}
	q.Set("token", token)
	return g.publicBaseURL + ReturnPath + "?" + q.Encode()
}

// Dispatch persists the pending transaction, then asks the gateway for a
// checkout URL. The record is written before the driver can be redirected.
func (g *RedirectGateway) Dispatch(ctx context.Context, batch Batch) (*Outcome, error) {
	token := g.newToken()
	now := g.now().UTC()
	pending := &PendingTransaction{
		Token:             token,
		RequestType:       RequestTypeDriver,
		DriverID:          batch.DriverID,
		PaymentFor:        batch.PaymentFor,
		RequestIDs:        append([]string(nil), batch.RequestIDs...),
		TotalHomeAmount:   batch.HomeAmount,
		HomeCurrency:      batch.HomeCurrency,
		ConvertedAmount:   batch.Converted,
		ConvertedCurrency: batch.ConvertedCurrency,
		Description:       batch.Description,
		ReturnURL:         g.ReturnURL(token),
		CreatedAt:         now,
	}

	if err := g.store.Save(ctx, pending, g.ttl); err != nil {
		return nil, fmt.Errorf("failed to persist pending transaction: %w", err)
	}

	redirectURL, err := g.initiate(ctx, pending)
	if err != nil {
		if delErr := g.store.Delete(ctx, token); delErr != nil {
			log.Printf("payment: failed to drop pending transaction %s: %v", token, delErr)
		}
		return nil, err
	}

	return &Outcome{
		Channel:    ChannelRedirect,
		PaymentFor: batch.PaymentFor,
		RequestIDs: pending.RequestIDs,
		Redirect: &Redirect{
			URL:       redirectURL,
			Token:     token,
			ReturnURL: pending.ReturnURL,
			ExpiresAt: now.Add(g.ttl),
		},
	}, nil
}

func (g *RedirectGateway) initiate(ctx context.Context, pending *PendingTransaction) (string, error) {
	body, err := json.Marshal(initiateRequest{
		PayerID:     pending.DriverID,
		Amount:      pending.ConvertedAmount,
		Currency:    pending.ConvertedCurrency,
		Reference:   pending.Token,
		Description: pending.Description,
		ReturnURL:   pending.ReturnURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode initiation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/initiate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build initiation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to initiate payment: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read initiation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s", ErrGatewayRejected, upstreamMessage(resp.StatusCode, raw))
	}

	var out initiateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode initiation response: %w", err)
	}
	target := out.RedirectURL
	if target == "" {
		target = out.CheckoutURL
	}
	if target == "" {
		return "", fmt.Errorf("%w: no redirect target", ErrGatewayRejected)
	}
	return target, nil
}
