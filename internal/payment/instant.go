package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fkhayef/driverpay/internal/debt"
)

// bulkPaymentRequest is the bulk payment endpoint request body
type bulkPaymentRequest struct {
	PaymentFor debt.Category `json:"payment_for"`
	RequestIDs []string      `json:"request_ids"`
}

type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// InstantGateway settles a batch synchronously through the bulk payment endpoint
type InstantGateway struct {
	url    string
	token  string
	client *http.Client
}

// NewInstantGateway creates the bulk payment client
func NewInstantGateway(url, token string, client *http.Client) *InstantGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &InstantGateway{url: url, token: token, client: client}
}

// Channel implements Gateway
func (g *InstantGateway) Channel() Channel { return ChannelInstant }

// Validate implements Gateway; the instant path does not depend on conversion
func (g *InstantGateway) Validate(batch Batch) error {
	if len(batch.RequestIDs) == 0 {
		return ErrEmptySelection
	}
	return nil
}

// Dispatch implements Gateway
func (g *InstantGateway) Dispatch(ctx context.Context, batch Batch) (*Outcome, error) {
	result, err := g.Submit(ctx, batch.PaymentFor, batch.RequestIDs)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Channel:    ChannelInstant,
		PaymentFor: batch.PaymentFor,
		RequestIDs: append([]string(nil), batch.RequestIDs...),
		Result:     result,
	}, nil
}

// Submit posts request ids to the bulk endpoint. It also confirms payments
// collected through the redirect gateway.
func (g *InstantGateway) Submit(ctx context.Context, paymentFor debt.Category, requestIDs []string) (*BulkPaymentResult, error) {
	body, err := json.Marshal(bulkPaymentRequest{PaymentFor: paymentFor, RequestIDs: requestIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to encode bulk payment: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build bulk payment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit bulk payment: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read bulk payment response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, upstreamMessage(resp.StatusCode, raw))
	}

	var result BulkPaymentResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode bulk payment response: %w", err)
	}
	return &result, nil
}

// upstreamMessage extracts a human-readable reason from an error body
func upstreamMessage(status int, raw []byte) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		for _, m := range []string{eb.Detail, eb.Message, eb.Error} {
			if strings.TrimSpace(m) != "" {
				return m
			}
		}
	}
	return fmt.Sprintf("status %d", status)
}
