package conversion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Converter converts an amount between currencies
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

var ErrRateUnavailable = errors.New("conversion rate unavailable")

// HTTPConverter calls the currency conversion service
type HTTPConverter struct {
	baseURL string
	client  *http.Client
}

// NewHTTPConverter creates a conversion client
func NewHTTPConverter(baseURL string, client *http.Client) *HTTPConverter {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPConverter{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type convertResponse struct {
	Result *decimal.Decimal `json:"result"`
}

// Convert implements Converter. Any non-2xx answer or missing result is ErrRateUnavailable.
func (c *HTTPConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("amount", amount.String())
	q.Set("from", from)
	q.Set("to", to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/convert?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build conversion request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to convert %s %s to %s: %w", amount, from, to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return decimal.Zero, fmt.Errorf("%w: status %d", ErrRateUnavailable, resp.StatusCode)
	}

	var out convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode conversion: %w", err)
	}
	if out.Result == nil || out.Result.IsNegative() {
		return decimal.Zero, ErrRateUnavailable
	}

	return *out.Result, nil
}
