package payment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/driverpay/internal/debt"
)

// Channel is the closed set of payment channels
type Channel string

const (
	ChannelInstant  Channel = "INSTANT"
	ChannelRedirect Channel = "REDIRECT"
)

// RequestTypeDriver marks transactions initiated from the driver back-office
const RequestTypeDriver = "driver"

// Common errors
var (
	ErrUnknownChannel        = errors.New("unknown payment channel")
	ErrEmptySelection        = errors.New("no debts selected")
	ErrConversionUnavailable = errors.New("converted amount is not available")
	ErrGatewayRejected       = errors.New("payment gateway rejected the request")
	ErrPendingNotFound       = errors.New("pending transaction not found or expired")
)

// ParseChannel accepts the channel name in any case
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToUpper(strings.TrimSpace(s))) {
	case ChannelInstant:
		return ChannelInstant, nil
	case ChannelRedirect:
		return ChannelRedirect, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownChannel, s)
	}
}

// Batch is everything a gateway needs to collect the selected debts
type Batch struct {
	DriverID          string
	PaymentFor        debt.Category
	RequestIDs        []string
	HomeAmount        decimal.Decimal
	HomeCurrency      string
	Converted         decimal.Decimal
	ConvertedCurrency string
	ConversionSettled bool
	Description       string
}

// RequestID accepts numeric or string ids from the payment backend
type RequestID string

func (r *RequestID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RequestID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = RequestID(n.String())
	return nil
}

// FailedRequest is a debt the bulk endpoint refused to settle
type FailedRequest struct {
	ID     RequestID `json:"id"`
	Reason string    `json:"reason"`
}

// BulkPaymentResult is the bulk payment endpoint response
type BulkPaymentResult struct {
	PaymentsCreated int             `json:"payments_created"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	FailedRequests  []FailedRequest `json:"failed_requests"`
}

// Redirect tells the client where to send the driver
type Redirect struct {
	URL       string    `json:"redirect_url"`
	Token     string    `json:"token"`
	ReturnURL string    `json:"return_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Outcome is the result of a dispatch; exactly one of Result and Redirect is set
type Outcome struct {
	Channel    Channel            `json:"channel"`
	PaymentFor debt.Category      `json:"payment_for"`
	RequestIDs []string           `json:"request_ids"`
	Result     *BulkPaymentResult `json:"result,omitempty"`
	Redirect   *Redirect          `json:"redirect,omitempty"`
}

// PendingTransaction is written before the driver leaves for the redirect
// gateway and is the only record of what was being paid when they return
type PendingTransaction struct {
	Token             string          `json:"token"`
	RequestType       string          `json:"request_type"`
	DriverID          string          `json:"driver_id"`
	PaymentFor        debt.Category   `json:"payment_for"`
	RequestIDs        []string        `json:"request_ids"`
	TotalHomeAmount   decimal.Decimal `json:"total_home_amount"`
	HomeCurrency      string          `json:"home_currency"`
	ConvertedAmount   decimal.Decimal `json:"converted_amount"`
	ConvertedCurrency string          `json:"converted_currency"`
	Description       string          `json:"description"`
	ReturnURL         string          `json:"return_url"`
	CreatedAt         time.Time       `json:"created_at"`
}
