package collection

import (
	"errors"
	"strings"
	"time"

	"github.com/fkhayef/driverpay/internal/debt"
	"github.com/fkhayef/driverpay/internal/payment"
	"github.com/fkhayef/driverpay/internal/reconcile"
)

// Status is the state of the current payment attempt
type Status string

const (
	StatusIdle        Status = "IDLE"
	StatusValidating  Status = "VALIDATING"
	StatusRejected    Status = "REJECTED"
	StatusDispatching Status = "DISPATCHING"
	StatusSucceeded   Status = "SUCCEEDED"
	StatusFailed      Status = "FAILED"
)

// Common errors
var (
	ErrDispatchInProgress  = errors.New("a payment is already being dispatched")
	ErrUnknownTransaction  = errors.New("unknown or expired payment token")
	ErrPaymentNotCompleted = errors.New("payment was not completed at the gateway")
	ErrUnknownDebt         = errors.New("debt is not in the current listing")
	ErrConfirmationFailed  = errors.New("failed to confirm gateway payment")
)

// GatewayStatus is what the redirect gateway reports on the return leg
type GatewayStatus string

const (
	GatewayStatusSuccess   GatewayStatus = "success"
	GatewayStatusFailed    GatewayStatus = "failed"
	GatewayStatusCancelled GatewayStatus = "cancelled"
)

// ParseGatewayStatus normalizes the status query parameter. Anything not
// recognised as success or cancellation counts as a failure.
func ParseGatewayStatus(s string) GatewayStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success", "succeeded", "paid", "completed":
		return GatewayStatusSuccess
	case "cancel", "cancelled", "canceled":
		return GatewayStatusCancelled
	default:
		return GatewayStatusFailed
	}
}

// Attempt records one pass through the payment state machine.
// Status is always terminal (REJECTED, SUCCEEDED or FAILED) once the attempt is returned.
type Attempt struct {
	Status     Status            `json:"status"`
	Channel    payment.Channel   `json:"channel"`
	PaymentFor debt.Category     `json:"payment_for"`
	RequestIDs []string          `json:"request_ids"`
	Report     *reconcile.Report `json:"report,omitempty"`
	Redirect   *payment.Redirect `json:"redirect,omitempty"`
	Error      string            `json:"error,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

func (a *Attempt) reject(err error) {
	a.Status = StatusRejected
	a.Error = err.Error()
}

func (a *Attempt) fail(err error) {
	a.Status = StatusFailed
	a.Error = err.Error()
}
