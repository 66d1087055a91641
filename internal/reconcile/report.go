package reconcile

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/driverpay/internal/debt"
	"github.com/fkhayef/driverpay/internal/payment"
)

// ErrInconsistentResult means the bulk response cannot be mapped onto the request ids
var ErrInconsistentResult = errors.New("bulk payment result does not match the request")

// FailedItem is a debt the backend refused, with its reason
type FailedItem struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Report splits a batch into settled and refused debts
type Report struct {
	PaymentFor      debt.Category   `json:"payment_for"`
	Channel         payment.Channel `json:"channel"`
	RequestIDs      []string        `json:"request_ids"`
	Created         []string        `json:"created"`
	Failed          []FailedItem    `json:"failed"`
	PaymentsCreated int             `json:"payments_created"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// PartiallyFailed reports a mixed outcome
func (r *Report) PartiallyFailed() bool {
	return len(r.Failed) > 0
}

// Messages lists one line per refused debt
func (r *Report) Messages() []string {
	out := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		out[i] = fmt.Sprintf("%s: %s", f.ID, f.Reason)
	}
	return out
}

// Summary is a one-line description of the outcome
func (r *Report) Summary() string {
	if len(r.Failed) == 0 {
		return fmt.Sprintf("%d payment(s) created, total %s", r.PaymentsCreated, r.TotalAmount.StringFixed(2))
	}
	return fmt.Sprintf("%d payment(s) created, total %s; %d failed", r.PaymentsCreated, r.TotalAmount.StringFixed(2), len(r.Failed))
}

// Reconcile maps a bulk result onto the ids that were sent. Every request id
// lands in exactly one of Created and Failed, or ErrInconsistentResult is returned.
func Reconcile(paymentFor debt.Category, channel payment.Channel, requestIDs []string, result *payment.BulkPaymentResult) (*Report, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: empty result", ErrInconsistentResult)
	}

	requested := make(map[string]struct{}, len(requestIDs))
	for _, id := range requestIDs {
		if _, dup := requested[id]; dup {
			return nil, fmt.Errorf("%w: duplicate request id %s", ErrInconsistentResult, id)
		}
		requested[id] = struct{}{}
	}

	failed := make(map[string]struct{}, len(result.FailedRequests))
	items := make([]FailedItem, 0, len(result.FailedRequests))
	for _, f := range result.FailedRequests {
		id := string(f.ID)
		if _, ok := requested[id]; !ok {
			return nil, fmt.Errorf("%w: unknown failed id %s", ErrInconsistentResult, id)
		}
		if _, dup := failed[id]; dup {
			return nil, fmt.Errorf("%w: id %s failed twice", ErrInconsistentResult, id)
		}
		failed[id] = struct{}{}
		items = append(items, FailedItem{ID: id, Reason: f.Reason})
	}

	if result.PaymentsCreated+len(items) != len(requestIDs) {
		return nil, fmt.Errorf("%w: %d created + %d failed != %d requested",
			ErrInconsistentResult, result.PaymentsCreated, len(items), len(requestIDs))
	}

	created := make([]string, 0, result.PaymentsCreated)
	for _, id := range requestIDs {
		if _, ok := failed[id]; !ok {
			created = append(created, id)
		}
	}

	return &Report{
		PaymentFor:      paymentFor,
		Channel:         channel,
		RequestIDs:      append([]string(nil), requestIDs...),
		Created:         created,
		Failed:          items,
		PaymentsCreated: result.PaymentsCreated,
		TotalAmount:     result.TotalAmount,
	}, nil
}
