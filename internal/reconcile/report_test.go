package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/driverpay/internal/debt"
	"github.com/fkhayef/driverpay/internal/payment"
	"github.com/fkhayef/driverpay/internal/selection"
)

func TestReconcilePartialFailure(t *testing.T) {
	result := &payment.BulkPaymentResult{
		PaymentsCreated: 2,
		TotalAmount:     decimal.NewFromInt(80),
		FailedRequests:  []payment.FailedRequest{{ID: "Y", Reason: "already paid"}},
	}

	report, err := Reconcile(debt.CategoryShipment, payment.ChannelInstant, []string{"X", "Y", "Z"}, result)
	require.NoError(t, err)

	assert.Equal(t, []string{"X", "Z"}, report.Created)
	assert.Equal(t, []FailedItem{{ID: "Y", Reason: "already paid"}}, report.Failed)
	assert.True(t, report.PartiallyFailed())
	assert.Equal(t, []string{"Y: already paid"}, report.Messages())
	assert.Equal(t, "2 payment(s) created, total 80.00; 1 failed", report.Summary())
}

func TestReconcileEveryIDInExactlyOneBucket(t *testing.T) {
	ids := []string{"1", "2", "3", "4", "5"}
	for failedCount := 0; failedCount <= len(ids); failedCount++ {
		var failed []payment.FailedRequest
		for _, id := range ids[:failedCount] {
			failed = append(failed, payment.FailedRequest{ID: payment.RequestID(id), Reason: "x"})
		}
		result := &payment.BulkPaymentResult{PaymentsCreated: len(ids) - failedCount, FailedRequests: failed}

		report, err := Reconcile(debt.CategoryBuy4Me, payment.ChannelInstant, ids, result)
		require.NoError(t, err)

		seen := map[string]int{}
		for _, id := range report.Created {
			seen[id]++
		}
		for _, f := range report.Failed {
			seen[f.ID]++
		}
		assert.Len(t, seen, len(ids))
		for id, n := range seen {
			assert.Equal(t, 1, n, "id %s", id)
		}
		assert.Equal(t, len(ids), report.PaymentsCreated+len(report.Failed))
	}
}

func TestReconcileRejectsInconsistentResults(t *testing.T) {
	tests := []struct {
		name   string
		ids    []string
		result *payment.BulkPaymentResult
	}{
		{"nil result", []string{"A"}, nil},
		{"count mismatch", []string{"A", "B"}, &payment.BulkPaymentResult{PaymentsCreated: 2, FailedRequests: []payment.FailedRequest{{ID: "A"}}}},
		{"unknown failed id", []string{"A"}, &payment.BulkPaymentResult{FailedRequests: []payment.FailedRequest{{ID: "Q"}}}},
		{"failed twice", []string{"A", "B"}, &payment.BulkPaymentResult{FailedRequests: []payment.FailedRequest{{ID: "A"}, {ID: "A"}}}},
		{"duplicate request", []string{"A", "A"}, &payment.BulkPaymentResult{PaymentsCreated: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(debt.CategoryShipment, payment.ChannelInstant, tt.ids, tt.result)
			assert.ErrorIs(t, err, ErrInconsistentResult)
		})
	}
}

func TestReporterApplyKeepsFailedSelected(t *testing.T) {
	store := selection.NewStore()
	store.SelectAll(debt.CategoryShipment, []string{"X", "Y", "Z"})
	store.SelectAll(debt.CategoryBuy4Me, []string{"X"})

	report, err := Reconcile(debt.CategoryShipment, payment.ChannelInstant, []string{"X", "Y", "Z"}, &payment.BulkPaymentResult{
		PaymentsCreated: 2,
		FailedRequests:  []payment.FailedRequest{{ID: "Y", Reason: "already paid"}},
	})
	require.NoError(t, err)

	NewReporter().Apply(report, store)

	assert.Equal(t, []string{"Y"}, store.Selected(debt.CategoryShipment))
	assert.Equal(t, []string{"X"}, store.Selected(debt.CategoryBuy4Me))
}
