package debt

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentStatusCollectible(t *testing.T) {
	tests := []struct {
		status PaymentStatus
		want   bool
	}{
		{"", true},
		{"PENDING", true},
		{"COD_PENDING", true},
		{"cod_pending", true},
		{"PAID", false},
		{"REFUNDED", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Collectible())
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" buy4me ")
	require.NoError(t, err)
	assert.Equal(t, CategoryBuy4Me, c)

	_, err = ParseCategory("PARCEL")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestFilterCollectibleKeepsMissingStatus(t *testing.T) {
	debts := []Debt{
		{ID: "a", Amount: decimal.NewFromInt(10)},
		{ID: "b", Amount: decimal.NewFromInt(20), PaymentStatus: PaymentStatusPaid},
		{ID: "c", Amount: decimal.NewFromInt(30), PaymentStatus: PaymentStatusCODPending},
	}

	got := FilterCollectible(debts)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}
