package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fkhayef/driverpay/internal/debt"
)

func shipment(id string, amount string) debt.Debt {
	return debt.Debt{ID: id, Category: debt.CategoryShipment, Amount: decimal.RequireFromString(amount)}
}

func TestTotalSelectAndDeselect(t *testing.T) {
	catalog := []debt.Debt{shipment("A", "50"), shipment("B", "30")}

	total := Total(debt.CategoryShipment, []string{"A", "B"}, catalog)
	assert.True(t, total.Equal(decimal.NewFromInt(80)), "got %s", total)

	total = Total(debt.CategoryShipment, []string{"B"}, catalog)
	assert.True(t, total.Equal(decimal.NewFromInt(30)), "got %s", total)
}

func TestTotalIgnoresAbsentAndZero(t *testing.T) {
	catalog := []debt.Debt{shipment("A", "12.35"), shipment("Z", "0")}

	total := Total(debt.CategoryShipment, []string{"A", "Z", "ghost"}, catalog)
	assert.Equal(t, "12.35", total.String())
}

func TestTotalOnlyReadsCategory(t *testing.T) {
	catalog := []debt.Debt{
		shipment("A", "10"),
		{ID: "A", Category: debt.CategoryBuy4Me, Amount: decimal.NewFromInt(99)},
	}

	assert.Equal(t, "10", Total(debt.CategoryShipment, []string{"A"}, catalog).String())
	assert.Equal(t, "99", Total(debt.CategoryBuy4Me, []string{"A"}, catalog).String())
}

func TestTotalEmptySelection(t *testing.T) {
	assert.True(t, Total(debt.CategoryShipment, nil, []debt.Debt{shipment("A", "5")}).IsZero())
}

func TestSummarizeCountsContributors(t *testing.T) {
	catalog := []debt.Debt{shipment("A", "0.10"), shipment("B", "0.20")}

	s := Summarize(debt.CategoryShipment, []string{"A", "B", "gone"}, catalog, "MYR")

	assert.Equal(t, 2, s.Count)
	assert.Equal(t, "0.3", s.HomeAmount.String())
	assert.Equal(t, "MYR", s.HomeCurrency)
}

func TestSummarizeListsOnlyCatalogIDs(t *testing.T) {
	catalog := []debt.Debt{shipment("A", "50"), shipment("B", "30")}

	s := Summarize(debt.CategoryShipment, []string{"ghost", "B", "A"}, catalog, "MYR")

	assert.Equal(t, []string{"B", "A"}, s.IDs)
	assert.Equal(t, "80", s.HomeAmount.String())
	assert.Empty(t, Summarize(debt.CategoryShipment, []string{"ghost"}, catalog, "MYR").IDs)
}
