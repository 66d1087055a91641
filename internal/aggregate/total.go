package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/driverpay/internal/debt"
)

// Summary is the home-currency total of the active selection
type Summary struct {
	Category     debt.Category   `json:"category"`
	HomeAmount   decimal.Decimal `json:"home_amount"`
	HomeCurrency string          `json:"home_currency"`
	Count        int             `json:"count"` // Selected ids present in the catalog
	IDs          []string        `json:"ids"`   // Those ids, in selection order
}

// Total sums the amounts of catalog debts in category whose id is selected.
// Selected ids missing from the catalog contribute zero.
func Total(category debt.Category, selected []string, catalog []debt.Debt) decimal.Decimal {
	total, _ := sum(category, selected, catalog)
	return total
}

// Summarize is Total plus the debts that contributed to it. Only IDs may be
// charged: selected ids missing from the catalog are left out.
func Summarize(category debt.Category, selected []string, catalog []debt.Debt, homeCurrency string) Summary {
	total, ids := sum(category, selected, catalog)
	return Summary{
		Category:     category,
		HomeAmount:   total,
		HomeCurrency: homeCurrency,
		Count:        len(ids),
		IDs:          ids,
	}
}

func sum(category debt.Category, selected []string, catalog []debt.Debt) (decimal.Decimal, []string) {
	amounts := make(map[string]decimal.Decimal, len(catalog))
	for _, d := range catalog {
		if d.Category == category {
			amounts[d.ID] = d.Amount
		}
	}

	total := decimal.Zero
	ids := []string{}
	seen := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		amount, ok := amounts[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		total = total.Add(amount)
		ids = append(ids, id)
	}
	return total, ids
}
