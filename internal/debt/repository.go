package debt

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// Repository reads debts straight from the order database
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new debt repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const shipmentQuery = `
	SELECT id::text, tracking_number, cod_amount::text, currency, payment_status, customer_name
	FROM shipments
	WHERE cod_amount IS NOT NULL
	  AND ($1 = '' OR payment_status = $1)
	ORDER BY created_at DESC
`

const buy4meQuery = `
	SELECT id::text, order_number, total_amount::text, currency, payment_status, customer_name
	FROM buy4me_orders
	WHERE ($1 = '' OR payment_status = $1)
	ORDER BY created_at DESC
`

// List implements Source
func (r *Repository) List(ctx context.Context, category Category, filter Filter) ([]Debt, error) {
	var query string
	switch category {
	case CategoryShipment:
		query = shipmentQuery
	case CategoryBuy4Me:
		query = buy4meQuery
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	rows, err := r.db.QueryContext(ctx, query, string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s debts: %w", category, err)
	}
	defer rows.Close()

	var debts []Debt
	for rows.Next() {
		var (
			d        Debt
			amount   string
			status   sql.NullString
			customer sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Reference, &amount, &d.Currency, &status, &customer); err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		d.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount of %s: %w", d.ID, err)
		}
		d.Category = category
		d.PaymentStatus = PaymentStatus(status.String)
		d.CustomerName = customer.String
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debts: %w", err)
	}

	return debts, nil
}
