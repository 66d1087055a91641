package debt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category represents one of the two independent debt collections
type Category string

const (
	CategoryShipment Category = "SHIPMENT"
	CategoryBuy4Me   Category = "BUY4ME"
)

// Categories lists every category in display order
var Categories = []Category{CategoryShipment, CategoryBuy4Me}

var ErrUnknownCategory = errors.New("unknown debt category")

// ParseCategory accepts the category name in any case
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case CategoryShipment:
		return CategoryShipment, nil
	case CategoryBuy4Me:
		return CategoryBuy4Me, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}

// PaymentStatus represents the payment state reported by the order service
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusCODPending PaymentStatus = "COD_PENDING"
	PaymentStatusPaid       PaymentStatus = "PAID"
)

// Collectible reports whether a driver may select a debt with this status.
// An absent status counts as collectible.
func (s PaymentStatus) Collectible() bool {
	switch PaymentStatus(strings.ToUpper(strings.TrimSpace(string(s)))) {
	case "", PaymentStatusPending, PaymentStatusCODPending:
		return true
	default:
		return false
	}
}

// Debt is an outstanding COD amount tied to a shipment or buy-for-me order
type Debt struct {
	ID            string          `json:"id"`
	Category      Category        `json:"category"`
	Amount        decimal.Decimal `json:"amount"`        // Home currency
	Currency      string          `json:"currency"`
	PaymentStatus PaymentStatus   `json:"payment_status,omitempty"`
	Reference     string          `json:"reference,omitempty"` // Tracking or order number
	CustomerName  string          `json:"customer_name,omitempty"`
}

// Filter restricts a listing; an empty Status means no server-side filter
type Filter struct {
	Status PaymentStatus
}

// FilterCollectible keeps debts whose status is collectible
func FilterCollectible(debts []Debt) []Debt {
	out := make([]Debt, 0, len(debts))
	for _, d := range debts {
		if d.PaymentStatus.Collectible() {
			out = append(out, d)
		}
	}
	return out
}
