package debt

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// apiDebt mirrors a shipment or buy-for-me order as returned by the order service
type apiDebt struct {
	ID             flexibleID      `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	PaymentStatus  *string         `json:"payment_status"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	OrderNumber    string          `json:"order_number,omitempty"`
	CustomerName   string          `json:"customer_name,omitempty"`
}

// pageEnvelope is the paginated listing shape
type pageEnvelope struct {
	Count   int             `json:"count"`
	Next    *string         `json:"next"`
	Results json.RawMessage `json:"results"`
}

// flexibleID accepts both numeric and string identifiers
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

var errUnexpectedShape = errors.New("listing is neither an array nor a results envelope")

// decodeListing handles both a bare JSON array and a {"results": [...]} envelope.
// The returned next link is empty for bare arrays and for the last page.
func decodeListing(body []byte) ([]apiDebt, string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, "", nil
	}

	switch body[0] {
	case '[':
		var items []apiDebt
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, "", err
		}
		return items, "", nil
	case '{':
		var env pageEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, "", err
		}
		var items []apiDebt
		if len(env.Results) > 0 && !bytes.Equal(env.Results, []byte("null")) {
			if err := json.Unmarshal(env.Results, &items); err != nil {
				return nil, "", err
			}
		}
		next := ""
		if env.Next != nil {
			next = strings.TrimSpace(*env.Next)
		}
		return items, next, nil
	default:
		return nil, "", errUnexpectedShape
	}
}

func (a apiDebt) toDebt(category Category, defaultCurrency string) Debt {
	d := Debt{
		ID:           string(a.ID),
		Category:     category,
		Amount:       a.Amount,
		Currency:     a.Currency,
		CustomerName: a.CustomerName,
	}
	if d.Currency == "" {
		d.Currency = defaultCurrency
	}
	if a.PaymentStatus != nil {
		d.PaymentStatus = PaymentStatus(*a.PaymentStatus)
	}
	if a.TrackingNumber != "" {
		d.Reference = a.TrackingNumber
	} else {
		d.Reference = a.OrderNumber
	}
	return d
}

// CategoryView is the catalog listing returned to clients
type CategoryView struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
	Debts    []Debt   `json:"debts"`
}
