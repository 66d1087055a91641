package collection

import (
	"github.com/fkhayef/driverpay/internal/aggregate"
	"github.com/fkhayef/driverpay/internal/conversion"
	"github.com/fkhayef/driverpay/internal/debt"
)

// SetActiveRequest represents the request body for switching category
type SetActiveRequest struct {
	Category string `json:"category"`
}

// ToggleRequest represents the request body for toggling one debt
type ToggleRequest struct {
	ID string `json:"id"`
}

// PayRequest represents the request body for dispatching the active selection
type PayRequest struct {
	Channel string `json:"channel"`
}

// ToggleResponse reports the debt's new selection state
type ToggleResponse struct {
	ID       string `json:"id"`
	Selected bool   `json:"selected"`
	View     *View  `json:"view"`
}

// View is the driver's collection screen: selections, totals and payability
type View struct {
	DriverID       string                     `json:"driver_id"`
	Active         debt.Category              `json:"active_category"`
	Selected       map[debt.Category][]string `json:"selected"`
	Counts         map[debt.Category]int      `json:"counts"` // Collectible debts per category
	Total          aggregate.Summary          `json:"total"`
	Conversion     conversion.State           `json:"conversion"`
	CanPayInstant  bool                       `json:"can_pay_instant"`
	CanPayRedirect bool                       `json:"can_pay_redirect"`
	Status         Status                     `json:"status"`
	LastAttempt    *Attempt                   `json:"last_attempt,omitempty"`
}
