package reconcile

import (
	"github.com/fkhayef/driverpay/internal/debt"
)

// Deselector is the part of the selection store the reporter needs
type Deselector interface {
	Remove(category debt.Category, ids ...string)
}

// Reporter applies reports to the driver's selection
type Reporter struct{}

// NewReporter creates a reporter
func NewReporter() *Reporter {
	return &Reporter{}
}

// Apply deselects exactly the settled ids; refused ids stay selected for retry
func (r *Reporter) Apply(report *Report, selection Deselector) {
	if report == nil || len(report.Created) == 0 {
		return
	}
	selection.Remove(report.PaymentFor, report.Created...)
}
