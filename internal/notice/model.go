package notice

import "time"

// Kind classifies a notice shown to the driver
type Kind string

const (
	KindValidation       Kind = "VALIDATION"
	KindConversionFailed Kind = "CONVERSION_FAILED"
	KindDispatchFailed   Kind = "DISPATCH_FAILED"
	KindPartialFailure   Kind = "PARTIAL_FAILURE"
	KindPaymentSucceeded Kind = "PAYMENT_SUCCEEDED"
)

// Notice is a user-facing message about a collection attempt
type Notice struct {
	ID         int64     `json:"id"`
	DriverID   string    `json:"driver_id"`
	Kind       Kind      `json:"kind"`
	Message    string    `json:"message"`
	Details    []string  `json:"details,omitempty"`     // e.g. one line per failed debt
	PaymentFor *string   `json:"payment_for,omitempty"` // SHIPMENT or BUY4ME
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewNotice is the input for Store.Create
type NewNotice struct {
	DriverID   string
	Kind       Kind
	Message    string
	Details    []string
	PaymentFor *string
}
