package notice

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Common errors
var (
	ErrNoticeNotFound = errors.New("notice not found")
	ErrNotRecipient   = errors.New("not the recipient of this notice")
)

// Service handles notice business logic
type Service struct {
	store Store
}

// NewService creates a new notice service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetByID retrieves a notice by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Notice, error) {
	n, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNoticeNotFound
	}
	return n, nil
}

// ListByDriverID retrieves notices for a driver
func (s *Service) ListByDriverID(ctx context.Context, driverID string, page, perPage int, unreadOnly bool) ([]*Notice, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListByDriverID(ctx, driverID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notice as read
func (s *Service) MarkAsRead(ctx context.Context, id int64, driverID string) error {
	n, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.DriverID != driverID {
		return ErrNotRecipient
	}
	return s.store.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notices as read for a driver
func (s *Service) MarkAllAsRead(ctx context.Context, driverID string) error {
	return s.store.MarkAllAsRead(ctx, driverID)
}

// GetUnreadCount returns the count of unread notices
func (s *Service) GetUnreadCount(ctx context.Context, driverID string) (int, error) {
	return s.store.GetUnreadCount(ctx, driverID)
}

// Helper methods for the collection workflow. A notice that cannot be stored
// is logged and dropped; it never fails the payment it describes.

func (s *Service) notify(ctx context.Context, in NewNotice) *Notice {
	n, err := s.store.Create(ctx, in)
	if err != nil {
		log.Printf("notice: failed to record %s for %s: %v", in.Kind, in.DriverID, err)
		return nil
	}
	return n
}

func categoryRef(paymentFor string) *string {
	if paymentFor == "" {
		return nil
	}
	return &paymentFor
}

// NotifyValidation records a local validation rejection
func (s *Service) NotifyValidation(ctx context.Context, driverID, paymentFor string, err error) *Notice {
	return s.notify(ctx, NewNotice{
		DriverID:   driverID,
		Kind:       KindValidation,
		Message:    "Payment not sent: " + err.Error(),
		PaymentFor: categoryRef(paymentFor),
	})
}

// NotifyConversionFailed records that the converted total is unavailable
func (s *Service) NotifyConversionFailed(ctx context.Context, driverID, amount, from, to string, err error) *Notice {
	return s.notify(ctx, NewNotice{
		DriverID: driverID,
		Kind:     KindConversionFailed,
		Message:  fmt.Sprintf("Could not convert %s %s to %s; online payment is disabled until it succeeds", amount, from, to),
		Details:  []string{err.Error()},
	})
}

// NotifyDispatchFailed records a batch the gateway did not accept
func (s *Service) NotifyDispatchFailed(ctx context.Context, driverID, paymentFor string, err error) *Notice {
	return s.notify(ctx, NewNotice{
		DriverID:   driverID,
		Kind:       KindDispatchFailed,
		Message:    "Payment failed, your selection was kept so you can retry",
		Details:    []string{err.Error()},
		PaymentFor: categoryRef(paymentFor),
	})
}

// NotifyReconciled records the outcome of a settled batch; failures are listed one per line
func (s *Service) NotifyReconciled(ctx context.Context, driverID, paymentFor, summary string, failures []string) *Notice {
	kind := KindPaymentSucceeded
	if len(failures) > 0 {
		kind = KindPartialFailure
	}
	return s.notify(ctx, NewNotice{
		DriverID:   driverID,
		Kind:       kind,
		Message:    summary,
		Details:    failures,
		PaymentFor: categoryRef(paymentFor),
	})
}
