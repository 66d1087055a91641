package collection

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/fkhayef/driverpay/internal/payment"
)

// Manager owns one session per driver
type Manager struct {
	deps Dependencies

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a manager sharing deps across sessions
func NewManager(deps Dependencies) *Manager {
	return &Manager{
		deps:     deps.withDefaults(),
		sessions: make(map[string]*Session),
	}
}

// Session returns the driver's session, creating it on first use
func (m *Manager) Session(driverID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[driverID]
	if !ok {
		s = NewSession(driverID, m.deps)
		m.sessions[driverID] = s
	}
	return s
}

// Resume handles the redirect gateway's return leg. The pending record is
// consumed first, so a token settles at most once, and it alone decides which
// driver and which debts the payment was for. The record is put back when the
// payment could not be confirmed yet.
func (m *Manager) Resume(ctx context.Context, token string, status GatewayStatus) (*Attempt, error) {
	tx, err := m.deps.Pending.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, payment.ErrPendingNotFound) {
			return nil, ErrUnknownTransaction
		}
		return nil, err
	}

	attempt, err := m.Session(tx.DriverID).Resume(ctx, tx, status)
	// The gateway has been paid in both cases; the same token must stay resumable
	if errors.Is(err, ErrDispatchInProgress) || errors.Is(err, ErrConfirmationFailed) {
		m.restore(ctx, tx)
	}
	return attempt, err
}

// restore puts back a record that was consumed but could not be processed yet
func (m *Manager) restore(ctx context.Context, tx *payment.PendingTransaction) {
	ttl := tx.CreatedAt.Add(m.deps.PendingTTL).Sub(m.deps.Now())
	if ttl <= 0 {
		return
	}
	if err := m.deps.Pending.Save(ctx, tx, ttl); err != nil {
		log.Printf("collection: failed to restore pending transaction %s: %v", tx.Token, err)
	}
}
