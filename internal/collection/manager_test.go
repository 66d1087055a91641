package collection

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/driverpay/internal/debt"
	"github.com/fkhayef/driverpay/internal/notice"
	"github.com/fkhayef/driverpay/internal/payment"
)

// startRedirect selects every shipment and dispatches through the redirect gateway
func startRedirect(t *testing.T, f *fixture, m *Manager) *payment.Redirect {
	t.Helper()
	s := m.Session("drv-1")
	require.NoError(t, s.RefreshAll(context.Background()))
	s.SelectAll(debt.CategoryShipment)
	awaitConverted(t, s)

	attempt, err := s.Pay(context.Background(), payment.ChannelRedirect)
	require.NoError(t, err)
	require.NotNil(t, attempt.Redirect)
	return attempt.Redirect
}

func TestRedirectSurvivesSessionReset(t *testing.T) {
	f := newFixture(t, quarter)
	f.source.set(debt.CategoryShipment, "A", 50, "B", 30)

	redirect := startRedirect(t, f, NewManager(f.deps))
	assert.Equal(t, "https://gateway.test/checkout/1", redirect.URL)
	assert.Contains(t, redirect.ReturnURL, "token="+redirect.Token)
	assert.Equal(t, 1, f.gateway.hitCount())
	assert.Equal(t, 0, f.bulk.hits())

	// A new manager has no memory of the payment; only the pending store does.
	fresh := NewManager(f.dependencies(quarter))
	attempt, err := fresh.Resume(context.Background(), redirect.Token, GatewayStatusSuccess)
	require.NoError(t, err)

	assert.Equal(t, StatusSucceeded, attempt.Status)
	assert.Equal(t, payment.ChannelRedirect, attempt.Channel)
	assert.Equal(t, bulkCall{PaymentFor: "SHIPMENT", RequestIDs: []string{"A", "B"}}, f.bulk.last())
	assert.Equal(t, []string{"A", "B"}, attempt.Report.Created)
	assert.Contains(t, f.noticeKinds(t, "drv-1"), notice.KindPaymentSucceeded)

	_, err = fresh.Resume(context.Background(), redirect.Token, GatewayStatusSuccess)
	assert.ErrorIs(t, err, ErrUnknownTransaction)
	assert.Equal(t, 1, f.bulk.hits())
}

func TestPendingRecordCarriesBatch(t *testing.T) {
	f := newFixture(t, quarter)
	f.source.set(debt.CategoryShipment, "A", 50, "B", 30)
	redirect := startRedirect(t, f, NewManager(f.deps))

	tx, err := f.pending.Consume(context.Background(), redirect.Token)
	require.NoError(t, err)
	assert.Equal(t, "drv-1", tx.DriverID)
	assert.Equal(t, debt.CategoryShipment, tx.PaymentFor)
	assert.Equal(t, []string{"A", "B"}, tx.RequestIDs)
	assert.True(t, tx.TotalHomeAmount.Equal(decimal.NewFromInt(80)))
	assert.True(t, tx.ConvertedAmount.Equal(decimal.NewFromInt(20)))
}

func TestResumeCancelledKeepsSelection(t *testing.T) {
	f := newFixture(t, quarter)
	f.source.set(debt.CategoryShipment, "A", 50)
	m := NewManager(f.deps)
	redirect := startRedirect(t, f, m)

	attempt, err := m.Resume(context.Background(), redirect.Token, ParseGatewayStatus("CANCELED"))
	assert.ErrorIs(t, err, ErrPaymentNotCompleted)
	assert.Equal(t, StatusFailed, attempt.Status)
	assert.Equal(t, 0, f.bulk.hits())
	assert.Equal(t, []string{"A"}, m.Session("drv-1").View().Selected[debt.CategoryShipment])
	assert.Contains(t, f.noticeKinds(t, "drv-1"), notice.KindDispatchFailed)
}

func TestResumeUnknownToken(t *testing.T) {
	f := newFixture(t, quarter)
	_, err := NewManager(f.deps).Resume(context.Background(), "missing", GatewayStatusSuccess)
	assert.ErrorIs(t, err, ErrUnknownTransaction)
}

func TestResumeWhileBusyKeepsToken(t *testing.T) {
	f := newFixture(t, quarter)
	f.source.set(debt.CategoryShipment, "A", 50)
	gw := &blockingGateway{entered: make(chan struct{}), release: make(chan struct{})}
	f.deps.Dispatcher = payment.NewDispatcher(gw)
	m := NewManager(f.deps)

	tx := &payment.PendingTransaction{
		Token:      "tok-1",
		DriverID:   "drv-1",
		PaymentFor: debt.CategoryShipment,
		RequestIDs: []string{"B"},
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, f.pending.Save(context.Background(), tx, time.Minute))

	s := m.Session("drv-1")
	require.NoError(t, s.RefreshAll(context.Background()))
	s.SelectAll(debt.CategoryShipment)
	done := make(chan error, 1)
	go func() {
		_, err := s.Pay(context.Background(), payment.ChannelInstant)
		done <- err
	}()
	<-gw.entered

	_, err := m.Resume(context.Background(), "tok-1", GatewayStatusSuccess)
	assert.ErrorIs(t, err, ErrDispatchInProgress)

	close(gw.release)
	require.NoError(t, <-done)

	attempt, err := m.Resume(context.Background(), "tok-1", GatewayStatusSuccess)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, attempt.Report.Created)
}

func TestParseGatewayStatus(t *testing.T) {
	assert.Equal(t, GatewayStatusSuccess, ParseGatewayStatus("PAID"))
	assert.Equal(t, GatewayStatusCancelled, ParseGatewayStatus("cancel"))
	assert.Equal(t, GatewayStatusFailed, ParseGatewayStatus(""))
	assert.Equal(t, GatewayStatusFailed, ParseGatewayStatus("declined"))
}

func TestResumeKeepsTokenWhenConfirmationFails(t *testing.T) {
	f := newFixture(t, quarter)
	f.source.set(debt.CategoryShipment, "A", 50)
	m := NewManager(f.deps)
	redirect := startRedirect(t, f, m)

	succeed := f.bulk.respond
	f.bulk.mu.Lock()
	f.bulk.respond = func(bulkCall) (int, any) {
		return http.StatusInternalServerError, map[string]string{"detail": "ledger unavailable"}
	}
	f.bulk.mu.Unlock()

	attempt, err := m.Resume(context.Background(), redirect.Token, GatewayStatusSuccess)
	assert.ErrorIs(t, err, ErrConfirmationFailed)
	assert.ErrorIs(t, err, payment.ErrGatewayRejected)
	assert.Equal(t, StatusFailed, attempt.Status)
	assert.Equal(t, []string{"A"}, m.Session("drv-1").View().Selected[debt.CategoryShipment])

	f.bulk.mu.Lock()
	f.bulk.respond = succeed
	f.bulk.mu.Unlock()

	attempt, err = m.Resume(context.Background(), redirect.Token, GatewayStatusSuccess)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, attempt.Status)
	assert.Equal(t, []string{"A"}, attempt.Report.Created)
	assert.Equal(t, 2, f.bulk.hits())
	assert.Empty(t, m.Session("drv-1").View().Selected[debt.CategoryShipment])

	_, err = m.Resume(context.Background(), redirect.Token, GatewayStatusSuccess)
	assert.ErrorIs(t, err, ErrUnknownTransaction)
}

func TestResumeCancelledDropsToken(t *testing.T) {
	f := newFixture(t, quarter)
	f.source.set(debt.CategoryShipment, "A", 50)
	m := NewManager(f.deps)
	redirect := startRedirect(t, f, m)

	_, err := m.Resume(context.Background(), redirect.Token, GatewayStatusCancelled)
	assert.ErrorIs(t, err, ErrPaymentNotCompleted)

	_, err = m.Resume(context.Background(), redirect.Token, GatewayStatusSuccess)
	assert.ErrorIs(t, err, ErrUnknownTransaction)
	assert.Equal(t, 0, f.bulk.hits())
}
