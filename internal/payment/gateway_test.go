package payment

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/driverpay/internal/debt"
)

// MockGateway implements Gateway for testing
type MockGateway struct {
	ChannelValue  Channel
	ValidateFunc  func(batch Batch) error
	DispatchFunc  func(ctx context.Context, batch Batch) (*Outcome, error)
	DispatchCalls int
}

func (m *MockGateway) Channel() Channel { return m.ChannelValue }

func (m *MockGateway) Validate(batch Batch) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(batch)
	}
	return nil
}

func (m *MockGateway) Dispatch(ctx context.Context, batch Batch) (*Outcome, error) {
	m.DispatchCalls++
	if m.DispatchFunc != nil {
		return m.DispatchFunc(ctx, batch)
	}
	return &Outcome{Channel: m.ChannelValue}, nil
}

func TestDispatcherRejectsEmptySelectionWithoutCall(t *testing.T) {
	gw := &MockGateway{ChannelValue: ChannelInstant}
	d := NewDispatcher(gw)

	_, err := d.Dispatch(context.Background(), ChannelInstant, Batch{PaymentFor: debt.CategoryShipment})

	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Equal(t, 0, gw.DispatchCalls)
}

func TestDispatcherUnknownChannel(t *testing.T) {
	d := NewDispatcher(&MockGateway{ChannelValue: ChannelInstant})

	_, err := d.Dispatch(context.Background(), ChannelRedirect, Batch{RequestIDs: []string{"A"}})
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestDispatcherRoutesByChannel(t *testing.T) {
	instant := &MockGateway{ChannelValue: ChannelInstant}
	redirect := &MockGateway{ChannelValue: ChannelRedirect}
	d := NewDispatcher(instant, redirect)

	out, err := d.Dispatch(context.Background(), ChannelRedirect, Batch{RequestIDs: []string{"A"}})
	require.NoError(t, err)
	assert.Equal(t, ChannelRedirect, out.Channel)
	assert.Equal(t, 0, instant.DispatchCalls)
	assert.Equal(t, 1, redirect.DispatchCalls)
}

func TestRedirectValidateNeedsSettledConversion(t *testing.T) {
	g := NewRedirectGateway("http://gw", "http://app", NewMemoryPendingStore(), 0, nil)
	base := Batch{RequestIDs: []string{"A"}, HomeAmount: decimal.NewFromInt(80)}

	inFlight := base
	assert.ErrorIs(t, g.Validate(inFlight), ErrConversionUnavailable)

	failed := base
	failed.Converted = decimal.Zero
	assert.ErrorIs(t, g.Validate(failed), ErrConversionUnavailable)

	ok := base
	ok.Converted = decimal.RequireFromString("17.04")
	ok.ConversionSettled = true
	assert.NoError(t, g.Validate(ok))
}

func TestParseChannel(t *testing.T) {
	c, err := ParseChannel("redirect")
	require.NoError(t, err)
	assert.Equal(t, ChannelRedirect, c)

	_, err = ParseChannel("card")
	assert.ErrorIs(t, err, ErrUnknownChannel)
}
