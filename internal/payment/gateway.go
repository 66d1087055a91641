package payment

import (
	"context"
	"fmt"
)

// Gateway is implemented by each payment channel
type Gateway interface {
	// Channel returns the channel this gateway serves
	Channel() Channel

	// Validate checks the batch locally, without any network call
	Validate(batch Batch) error

	// Dispatch hands the batch to the external gateway
	Dispatch(ctx context.Context, batch Batch) (*Outcome, error)
}

// Dispatcher routes batches to the gateway registered for a channel
type Dispatcher struct {
	gateways map[Channel]Gateway
}

// NewDispatcher registers the given gateways
func NewDispatcher(gateways ...Gateway) *Dispatcher {
	d := &Dispatcher{gateways: make(map[Channel]Gateway, len(gateways))}
	for _, g := range gateways {
		d.gateways[g.Channel()] = g
	}
	return d
}

// Gateway returns the gateway for a channel
func (d *Dispatcher) Gateway(channel Channel) (Gateway, error) {
	g, ok := d.gateways[channel]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, channel)
	}
	return g, nil
}

// Validate runs the shared and channel-specific checks
func (d *Dispatcher) Validate(channel Channel, batch Batch) (Gateway, error) {
	g, err := d.Gateway(channel)
	if err != nil {
		return nil, err
	}
	if len(batch.RequestIDs) == 0 {
		return nil, ErrEmptySelection
	}
	if err := g.Validate(batch); err != nil {
		return nil, err
	}
	return g, nil
}

// Dispatch validates then dispatches; validation failures never reach the network
func (d *Dispatcher) Dispatch(ctx context.Context, channel Channel, batch Batch) (*Outcome, error) {
	g, err := d.Validate(channel, batch)
	if err != nil {
		return nil, err
	}
	return g.Dispatch(ctx, batch)
}
