package conversion

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// State is a snapshot of the pipeline.
// Converted is nil while a conversion is in flight and zero after a failure.
type State struct {
	HomeAmount   decimal.Decimal  `json:"home_amount"`
	HomeCurrency string           `json:"home_currency"`
	Converted    *decimal.Decimal `json:"converted_amount"`
	Currency     string           `json:"converted_currency"`
	InProgress   bool             `json:"in_progress"`
	Settled      bool             `json:"settled"`
	Error        string           `json:"error,omitempty"`
}

// Payable reports whether the converted amount can back a redirect payment
func (s State) Payable() bool {
	return s.Settled && !s.InProgress && s.Converted != nil && s.Converted.IsPositive()
}

// Stats counts issued conversions and results dropped as stale
type Stats struct {
	Issued  uint64
	Dropped uint64
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithTimeout bounds each conversion call
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithSettleHook is called, outside the lock, whenever the current generation settles
func WithSettleHook(fn func(State, error)) Option {
	return func(p *Pipeline) { p.onSettle = fn }
}

// Pipeline recomputes the converted total whenever the home amount changes.
// Every call is tagged with a generation; only the current generation may commit.
type Pipeline struct {
	conv     Converter
	from, to string
	timeout  time.Duration
	onSettle func(State, error)

	mu         sync.Mutex
	started    bool
	gen        uint64
	amount     decimal.Decimal
	converted  *decimal.Decimal
	settled    bool
	inProgress bool
	err        error
	done       chan struct{} // closed when the current generation settles or is superseded
	stats      Stats
}

// NewPipeline creates a pipeline converting from -> to
func NewPipeline(conv Converter, from, to string, opts ...Option) *Pipeline {
	done := make(chan struct{})
	close(done)
	p := &Pipeline{
		conv:    conv,
		from:    from,
		to:      to,
		timeout: 5 * time.Second,
		done:    done,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Update feeds a new home amount. Unchanged amounts are ignored.
func (p *Pipeline) Update(amount decimal.Decimal) {
	p.mu.Lock()
	if p.started && amount.Equal(p.amount) {
		p.mu.Unlock()
		return
	}
	p.issueLocked(amount)
}

// Retry reissues the conversion for the current amount, e.g. after a failure
func (p *Pipeline) Retry() {
	p.mu.Lock()
	p.issueLocked(p.amount)
}

// issueLocked starts a new generation and releases the lock
func (p *Pipeline) issueLocked(amount decimal.Decimal) {
	p.started = true
	p.gen++
	gen := p.gen
	closeOnce(p.done)
	p.done = make(chan struct{})
	p.amount = amount
	p.err = nil

	if !amount.IsPositive() {
		zero := decimal.Zero
		p.converted = &zero
		p.settled = true
		p.inProgress = false
		close(p.done)
		state := p.stateLocked()
		p.mu.Unlock()
		p.notify(state, nil)
		return
	}

	p.converted = nil
	p.settled = false
	p.inProgress = true
	p.stats.Issued++
	p.mu.Unlock()

	go p.run(gen, amount)
}

func (p *Pipeline) run(gen uint64, amount decimal.Decimal) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	result, err := p.conv.Convert(ctx, amount, p.from, p.to)
	p.commit(gen, amount, result, err)
}

func (p *Pipeline) commit(gen uint64, amount, result decimal.Decimal, err error) {
	p.mu.Lock()
	if gen != p.gen {
		p.stats.Dropped++
		current := p.amount
		p.mu.Unlock()
		log.Printf("conversion: dropping stale result for %s %s (now %s)", amount, p.from, current)
		return
	}

	p.inProgress = false
	if err != nil {
		zero := decimal.Zero
		p.converted = &zero
		p.settled = false
		p.err = err
	} else {
		rounded := result.Round(2)
		p.converted = &rounded
		p.settled = true
	}
	close(p.done)
	state := p.stateLocked()
	p.mu.Unlock()

	if err != nil {
		log.Printf("conversion: %s %s -> %s failed: %v", amount, p.from, p.to, err)
	}
	p.notify(state, err)
}

func (p *Pipeline) notify(state State, err error) {
	if p.onSettle != nil {
		p.onSettle(state, err)
	}
}

// State returns the current snapshot
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Pipeline) stateLocked() State {
	s := State{
		HomeAmount:   p.amount,
		HomeCurrency: p.from,
		Currency:     p.to,
		InProgress:   p.inProgress,
		Settled:      p.settled,
	}
	if p.converted != nil {
		c := *p.converted
		s.Converted = &c
	}
	if p.err != nil {
		s.Error = p.err.Error()
	}
	return s
}

// Wait blocks until the current generation settles
func (p *Pipeline) Wait(ctx context.Context) (State, error) {
	for {
		p.mu.Lock()
		if !p.inProgress {
			s := p.stateLocked()
			p.mu.Unlock()
			return s, nil
		}
		done := p.done
		p.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return p.State(), ctx.Err()
		}
	}
}

// Stats returns call counters
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func closeOnce(ch chan struct{}) {
	select {
	case <-ch:
	default:
		close(ch)
	}
}
