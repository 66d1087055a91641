package collection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/driverpay/internal/debt"
	"github.com/fkhayef/driverpay/internal/events"
	"github.com/fkhayef/driverpay/internal/notice"
	"github.com/fkhayef/driverpay/internal/payment"
)

// stubSource serves fixed listings that tests can swap out
type stubSource struct {
	mu    sync.Mutex
	debts map[debt.Category][]debt.Debt
	calls map[debt.Category]int
}

func newStubSource() *stubSource {
	return &stubSource{debts: map[debt.Category][]debt.Debt{}, calls: map[debt.Category]int{}}
}

func (s *stubSource) set(category debt.Category, amounts ...any) {
	var debts []debt.Debt
	for i := 0; i+1 < len(amounts); i += 2 {
		debts = append(debts, debt.Debt{
			ID:       amounts[i].(string),
			Amount:   decimal.NewFromInt(int64(amounts[i+1].(int))),
			Currency: "MYR",
		})
	}
	s.mu.Lock()
	s.debts[category] = debts
	s.mu.Unlock()
}

func (s *stubSource) callCount(category debt.Category) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[category]
}

func (s *stubSource) List(_ context.Context, category debt.Category, _ debt.Filter) ([]debt.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[category]++
	return append([]debt.Debt(nil), s.debts[category]...), nil
}

// rateConverter multiplies by a fixed rate, or fails with err
type rateConverter struct {
	rate decimal.Decimal
	err  error
}

func (c rateConverter) Convert(_ context.Context, amount decimal.Decimal, _, _ string) (decimal.Decimal, error) {
	if c.err != nil {
		return decimal.Zero, c.err
	}
	return amount.Mul(c.rate), nil
}

type bulkCall struct {
	PaymentFor string   `json:"payment_for"`
	RequestIDs []string `json:"request_ids"`
}

// bulkServer records bulk payment calls and answers with respond
type bulkServer struct {
	*httptest.Server

	mu      sync.Mutex
	calls   []bulkCall
	respond func(call bulkCall) (int, any)
}

func newBulkServer(t *testing.T) *bulkServer {
	b := &bulkServer{respond: func(call bulkCall) (int, any) {
		return http.StatusOK, map[string]any{
			"payments_created": len(call.RequestIDs),
			"total_amount":     "0",
			"failed_requests":  []any{},
		}
	}}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call bulkCall
		_ = json.NewDecoder(r.Body).Decode(&call)
		b.mu.Lock()
		b.calls = append(b.calls, call)
		respond := b.respond
		b.mu.Unlock()

		status, body := respond(call)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *bulkServer) hits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func (b *bulkServer) last() bulkCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[len(b.calls)-1]
}

// gatewayServer is the redirect gateway's initiation endpoint
type gatewayServer struct {
	*httptest.Server

	mu   sync.Mutex
	hits int
}

func newGatewayServer(t *testing.T) *gatewayServer {
	g := &gatewayServer{}
	g.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.hits++
		g.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"checkout_url": "https://gateway.test/checkout/1"})
	}))
	t.Cleanup(g.Close)
	return g
}

func (g *gatewayServer) hitCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hits
}

// capturePublisher keeps published events in memory
type capturePublisher struct {
	mu     sync.Mutex
	events []events.Reconciled
}

func (p *capturePublisher) PublishReconciled(_ context.Context, ev events.Reconciled) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) published() []events.Reconciled {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Reconciled(nil), p.events...)
}

type fixture struct {
	source    *stubSource
	bulk      *bulkServer
	gateway   *gatewayServer
	pending   *payment.MemoryPendingStore
	notices   *notice.Service
	publisher *capturePublisher
	deps      Dependencies
}

func newFixture(t *testing.T, conv rateConverter) *fixture {
	t.Helper()
	f := &fixture{
		source:    newStubSource(),
		bulk:      newBulkServer(t),
		gateway:   newGatewayServer(t),
		pending:   payment.NewMemoryPendingStore(),
		notices:   notice.NewService(notice.NewMemoryStore()),
		publisher: &capturePublisher{},
	}
	f.deps = f.dependencies(conv)
	return f
}

// dependencies builds a fresh dependency set sharing only the external state
func (f *fixture) dependencies(conv rateConverter) Dependencies {
	instant := payment.NewInstantGateway(f.bulk.URL, "", nil)
	redirect := payment.NewRedirectGateway(f.gateway.URL, "http://driverpay.test", f.pending, time.Minute, nil)
	return Dependencies{
		Source:            f.source,
		Converter:         conv,
		Dispatcher:        payment.NewDispatcher(instant, redirect),
		Confirmer:         instant,
		Pending:           f.pending,
		Notices:           f.notices,
		Publisher:         f.publisher,
		HomeCurrency:      "MYR",
		TargetCurrency:    "USD",
		ConversionTimeout: time.Second,
		PendingTTL:        time.Minute,
	}
}

func (f *fixture) noticeKinds(t *testing.T, driverID string) []notice.Kind {
	t.Helper()
	list, _, err := f.notices.ListByDriverID(context.Background(), driverID, 1, 100, false)
	if err != nil {
		t.Fatalf("list notices: %v", err)
	}
	kinds := make([]notice.Kind, len(list))
	for i, n := range list {
		kinds[i] = n.Kind
	}
	return kinds
}

var quarter = rateConverter{rate: decimal.RequireFromString("0.25")}
