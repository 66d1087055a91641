package collection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fkhayef/driverpay/internal/aggregate"
	"github.com/fkhayef/driverpay/internal/conversion"
	"github.com/fkhayef/driverpay/internal/debt"
	"github.com/fkhayef/driverpay/internal/events"
	"github.com/fkhayef/driverpay/internal/notice"
	"github.com/fkhayef/driverpay/internal/payment"
	"github.com/fkhayef/driverpay/internal/reconcile"
	"github.com/fkhayef/driverpay/internal/selection"
)

// Confirmer settles request ids through the bulk payment endpoint
type Confirmer interface {
	Submit(ctx context.Context, paymentFor debt.Category, requestIDs []string) (*payment.BulkPaymentResult, error)
}

// Dependencies are shared by every driver session
type Dependencies struct {
	Source     debt.Source
	Converter  conversion.Converter
	Dispatcher *payment.Dispatcher
	Confirmer  Confirmer
	Pending    payment.PendingStore
	Notices    *notice.Service
	Publisher  events.Publisher

	HomeCurrency      string
	TargetCurrency    string
	ConversionTimeout time.Duration
	PendingTTL        time.Duration

	Now func() time.Time
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Notices == nil {
		d.Notices = notice.NewService(notice.NewMemoryStore())
	}
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.ConversionTimeout <= 0 {
		d.ConversionTimeout = 5 * time.Second
	}
	if d.PendingTTL <= 0 {
		d.PendingTTL = 30 * time.Minute
	}
	return d
}

// Session is one driver's collection workflow. Selection changes and catalog
// refreshes recompute the active total and feed the conversion pipeline.
type Session struct {
	driverID  string
	deps      Dependencies
	catalog   *debt.Catalog
	selection *selection.Store
	pipeline  *conversion.Pipeline
	reporter  *reconcile.Reporter

	// edit serializes selection changes with the recompute that follows them
	edit   sync.Mutex
	loaded map[debt.Category]bool

	mu     sync.Mutex
	status Status
	last   *Attempt
}

// NewSession creates an idle session with empty selections
func NewSession(driverID string, deps Dependencies) *Session {
	deps = deps.withDefaults()
	s := &Session{
		driverID:  driverID,
		deps:      deps,
		catalog:   debt.NewCatalog(deps.Source),
		selection: selection.NewStore(),
		reporter:  reconcile.NewReporter(),
		loaded:    make(map[debt.Category]bool, len(debt.Categories)),
		status:    StatusIdle,
	}
	s.pipeline = conversion.NewPipeline(deps.Converter, deps.HomeCurrency, deps.TargetCurrency,
		conversion.WithTimeout(deps.ConversionTimeout),
		conversion.WithSettleHook(s.onConversionSettled),
	)
	return s
}

// DriverID returns the owner of the session
func (s *Session) DriverID() string {
	return s.driverID
}

func (s *Session) onConversionSettled(state conversion.State, err error) {
	if err == nil {
		return
	}
	s.deps.Notices.NotifyConversionFailed(context.Background(), s.driverID,
		state.HomeAmount.StringFixed(2), state.HomeCurrency, state.Currency, err)
}

// recompute must be called with edit held
func (s *Session) recompute() {
	active := s.selection.Active()
	total := aggregate.Total(active, s.selection.Selected(active), s.catalog.Debts(active))
	s.pipeline.Update(total)
}

// Refresh refetches one category and silently drops selected ids that are
// no longer collectible. On error the previous listing stays in place.
func (s *Session) Refresh(ctx context.Context, category debt.Category) (*debt.CategoryView, error) {
	s.edit.Lock()
	defer s.edit.Unlock()
	if err := s.refreshLocked(ctx, category); err != nil {
		return nil, err
	}
	return s.catalog.View(category), nil
}

func (s *Session) refreshLocked(ctx context.Context, category debt.Category) error {
	if _, err := s.catalog.Refresh(ctx, category); err != nil {
		return fmt.Errorf("failed to refresh %s debts: %w", category, err)
	}
	s.loaded[category] = true
	s.selection.Prune(category, s.catalog.IDs(category))
	s.recompute()
	return nil
}

// RefreshAll refetches every category; a failing category does not stop the others
func (s *Session) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, category := range debt.Categories {
		if _, err := s.Refresh(ctx, category); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Debts returns the category listing, fetching it on first use
func (s *Session) Debts(ctx context.Context, category debt.Category) (*debt.CategoryView, error) {
	s.edit.Lock()
	defer s.edit.Unlock()
	if !s.loaded[category] {
		if err := s.refreshLocked(ctx, category); err != nil {
			return nil, err
		}
	}
	return s.catalog.View(category), nil
}

// Toggle flips one debt in the category selection and returns whether it is
// now selected. Only debts in the current listing can be selected; deselecting
// always succeeds.
func (s *Session) Toggle(category debt.Category, id string) (bool, error) {
	s.edit.Lock()
	defer s.edit.Unlock()
	if !s.selection.Contains(category, id) {
		if _, ok := s.catalog.Get(category, id); !ok {
			return false, fmt.Errorf("%w: %s %s", ErrUnknownDebt, category, id)
		}
	}
	selected := s.selection.Toggle(category, id)
	s.recompute()
	return selected, nil
}

// SelectAll selects every collectible debt currently listed for the category
func (s *Session) SelectAll(category debt.Category) {
	s.edit.Lock()
	defer s.edit.Unlock()
	s.selection.SelectAll(category, s.catalog.IDs(category))
	s.recompute()
}

// Clear empties the category selection
func (s *Session) Clear(category debt.Category) {
	s.edit.Lock()
	defer s.edit.Unlock()
	s.selection.Clear(category)
	s.recompute()
}

// SetActive switches the category being paid; both selections are kept
func (s *Session) SetActive(category debt.Category) {
	s.edit.Lock()
	defer s.edit.Unlock()
	s.selection.SetActive(category)
	s.recompute()
}

// RetryConversion reissues the conversion for the current total
func (s *Session) RetryConversion() {
	s.pipeline.Retry()
}

// AwaitConversion blocks until the current conversion settles
func (s *Session) AwaitConversion(ctx context.Context) (conversion.State, error) {
	return s.pipeline.Wait(ctx)
}

// Status returns the live state of the payment state machine
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LastAttempt returns the most recent finished attempt, if any
func (s *Session) LastAttempt() *Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	cp := *s.last
	return &cp
}

// View snapshots the session for the client
func (s *Session) View() *View {
	s.edit.Lock()
	active := s.selection.Active()
	selected := make(map[debt.Category][]string, len(debt.Categories))
	counts := make(map[debt.Category]int, len(debt.Categories))
	for _, category := range debt.Categories {
		selected[category] = s.selection.Selected(category)
		counts[category] = s.catalog.Count(category)
	}
	summary := aggregate.Summarize(active, selected[active], s.catalog.Debts(active), s.deps.HomeCurrency)
	s.edit.Unlock()

	state := s.pipeline.State()
	status := s.Status()
	idle := status == StatusIdle
	return &View{
		DriverID:       s.driverID,
		Active:         active,
		Selected:       selected,
		Counts:         counts,
		Total:          summary,
		Conversion:     state,
		CanPayInstant:  idle && len(selected[active]) > 0,
		CanPayRedirect: idle && len(selected[active]) > 0 && state.Payable(),
		Status:         status,
		LastAttempt:    s.LastAttempt(),
	}
}

// begin claims the in-flight slot; a second dispatch is refused until finish
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusIdle {
		return ErrDispatchInProgress
	}
	s.status = StatusValidating
	return nil
}

func (s *Session) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

func (s *Session) finish(a *Attempt) {
	a.FinishedAt = s.deps.Now().UTC()
	s.mu.Lock()
	s.last = a
	s.status = StatusIdle
	s.mu.Unlock()
}

// batch captures the active selection together with its converted total.
// Only ids that contributed to the total are sent for payment.
func (s *Session) batch() payment.Batch {
	s.edit.Lock()
	active := s.selection.Active()
	summary := aggregate.Summarize(active, s.selection.Selected(active), s.catalog.Debts(active), s.deps.HomeCurrency)
	s.edit.Unlock()
	ids := summary.IDs

	state := s.pipeline.State()
	b := payment.Batch{
		DriverID:          s.driverID,
		PaymentFor:        active,
		RequestIDs:        ids,
		HomeAmount:        summary.HomeAmount,
		HomeCurrency:      s.deps.HomeCurrency,
		ConvertedCurrency: s.deps.TargetCurrency,
		ConversionSettled: state.Settled && !state.InProgress && state.HomeAmount.Equal(summary.HomeAmount),
		Description:       fmt.Sprintf("COD collection for %d %s debt(s)", len(ids), active),
	}
	if state.Converted != nil {
		b.Converted = *state.Converted
	}
	return b
}

// Pay validates the active selection and hands it to the channel's gateway.
// Validation failures never reach the network. Instant results are reconciled
// before returning; redirect results carry the URL the driver must open.
func (s *Session) Pay(ctx context.Context, channel payment.Channel) (*Attempt, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	attempt := &Attempt{Channel: channel, StartedAt: s.deps.Now().UTC()}
	defer s.finish(attempt)

	batch := s.batch()
	attempt.PaymentFor = batch.PaymentFor
	attempt.RequestIDs = batch.RequestIDs

	gw, err := s.deps.Dispatcher.Validate(channel, batch)
	if err != nil {
		attempt.reject(err)
		s.deps.Notices.NotifyValidation(ctx, s.driverID, string(batch.PaymentFor), err)
		return attempt, err
	}

	s.setStatus(StatusDispatching)
	outcome, err := gw.Dispatch(ctx, batch)
	if err != nil {
		attempt.fail(err)
		log.Printf("collection: %s dispatch for %s failed: %v", channel, s.driverID, err)
		s.deps.Notices.NotifyDispatchFailed(ctx, s.driverID, string(batch.PaymentFor), err)
		return attempt, err
	}

	if outcome.Redirect != nil {
		attempt.Status = StatusSucceeded
		attempt.Redirect = outcome.Redirect
		return attempt, nil
	}
	return attempt, s.settle(ctx, attempt, outcome.Result)
}

// Resume finishes a redirect payment from its pending record. A successful
// gateway payment is confirmed through the bulk endpoint and reconciled like
// an instant one; a failed or cancelled one leaves the selection untouched.
// status comes from the return URL; the gateway verifies the payment on its
// side before redirecting, and the bulk endpoint settles only what it accepts.
func (s *Session) Resume(ctx context.Context, tx *payment.PendingTransaction, status GatewayStatus) (*Attempt, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	attempt := &Attempt{
		Channel:    payment.ChannelRedirect,
		PaymentFor: tx.PaymentFor,
		RequestIDs: append([]string(nil), tx.RequestIDs...),
		StartedAt:  s.deps.Now().UTC(),
	}
	defer s.finish(attempt)

	if status != GatewayStatusSuccess {
		err := fmt.Errorf("%w: %s", ErrPaymentNotCompleted, status)
		attempt.fail(err)
		s.deps.Notices.NotifyDispatchFailed(ctx, s.driverID, string(tx.PaymentFor), err)
		return attempt, err
	}

	s.setStatus(StatusDispatching)
	result, err := s.deps.Confirmer.Submit(ctx, tx.PaymentFor, tx.RequestIDs)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrConfirmationFailed, err)
		attempt.fail(err)
		log.Printf("collection: confirming redirect payment %s failed: %v", tx.Token, err)
		s.deps.Notices.NotifyDispatchFailed(ctx, s.driverID, string(tx.PaymentFor), err)
		return attempt, err
	}
	return attempt, s.settle(ctx, attempt, result)
}

// settle reconciles a bulk result against the attempt's request ids, deselects
// what was paid and refreshes the catalog. An inconsistent result changes no selection.
func (s *Session) settle(ctx context.Context, attempt *Attempt, result *payment.BulkPaymentResult) error {
	report, err := reconcile.Reconcile(attempt.PaymentFor, attempt.Channel, attempt.RequestIDs, result)
	if err != nil {
		attempt.fail(err)
		log.Printf("collection: cannot reconcile %s batch for %s: %v", attempt.PaymentFor, s.driverID, err)
		s.refreshAfterPayment(ctx, attempt.PaymentFor)
		s.deps.Notices.NotifyDispatchFailed(ctx, s.driverID, string(attempt.PaymentFor), err)
		return err
	}

	attempt.Status = StatusSucceeded
	attempt.Report = report

	s.edit.Lock()
	s.reporter.Apply(report, s.selection)
	s.recompute()
	s.edit.Unlock()

	s.refreshAfterPayment(ctx, attempt.PaymentFor)
	s.deps.Notices.NotifyReconciled(ctx, s.driverID, string(report.PaymentFor), report.Summary(), report.Messages())
	s.publish(ctx, report)
	return nil
}

// refreshAfterPayment keeps the current listing if the refetch fails
func (s *Session) refreshAfterPayment(ctx context.Context, category debt.Category) {
	if _, err := s.Refresh(ctx, category); err != nil {
		log.Printf("collection: post-payment refresh for %s: %v", s.driverID, err)
	}
}

func (s *Session) publish(ctx context.Context, report *reconcile.Report) {
	ev := events.Reconciled{
		DriverID:        s.driverID,
		Channel:         string(report.Channel),
		PaymentFor:      string(report.PaymentFor),
		RequestIDs:      report.RequestIDs,
		Created:         report.Created,
		TotalAmount:     report.TotalAmount,
		PartiallyFailed: report.PartiallyFailed(),
		OccurredAt:      s.deps.Now().UTC(),
	}
	for _, f := range report.Failed {
		ev.Failed = append(ev.Failed, events.FailedPayment{RequestID: f.ID, Error: f.Reason})
	}
	if err := s.deps.Publisher.PublishReconciled(ctx, ev); err != nil {
		log.Printf("collection: %v", err)
	}
}
