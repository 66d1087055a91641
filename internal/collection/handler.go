package collection

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/driverpay/internal/debt"
	"github.com/fkhayef/driverpay/internal/payment"
	"github.com/fkhayef/driverpay/internal/reconcile"
	"github.com/fkhayef/driverpay/pkg/middleware"
	"github.com/fkhayef/driverpay/pkg/response"
)

// Handler handles HTTP requests for the collection workflow
type Handler struct {
	manager  *Manager
	identify func(http.Handler) http.Handler
}

// NewHandler creates a new collection handler. identify must put the driver
// id in the request context.
func NewHandler(manager *Manager, identify func(http.Handler) http.Handler) *Handler {
	return &Handler{manager: manager, identify: identify}
}

// Routes returns the router for collection endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	// Reached by a plain page load from the gateway; the token identifies the payment
	r.Get("/payments/return", h.Return)

	r.Group(func(r chi.Router) {
		r.Use(h.identify)

		r.Get("/debts", h.ListDebts)
		r.Post("/debts/refresh", h.RefreshDebts)
		r.Get("/selection", h.GetSelection)
		r.Put("/selection/active", h.SetActive)
		r.Post("/selection/{category}/toggle", h.Toggle)
		r.Post("/selection/{category}/all", h.SelectAll)
		r.Delete("/selection/{category}", h.Clear)
		r.Post("/conversion/retry", h.RetryConversion)
		r.Post("/payments", h.Pay)
		r.Get("/payments/last", h.LastAttempt)
	})

	return r
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	driverID, ok := middleware.GetDriverID(r.Context())
	if !ok {
		response.Unauthorized(w, "Driver identity required")
		return nil, false
	}
	return h.manager.Session(driverID), true
}

// categories resolves the optional ?category= filter
func categories(r *http.Request) ([]debt.Category, error) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		return debt.Categories, nil
	}
	c, err := debt.ParseCategory(raw)
	if err != nil {
		return nil, err
	}
	return []debt.Category{c}, nil
}

func pathCategory(w http.ResponseWriter, r *http.Request) (debt.Category, bool) {
	c, err := debt.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return "", false
	}
	return c, true
}

// ListDebts godoc
// @Summary  List collectible debts
// @Tags     collections
// @Produce  json
// @Param    category  query  string  false  "SHIPMENT or BUY4ME"
// @Success  200  {object}  response.APIResponse{data=[]debt.CategoryView}
// @Failure  502  {object}  response.APIResponse
// @Router   /collections/debts [get]
func (h *Handler) ListDebts(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	cats, err := categories(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	views := make([]*debt.CategoryView, 0, len(cats))
	for _, c := range cats {
		v, err := s.Debts(r.Context(), c)
		if err != nil {
			response.BadGateway(w, err.Error())
			return
		}
		views = append(views, v)
	}

	response.JSON(w, http.StatusOK, views)
}

// RefreshDebts godoc
// @Summary  Refetch debts and drop stale selections
// @Tags     collections
// @Produce  json
// @Param    category  query  string  false  "SHIPMENT or BUY4ME"
// @Success  200  {object}  response.APIResponse{data=[]debt.CategoryView}
// @Failure  502  {object}  response.APIResponse
// @Router   /collections/debts/refresh [post]
func (h *Handler) RefreshDebts(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	cats, err := categories(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	views := make([]*debt.CategoryView, 0, len(cats))
	for _, c := range cats {
		v, err := s.Refresh(r.Context(), c)
		if err != nil {
			response.BadGateway(w, err.Error())
			return
		}
		views = append(views, v)
	}

	response.JSON(w, http.StatusOK, views)
}

// GetSelection godoc
// @Summary  Current selection, totals and payability
// @Tags     collections
// @Produce  json
// @Param    wait  query  bool  false  "Wait for the conversion in flight"
// @Success  200  {object}  response.APIResponse{data=View}
// @Router   /collections/selection [get]
func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("wait") == "true" {
		// A cancelled wait still returns the current snapshot
		_, _ = s.AwaitConversion(r.Context())
	}
	response.JSON(w, http.StatusOK, s.View())
}

// SetActive godoc
// @Summary  Switch the category being paid
// @Tags     collections
// @Accept   json
// @Produce  json
// @Param    request  body  SetActiveRequest  true  "Category"
// @Success  200  {object}  response.APIResponse{data=View}
// @Router   /collections/selection/active [put]
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	c, err := debt.ParseCategory(req.Category)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	s.SetActive(c)
	response.JSON(w, http.StatusOK, s.View())
}

// Toggle godoc
// @Summary  Select or deselect one debt
// @Tags     collections
// @Accept   json
// @Produce  json
// @Param    category  path  string         true  "SHIPMENT or BUY4ME"
// @Param    request   body  ToggleRequest  true  "Debt id"
// @Success  200  {object}  response.APIResponse{data=ToggleResponse}
// @Failure  404  {object}  response.APIResponse
// @Router   /collections/selection/{category}/toggle [post]
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	c, ok := pathCategory(w, r)
	if !ok {
		return
	}

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.ID == "" {
		response.BadRequest(w, "Debt id is required")
		return
	}

	selected, err := s.Toggle(c, req.ID)
	if err != nil {
		response.NotFound(w, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, &ToggleResponse{ID: req.ID, Selected: selected, View: s.View()})
}

// SelectAll godoc
// @Summary  Select every listed debt of a category
// @Tags     collections
// @Produce  json
// @Param    category  path  string  true  "SHIPMENT or BUY4ME"
// @Success  200  {object}  response.APIResponse{data=View}
// @Router   /collections/selection/{category}/all [post]
func (h *Handler) SelectAll(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	c, ok := pathCategory(w, r)
	if !ok {
		return
	}

	s.SelectAll(c)
	response.JSON(w, http.StatusOK, s.View())
}

// Clear godoc
// @Summary  Clear a category selection
// @Tags     collections
// @Produce  json
// @Param    category  path  string  true  "SHIPMENT or BUY4ME"
// @Success  200  {object}  response.APIResponse{data=View}
// @Router   /collections/selection/{category} [delete]
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	c, ok := pathCategory(w, r)
	if !ok {
		return
	}

	s.Clear(c)
	response.JSON(w, http.StatusOK, s.View())
}

// RetryConversion godoc
// @Summary  Retry a failed conversion
// @Tags     collections
// @Produce  json
// @Success  202  {object}  response.APIResponse{data=View}
// @Router   /collections/conversion/retry [post]
func (h *Handler) RetryConversion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.RetryConversion()
	response.JSON(w, http.StatusAccepted, s.View())
}

// Pay godoc
// @Summary  Pay the active selection
// @Tags     collections
// @Accept   json
// @Produce  json
// @Param    request  body  PayRequest  true  "INSTANT or REDIRECT"
// @Success  200  {object}  response.APIResponse{data=Attempt}
// @Failure  409  {object}  response.APIResponse
// @Failure  422  {object}  response.APIResponse
// @Failure  502  {object}  response.APIResponse
// @Router   /collections/payments [post]
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	channel, err := payment.ParseChannel(req.Channel)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	attempt, err := s.Pay(r.Context(), channel)
	if err != nil {
		writePaymentError(w, attempt, err)
		return
	}

	response.JSON(w, http.StatusOK, attempt)
}

// Return godoc
// @Summary  Return leg of a redirect payment
// @Tags     collections
// @Produce  json
// @Param    token   query  string  true   "Pending transaction token"
// @Param    status  query  string  false  "Gateway status"
// @Success  200  {object}  response.APIResponse{data=Attempt}
// @Failure  404  {object}  response.APIResponse
// @Failure  422  {object}  response.APIResponse
// @Router   /collections/payments/return [get]
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.BadRequest(w, "Token is required")
		return
	}

	// The gateway only redirects here after verifying the payment on its side.
	// Nothing is settled without a pending record for the token, and the bulk
	// endpoint decides which debts are actually paid.
	attempt, err := h.manager.Resume(r.Context(), token, ParseGatewayStatus(r.URL.Query().Get("status")))
	if err != nil {
		writePaymentError(w, attempt, err)
		return
	}

	response.JSON(w, http.StatusOK, attempt)
}

// LastAttempt godoc
// @Summary  Outcome of the latest payment attempt
// @Tags     collections
// @Produce  json
// @Success  200  {object}  response.APIResponse{data=Attempt}
// @Failure  404  {object}  response.APIResponse
// @Router   /collections/payments/last [get]
func (h *Handler) LastAttempt(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	attempt := s.LastAttempt()
	if attempt == nil {
		response.NotFound(w, "No payment attempted yet")
		return
	}
	response.JSON(w, http.StatusOK, attempt)
}

func writePaymentError(w http.ResponseWriter, attempt *Attempt, err error) {
	switch {
	case errors.Is(err, ErrDispatchInProgress):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrUnknownTransaction):
		response.NotFound(w, err.Error())
	case errors.Is(err, payment.ErrEmptySelection):
		response.UnprocessableEntity(w, "EMPTY_SELECTION", err.Error())
	case errors.Is(err, payment.ErrConversionUnavailable):
		response.UnprocessableEntity(w, "CONVERSION_UNAVAILABLE", err.Error())
	case errors.Is(err, ErrPaymentNotCompleted):
		response.UnprocessableEntity(w, "PAYMENT_NOT_COMPLETED", err.Error())
	case errors.Is(err, payment.ErrUnknownChannel):
		response.BadRequest(w, err.Error())
	case errors.Is(err, reconcile.ErrInconsistentResult), errors.Is(err, payment.ErrGatewayRejected):
		response.BadGateway(w, err.Error())
	case attempt != nil && attempt.Status == StatusFailed:
		response.BadGateway(w, err.Error())
	default:
		response.InternalError(w, "Failed to process payment")
	}
}
