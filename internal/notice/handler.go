package notice

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/driverpay/pkg/middleware"
	"github.com/fkhayef/driverpay/pkg/response"
)

// Handler handles HTTP requests for notice operations
type Handler struct {
	service *Service
}

// NewHandler creates a new notice handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for notice endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/unread-count", h.GetUnreadCount)
	r.Post("/{id}/read", h.MarkAsRead)
	r.Post("/read-all", h.MarkAllAsRead)

	return r
}

// NoticeResponse represents the response for a notice
type NoticeResponse struct {
	ID         int64    `json:"id"`
	Kind       Kind     `json:"kind"`
	Message    string   `json:"message"`
	Details    []string `json:"details,omitempty"`
	PaymentFor *string  `json:"payment_for,omitempty"`
	IsRead     bool     `json:"is_read"`
	CreatedAt  string   `json:"created_at"`
}

func toResponse(n *Notice) *NoticeResponse {
	return &NoticeResponse{
		ID:         n.ID,
		Kind:       n.Kind,
		Message:    n.Message,
		Details:    n.Details,
		PaymentFor: n.PaymentFor,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// List godoc
// @Summary  List notices for the driver
// @Tags     notices
// @Produce  json
// @Param    page         query  int   false  "Page"
// @Param    per_page     query  int   false  "Page size"
// @Param    unread_only  query  bool  false  "Only unread"
// @Success  200  {object}  response.APIResponse{data=[]NoticeResponse}
// @Router   /notices [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.GetDriverID(r.Context())
	if !ok {
		response.Unauthorized(w, "Driver identity required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	notices, total, err := h.service.ListByDriverID(r.Context(), driverID, page, perPage, unreadOnly)
	if err != nil {
		response.InternalError(w, "Failed to list notices")
		return
	}

	out := make([]*NoticeResponse, len(notices))
	for i, n := range notices {
		out[i] = toResponse(n)
	}

	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	response.JSONWithMeta(w, http.StatusOK, out, meta)
}

// GetUnreadCount godoc
// @Summary  Count unread notices
// @Tags     notices
// @Produce  json
// @Success  200  {object}  response.APIResponse
// @Router   /notices/unread-count [get]
func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.GetDriverID(r.Context())
	if !ok {
		response.Unauthorized(w, "Driver identity required")
		return
	}

	count, err := h.service.GetUnreadCount(r.Context(), driverID)
	if err != nil {
		response.InternalError(w, "Failed to get unread count")
		return
	}

	response.JSON(w, http.StatusOK, map[string]int{"unread_count": count})
}

// MarkAsRead godoc
// @Summary  Mark a notice as read
// @Tags     notices
// @Param    id  path  int  true  "Notice ID"
// @Success  200  {object}  response.APIResponse
// @Router   /notices/{id}/read [post]
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.GetDriverID(r.Context())
	if !ok {
		response.Unauthorized(w, "Driver identity required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid notice ID")
		return
	}

	if err := h.service.MarkAsRead(r.Context(), id, driverID); err != nil {
		if errors.Is(err, ErrNoticeNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotRecipient) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to mark notice as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Notice marked as read"})
}

// MarkAllAsRead godoc
// @Summary  Mark all notices as read
// @Tags     notices
// @Success  200  {object}  response.APIResponse
// @Router   /notices/read-all [post]
func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.GetDriverID(r.Context())
	if !ok {
		response.Unauthorized(w, "Driver identity required")
		return
	}

	if err := h.service.MarkAllAsRead(r.Context(), driverID); err != nil {
		response.InternalError(w, "Failed to mark all notices as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "All notices marked as read"})
}
