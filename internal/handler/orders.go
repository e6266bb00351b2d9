package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
	"github.com/aryan0dhankhar/ordertrack/internal/httpx"
	"github.com/aryan0dhankhar/ordertrack/internal/security/middleware"
	"github.com/aryan0dhankhar/ordertrack/internal/service"
)

// OrdersHandler handles order endpoints
type OrdersHandler struct {
	orders *service.OrderService
	logger *slog.Logger
}

// NewOrdersHandler creates a new orders handler
func NewOrdersHandler(orders *service.OrderService, logger *slog.Logger) *OrdersHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrdersHandler{orders: orders, logger: logger}
}

// List handles GET /api/orders?projectId&page&limit&paymentStatus&deliveryStatus&search
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var in service.ListOrdersInput
	if raw := q.Get("projectId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Error(w, r, h.logger, domain.NewValidationError("Invalid project ID",
				map[string]string{"projectId": "must be an integer"}))
			return
		}
		in.ProjectID = id
	}

	var err error
	if in.Page, err = queryInt(r, "page"); err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	if in.Limit, err = queryInt(r, "limit"); err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	in.PaymentStatus = q.Get("paymentStatus")
	in.DeliveryStatus = q.Get("deliveryStatus")
	in.Search = q.Get("search")

	page, err := h.orders.List(r.Context(), middleware.UserFromContext(r.Context()), in)
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

// Create handles POST /api/orders
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderInput
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}

	order, err := h.orders.Create(r.Context(), middleware.UserFromContext(r.Context()), req)
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

// Get handles GET /api/orders/{id}
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "order ID")
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}

	order, err := h.orders.Get(r.Context(), middleware.UserFromContext(r.Context()), id)
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// Update handles PATCH /api/orders/{id}
func (h *OrdersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "order ID")
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}

	var patch domain.OrderPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}

	order, err := h.orders.Update(r.Context(), middleware.UserFromContext(r.Context()), id, patch)
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// Delete handles DELETE /api/orders/{id}
func (h *OrdersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "order ID")
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}

	if err := h.orders.Delete(r.Context(), middleware.UserFromContext(r.Context()), id); err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Order deleted successfully")
}
