package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"coffee-orders/internal/model"
	"coffee-orders/internal/pagination"
	"coffee-orders/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// stubUserID stands in for the authenticated buyer.
// TODO: replace with the user resolved from the session once auth lands.
var stubUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	orders service.OrderService
	query  service.OrderQueryService
	logger zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderService, query service.OrderQueryService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		query:  query,
		logger: logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests. A replayed idempotency key
// returns the existing order with 200 instead of 201.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	idempotencyKey := r.Header.Get("Idempotency-Key")
	if idempotencyKey == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput,
			"Idempotency-Key header is required", h.logger)
		return
	}

	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput,
			"invalid request body", h.logger)
		return
	}

	result, err := h.orders.CreateOrder(r.Context(), stubUserID, idempotencyKey, req.Items)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	status := http.StatusCreated
	if result.IsDuplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, result.Order)
}

// List handles GET /api/orders requests with optional status/date filters
// and relay-style cursor pagination.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := model.OrderFilter{
		Status:   q.Get("status"),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
	}

	page := pagination.Args{
		After:  q.Get("after"),
		Before: q.Get("before"),
	}

	first, ok := parseOptionalInt(w, q.Get("first"), "first", h.logger)
	if !ok {
		return
	}
	last, ok := parseOptionalInt(w, q.Get("last"), "last", h.logger)
	if !ok {
		return
	}
	page.First = first
	page.Last = last

	connection, err := h.query.ListOrders(r.Context(), filter, page)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, connection)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput,
			"order ID must be a valid UUID", h.logger)
		return
	}

	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// parseOptionalInt parses an optional integer query parameter, writing a 400
// response and returning ok=false when the value is not an integer.
func parseOptionalInt(w http.ResponseWriter, value, name string, logger zerolog.Logger) (*int, bool) {
	if value == "" {
		return nil, true
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput,
			name+" must be an integer", logger)
		return nil, false
	}

	return &n, true
}
