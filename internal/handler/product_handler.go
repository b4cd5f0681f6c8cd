package handler

import (
	"net/http"

	"coffee-orders/internal/model"
	"coffee-orders/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductHandler handles catalog HTTP requests.
type ProductHandler struct {
	products service.ProductService
	logger   zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(products service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		logger:   logger.With().Str("handler", "product").Logger(),
	}
}

// Find handles GET /api/products requests with optional search and sort.
func (h *ProductHandler) Find(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	products, err := h.products.Find(r.Context(), model.ProductQuery{
		Search: q.Get("search"),
		Sort:   model.ProductSort(q.Get("sort")),
	})
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput,
			"product ID must be a valid UUID", h.logger)
		return
	}

	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}
