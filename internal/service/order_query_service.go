package service

import (
	"context"
	"fmt"
	"time"

	"coffee-orders/internal/model"
	"coffee-orders/internal/pagination"
	"coffee-orders/internal/repository"

	"github.com/rs/zerolog"
)

// orderQueryService implements OrderQueryService. The full filtered list is
// fetched and sorted by the store; the page window is computed in memory so
// totalCount is exact and cursor membership is verifiable.
type orderQueryService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewOrderQueryService creates a new order query service.
func NewOrderQueryService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) OrderQueryService {
	return &orderQueryService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "order_query").Logger(),
	}
}

// ListOrders returns a windowed view of the filtered order list. Nodes carry
// their items, and each item its product, resolved through a single batched
// product lookup per call.
func (s *orderQueryService) ListOrders(
	ctx context.Context,
	filter model.OrderFilter,
	page pagination.Args,
) (*model.OrdersConnection, error) {
	window, err := page.Normalize()
	if err != nil {
		return nil, err
	}

	repoFilter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.List(ctx, repoFilter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	start, end, err := resolveWindow(orders, window)
	if err != nil {
		return nil, err
	}

	windowItems := orders[start:end]

	var nodes []model.Order
	var pageStart int
	if window.First > 0 {
		nodes = windowItems[:min(window.First, len(windowItems))]
		pageStart = start
	} else {
		n := min(window.Last, len(windowItems))
		nodes = windowItems[len(windowItems)-n:]
		pageStart = end - n
	}
	pageEnd := pageStart + len(nodes)

	connection := &model.OrdersConnection{
		Nodes:      nodes,
		TotalCount: len(orders),
		PageInfo: model.PageInfo{
			HasPreviousPage: pageStart > 0,
			HasNextPage:     pageEnd < len(orders),
		},
	}

	if len(nodes) > 0 {
		startCursor := pagination.NewCursor(nodes[0].ID, nodes[0].CreatedAt).Encode()
		endCursor := pagination.NewCursor(nodes[len(nodes)-1].ID, nodes[len(nodes)-1].CreatedAt).Encode()
		connection.PageInfo.StartCursor = &startCursor
		connection.PageInfo.EndCursor = &endCursor
	}

	loader := NewProductLoader(s.productRepo)
	if err := loader.AttachProducts(ctx, connection.Nodes); err != nil {
		s.logger.Error().Err(err).Msg("failed to resolve page products")
		return nil, fmt.Errorf("failed to resolve page products: %w", err)
	}

	s.logger.Debug().
		Int("total_count", connection.TotalCount).
		Int("page_size", len(nodes)).
		Msg("orders listed")

	return connection, nil
}

// resolveWindow maps the after/before cursors onto [start, end) indices over
// the full ordered list. A cursor must match an order in the current filtered
// set; a start past the end is rejected.
func resolveWindow(orders []model.Order, w pagination.Window) (int, int, error) {
	start := 0
	if w.After != "" {
		index, err := findCursorIndex(orders, w.After, "after")
		if err != nil {
			return 0, 0, err
		}
		start = index + 1
	}

	end := len(orders)
	if w.Before != "" {
		index, err := findCursorIndex(orders, w.Before, "before")
		if err != nil {
			return 0, 0, err
		}
		end = index
	}

	if start > end {
		return 0, 0, model.InvalidInput("Invalid cursor range")
	}

	return start, end, nil
}

// findCursorIndex locates the order a cursor points at within the ordered list.
func findCursorIndex(orders []model.Order, token, name string) (int, error) {
	cursor, err := pagination.Decode(token, name)
	if err != nil {
		return 0, err
	}

	for i := range orders {
		if cursor.Matches(orders[i]) {
			return i, nil
		}
	}

	return 0, model.InvalidInput("%s cursor does not exist", name)
}

// normalizeFilter validates the status value and date bounds, parsing dates
// as strict ISO 8601 date-times.
func normalizeFilter(f model.OrderFilter) (repository.OrderListFilter, error) {
	var out repository.OrderListFilter

	if f.Status != "" {
		status := model.OrderStatus(f.Status)
		if !status.IsValid() {
			return out, model.InvalidInput("status must be one of NEW, PAID, CANCELED")
		}
		out.Status = status
	}

	dateFrom, err := parseDateInput(f.DateFrom, "dateFrom")
	if err != nil {
		return out, err
	}
	dateTo, err := parseDateInput(f.DateTo, "dateTo")
	if err != nil {
		return out, err
	}

	if dateFrom != nil && dateTo != nil && dateFrom.After(*dateTo) {
		return out, model.InvalidInput("dateFrom must be less than or equal to dateTo")
	}

	out.DateFrom = dateFrom
	out.DateTo = dateTo
	return out, nil
}

// parseDateInput parses an optional RFC 3339 date-time string.
func parseDateInput(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, model.InvalidInput("%s must be a valid ISO 8601 date-time", field)
	}

	return &t, nil
}
