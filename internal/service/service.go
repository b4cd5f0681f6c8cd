package service

import (
	"context"

	"coffee-orders/internal/model"
	"coffee-orders/internal/pagination"

	"github.com/google/uuid"
)

// OrderService defines operations for order placement and retrieval.
type OrderService interface {
	// CreateOrder atomically validates inventory, decrements stock and
	// persists a new order, or returns the previously created order for a
	// replayed idempotency key.
	CreateOrder(ctx context.Context, userID uuid.UUID, idempotencyKey string, items []model.OrderItemRequest) (*model.CreateOrderResult, error)

	// GetByID retrieves an order with its items and product details.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}

// OrderQueryService defines the filtered, cursor-paginated order listing.
type OrderQueryService interface {
	// ListOrders returns a stable windowed view of the filtered order list
	// with forward/backward navigation cursors and an exact total count.
	ListOrders(ctx context.Context, filter model.OrderFilter, page pagination.Args) (*model.OrdersConnection, error)
}

// ProductService defines operations for the product catalog.
type ProductService interface {
	// Find retrieves active products matching the catalog query.
	Find(ctx context.Context, query model.ProductQuery) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
}
