package repository

import (
	"context"
	"time"

	"coffee-orders/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderListFilter carries normalized listing criteria for orders.
type OrderListFilter struct {
	Status   model.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs in one round trip.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// Find retrieves active products matching the catalog query.
	Find(ctx context.Context, query model.ProductQuery) ([]model.Product, error)

	// LockByIDs acquires row locks on the given products within the
	// transaction, blocking concurrent stock writers until it ends.
	// Unknown IDs are silently absent from the result.
	LockByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Product, error)

	// DecrementStock reduces a locked product's stock within the transaction.
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetByUserAndKey retrieves the order created under the given
	// (user, idempotency key) pair, with its items. Returns nil when absent.
	GetByUserAndKey(ctx context.Context, userID, idempotencyKey uuid.UUID) (*model.Order, error)

	// GetByID retrieves an order with its items. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByIDTx retrieves an order with its items inside the transaction.
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// CreateOrder inserts a new order within the provided transaction,
	// populating its DB-assigned timestamps.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// List retrieves the full filtered order list with items, ordered by
	// creation time descending with ID descending as tie-break.
	List(ctx context.Context, filter OrderListFilter) ([]model.Order, error)
}
