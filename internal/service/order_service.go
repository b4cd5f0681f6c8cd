package service

import (
	"context"
	"errors"
	"fmt"

	"coffee-orders/internal/model"
	"coffee-orders/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// pgUniqueViolationCode is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolationCode = "23505"

// orderIdempotencyConstraint is the unique constraint over
// (user_id, idempotency_key). A violation of it signals a lost duplicate-key
// race, which is recovered locally rather than surfaced.
const orderIdempotencyConstraint = "uq_orders_user_id_idempotency_key"

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder creates a new order for the user, or returns the existing one
// when the idempotency key was seen before. At most one order is ever
// persisted per (user, key) pair, regardless of concurrent duplicate
// submissions.
func (s *orderService) CreateOrder(
	ctx context.Context,
	userID uuid.UUID,
	idempotencyKey string,
	items []model.OrderItemRequest,
) (*model.CreateOrderResult, error) {
	key, err := uuid.Parse(idempotencyKey)
	if err != nil {
		return nil, model.InvalidInput("Idempotency key must be a valid UUID")
	}

	normalized, err := normalizeItems(items)
	if err != nil {
		return nil, err
	}

	// Replay fast path. This is an optimization only: the unique constraint
	// below still catches duplicates that race past this check.
	existing, err := s.orderRepo.GetByUserAndKey(ctx, userID, key)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("idempotency pre-check failed")
		return nil, model.ErrInternal
	}
	if existing != nil {
		s.logger.Info().
			Str("order_id", existing.ID.String()).
			Str("idempotency_key", key.String()).
			Msg("returning existing order for replayed idempotency key")
		return &model.CreateOrderResult{Order: existing, IsDuplicate: true}, nil
	}

	order, err := s.createOrderInTransaction(ctx, userID, key, normalized)
	if err != nil {
		if isIdempotencyViolation(err) {
			duplicate, qErr := s.orderRepo.GetByUserAndKey(ctx, userID, key)
			if qErr == nil && duplicate != nil {
				s.logger.Info().
					Str("order_id", duplicate.ID.String()).
					Str("idempotency_key", key.String()).
					Msg("lost duplicate-key race, returning winner's order")
				return &model.CreateOrderResult{Order: duplicate, IsDuplicate: true}, nil
			}
			s.logger.Error().
				Err(qErr).
				Str("idempotency_key", key.String()).
				Msg("unique violation without a resolvable existing order")
			return nil, model.ErrInternal
		}

		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}

		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to create order")
		return nil, model.ErrInternal
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID.String()).
		Int("total_amount_cents", order.TotalAmountCents).
		Int("item_count", len(order.Items)).
		Msg("order created successfully")

	return &model.CreateOrderResult{Order: order}, nil
}

// GetByID retrieves an order by its ID with all items and product details.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	loader := NewProductLoader(s.productRepo)
	orders := []model.Order{*order}
	if err := loader.AttachProducts(ctx, orders); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to resolve order products")
		return nil, fmt.Errorf("failed to resolve order products: %w", err)
	}

	return &orders[0], nil
}

// createOrderInTransaction runs the locked creation flow: lock product rows,
// validate under lock, decrement stock, persist the order with its items, and
// re-read the materialized order before committing. Any error on the way out
// rolls the transaction back fully.
func (s *orderService) createOrderInTransaction(
	ctx context.Context,
	userID, idempotencyKey uuid.UUID,
	items []model.OrderItemRequest,
) (*model.Order, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	productIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	locked, err := s.productRepo.LockByIDs(ctx, tx, productIDs)
	if err != nil {
		return nil, err
	}

	productByID := make(map[uuid.UUID]model.Product, len(locked))
	for _, p := range locked {
		productByID[p.ID] = p
	}

	for _, item := range items {
		if _, ok := productByID[item.ProductID]; !ok {
			err = model.ErrProductsInvalid
			return nil, err
		}
	}

	for _, item := range items {
		if productByID[item.ProductID].Stock < item.Quantity {
			err = model.ErrInsufficientStock
			return nil, err
		}
	}

	currency := locked[0].Currency
	for _, p := range locked {
		if p.Currency != currency {
			err = model.ErrMixedCurrencies
			return nil, err
		}
	}

	totalAmountCents := 0
	orderItems := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		product := productByID[item.ProductID]

		if err = s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return nil, err
		}

		totalAmountCents += product.PriceCents * item.Quantity
		orderItems = append(orderItems, model.OrderItem{
			ID:                   uuid.New(),
			ProductID:            item.ProductID,
			Quantity:             item.Quantity,
			PriceAtPurchaseCents: product.PriceCents,
			Currency:             product.Currency,
		})
	}

	order := &model.Order{
		ID:               uuid.New(),
		UserID:           userID,
		Status:           model.OrderStatusNew,
		TotalAmountCents: totalAmountCents,
		Currency:         currency,
		IdempotencyKey:   idempotencyKey,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	for i := range orderItems {
		orderItems[i].OrderID = order.ID
	}
	if err = s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		return nil, err
	}

	created, err := s.orderRepo.GetByIDTx(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		err = model.ErrInternal
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return created, nil
}

// normalizeItems sums quantities of duplicate product entries into one line,
// preserving first-occurrence order, and rejects empty or non-positive input.
func normalizeItems(items []model.OrderItemRequest) ([]model.OrderItemRequest, error) {
	if len(items) == 0 {
		return nil, model.ErrEmptyOrder
	}

	quantities := make(map[uuid.UUID]int, len(items))
	order := make([]uuid.UUID, 0, len(items))

	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, model.InvalidInput("productId is required")
		}
		if _, seen := quantities[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
		if quantities[item.ProductID] <= 0 {
			return nil, model.InvalidInput(
				"Item quantity for product %s must be greater than 0", item.ProductID)
		}
	}

	normalized := make([]model.OrderItemRequest, 0, len(order))
	for _, id := range order {
		normalized = append(normalized, model.OrderItemRequest{
			ProductID: id,
			Quantity:  quantities[id],
		})
	}

	return normalized, nil
}

// isIdempotencyViolation reports whether err is a unique violation of the
// (user_id, idempotency_key) constraint.
func isIdempotencyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgUniqueViolationCode &&
		pgErr.ConstraintName == orderIdempotencyConstraint
}
