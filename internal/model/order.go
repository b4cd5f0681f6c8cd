package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusNew      OrderStatus = "NEW"
	OrderStatusPaid     OrderStatus = "PAID"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

// IsValid reports whether the status is one of the known values.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusNew, OrderStatusPaid, OrderStatusCanceled:
		return true
	}
	return false
}

// Order represents a customer order. The total and the item list are fixed
// at creation time; only the status may change afterwards, outside this core.
type Order struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	UserID           uuid.UUID   `json:"userId" db:"user_id"`
	Status           OrderStatus `json:"status" db:"status"`
	TotalAmountCents int         `json:"totalAmountCents" db:"total_amount_cents"`
	Currency         string      `json:"currency" db:"currency"`
	IdempotencyKey   uuid.UUID   `json:"-" db:"idempotency_key"`
	Items            []OrderItem `json:"items"`
	CreatedAt        time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order, with the product price
// snapshotted at purchase time.
type OrderItem struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	OrderID              uuid.UUID `json:"-" db:"order_id"`
	ProductID            uuid.UUID `json:"productId" db:"product_id"`
	Quantity             int       `json:"quantity" db:"quantity"`
	PriceAtPurchaseCents int       `json:"priceAtPurchaseCents" db:"price_at_purchase_cents"`
	Currency             string    `json:"currency" db:"currency"`
	Product              *Product  `json:"product,omitempty"`
	CreatedAt            time.Time `json:"createdAt" db:"created_at"`
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	Items []OrderItemRequest `json:"items"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// CreateOrderResult is the outcome of an order creation call. IsDuplicate
// signals that an existing order was returned for a replayed idempotency key.
type CreateOrderResult struct {
	Order       *Order `json:"order"`
	IsDuplicate bool   `json:"isDuplicate"`
}

// OrderFilter represents listing criteria for orders. DateFrom and DateTo
// are ISO 8601 date-time strings; empty fields are ignored.
type OrderFilter struct {
	Status   string `json:"status,omitempty"`
	DateFrom string `json:"dateFrom,omitempty"`
	DateTo   string `json:"dateTo,omitempty"`
}

// PageInfo carries cursor navigation metadata for a page of orders.
type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}

// OrdersConnection is a windowed view over the filtered order list.
type OrdersConnection struct {
	Nodes      []Order  `json:"nodes"`
	TotalCount int      `json:"totalCount"`
	PageInfo   PageInfo `json:"pageInfo"`
}
