package service

import (
	"context"
	"testing"
	"time"

	"coffee-orders/internal/model"
	"coffee-orders/internal/pagination"
	"coffee-orders/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// fakeOrderListRepo serves a fixed, pre-sorted order list and records the
// filter it was asked for. Only List is expected to be called.
type fakeOrderListRepo struct {
	orders     []model.Order
	lastFilter repository.OrderListFilter
}

func (f *fakeOrderListRepo) List(ctx context.Context, filter repository.OrderListFilter) ([]model.Order, error) {
	f.lastFilter = filter

	var out []model.Order
	for _, o := range f.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.DateFrom != nil && o.CreatedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && o.CreatedAt.After(*filter.DateTo) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderListRepo) BeginTx(ctx context.Context) (pgx.Tx, error) { panic("unexpected") }
func (f *fakeOrderListRepo) GetByUserAndKey(ctx context.Context, userID, idempotencyKey uuid.UUID) (*model.Order, error) {
	panic("unexpected")
}
func (f *fakeOrderListRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	panic("unexpected")
}
func (f *fakeOrderListRepo) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	panic("unexpected")
}
func (f *fakeOrderListRepo) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	panic("unexpected")
}
func (f *fakeOrderListRepo) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	panic("unexpected")
}

// newOrderFixture builds n orders sorted created-at descending, one minute
// apart, all with the given status.
func newOrderFixture(n int, status model.OrderStatus) []model.Order {
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	orders := make([]model.Order, n)
	for i := range orders {
		orders[i] = model.Order{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			Status:    status,
			Currency:  "UAH",
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return orders
}

func cursorFor(o model.Order) string {
	return pagination.NewCursor(o.ID, o.CreatedAt).Encode()
}

func newQueryService(orders []model.Order) (*fakeOrderListRepo, OrderQueryService) {
	repo := &fakeOrderListRepo{orders: orders}
	svc := NewOrderQueryService(repo, new(MockProductRepository), zerolog.Nop())
	return repo, svc
}

func TestOrderQueryService_ListOrders_DefaultPage(t *testing.T) {
	orders := newOrderFixture(25, model.OrderStatusNew)
	_, svc := newQueryService(orders)

	conn, err := svc.ListOrders(context.Background(), model.OrderFilter{}, pagination.Args{})

	require.NoError(t, err)
	assert.Equal(t, 25, conn.TotalCount)
	require.Len(t, conn.Nodes, 20)
	assert.Equal(t, orders[0].ID, conn.Nodes[0].ID)
	assert.Equal(t, orders[19].ID, conn.Nodes[19].ID)
	assert.False(t, conn.PageInfo.HasPreviousPage)
	assert.True(t, conn.PageInfo.HasNextPage)
	require.NotNil(t, conn.PageInfo.StartCursor)
	require.NotNil(t, conn.PageInfo.EndCursor)
	assert.Equal(t, cursorFor(orders[0]), *conn.PageInfo.StartCursor)
	assert.Equal(t, cursorFor(orders[19]), *conn.PageInfo.EndCursor)
}

func TestOrderQueryService_ListOrders_FirstAfter(t *testing.T) {
	orders := newOrderFixture(25, model.OrderStatusNew)
	_, svc := newQueryService(orders)

	conn, err := svc.ListOrders(context.Background(), model.OrderFilter{}, pagination.Args{
		First: intPtr(10),
		After: cursorFor(orders[4]),
	})

	require.NoError(t, err)
	require.Len(t, conn.Nodes, 10)
	assert.Equal(t, orders[5].ID, conn.Nodes[0].ID)
	assert.Equal(t, orders[14].ID, conn.Nodes[9].ID)
	assert.True(t, conn.PageInfo.HasPreviousPage)
	assert.True(t, conn.PageInfo.HasNextPage)
}

func TestOrderQueryService_ListOrders_LastPage(t *testing.T) {
	orders := newOrderFixture(25, model.OrderStatusNew)
	_, svc := newQueryService(orders)

	conn, err := svc.ListOrders(context.Background(), model.OrderFilter{}, pagination.Args{
		Last: intPtr(10),
	})

	require.NoError(t, err)
	require.Len(t, conn.Nodes, 10)
	assert.Equal(t, orders[15].ID, conn.Nodes[0].ID)
	assert.Equal(t, orders[24].ID, conn.Nodes[9].ID)
	assert.True(t, conn.PageInfo.HasPreviousPage)
	assert.False(t, conn.PageInfo.HasNextPage)
}

func TestOrderQueryService_ListOrders_LastBefore(t *testing.T) {
	orders := newOrderFixture(25, model.OrderStatusNew)
	_, svc := newQueryService(orders)

	conn, err := svc.ListOrders(context.Background(), model.OrderFilter{}, pagination.Args{
		Last:   intPtr(5),
		Before: cursorFor(orders[20]),
	})

	require.NoError(t, err)
	require.Len(t, conn.Nodes, 5)
	assert.Equal(t, orders[15].ID, conn.Nodes[0].ID)
	assert.Equal(t, orders[19].ID, conn.Nodes[4].ID)
	assert.True(t, conn.PageInfo.HasPreviousPage)
	assert.True(t, conn.PageInfo.HasNextPage)
}

func TestOrderQueryService_ListOrders_WindowShorterThanPage(t *testing.T) {
	orders := newOrderFixture(5, model.OrderStatusNew)
	_, svc := newQueryService(orders)

	conn, err := svc.ListOrders(context.Background(), model.OrderFilter{}, pagination.Args{
		First: intPtr(20),
		After: cursorFor(orders[2]),
	})

	require.NoError(t, err)
	require.Len(t, conn.Nodes, 2)
	assert.Equal(t, orders[3].ID, conn.Nodes[0].ID)
	assert.True(t, conn.PageInfo.HasPreviousPage)
	assert.False(t, conn.PageInfo.HasNextPage)
}

func TestOrderQueryService_ListOrders_EmptyResult(t *testing.T) {
	_, svc := newQueryService(nil)

	conn, err := svc.ListOrders(context.Background(), model.OrderFilter{}, pagination.Args{})

	require.NoError(t, err)
	assert.Empty(t, conn.Nodes)
	assert.Zero(t, conn.TotalCount)
	assert.False(t, conn.PageInfo.HasPreviousPage)
	assert.False(t, conn.PageInfo.HasNextPage)
	assert.Nil(t, conn.PageInfo.StartCursor)
	assert.Nil(t, conn.PageInfo.EndCursor)
}

func TestOrderQueryService_ListOrders_InvalidCursorRange(t *testing.T) {
	orders := newOrderFixture(10, model.OrderStatusNew)
	_, svc := newQueryService(orders)

	_, err := svc.ListOrders(context.Background(), model.OrderFilter{}, pagination.Args{
		After:  cursorFor(orders[7]),
		Before: cursorFor(orders[3]),
	})

	require.Error(t, err)
	assert.EqualError(t, err, "Invalid cursor range")
	assert.Equal(t, model.ErrCodeInvalidInput, model.ErrorCode(err))
}

func TestOrderQueryService_ListOrders_CursorOutsideFilteredSet(t *testing.T) {
	orders := newOrderFixture(10, model.OrderStatusNew)
	_, svc := newQueryService(orders)

	// A well-formed cursor pointing at an order the filter never returns.
	stranger := model.Order{ID: uuid.New(), CreatedAt: time.Now().UTC()}

	_, err := svc.ListOrders(context.Background(), model.OrderFilter{}, pagination.Args{
		After: cursorFor(stranger),
	})

	require.Error(t, err)
	assert.EqualError(t, err, "after cursor does not exist")
}

func TestOrderQueryService_ListOrders_BothFirstAndLast(t *testing.T) {
	_, svc := newQueryService(newOrderFixture(3, model.OrderStatusNew))

	_, err := svc.ListOrders(context.Background(), model.OrderFilter{}, pagination.Args{
		First: intPtr(5),
		Last:  intPtr(5),
	})

	require.Error(t, err)
	assert.EqualError(t, err, "Use either first or last, not both")
}

func TestOrderQueryService_ListOrders_FilterValidation(t *testing.T) {
	_, svc := newQueryService(newOrderFixture(3, model.OrderStatusNew))

	tests := []struct {
		name    string
		filter  model.OrderFilter
		wantMsg string
	}{
		{
			name:    "Unknown status",
			filter:  model.OrderFilter{Status: "SHIPPED"},
			wantMsg: "status must be one of NEW, PAID, CANCELED",
		},
		{
			name:    "Malformed dateFrom",
			filter:  model.OrderFilter{DateFrom: "14-03-2026"},
			wantMsg: "dateFrom must be a valid ISO 8601 date-time",
		},
		{
			name:    "Malformed dateTo",
			filter:  model.OrderFilter{DateTo: "not-a-date"},
			wantMsg: "dateTo must be a valid ISO 8601 date-time",
		},
		{
			name: "Inverted date range",
			filter: model.OrderFilter{
				DateFrom: "2026-03-14T12:00:00Z",
				DateTo:   "2026-03-13T12:00:00Z",
			},
			wantMsg: "dateFrom must be less than or equal to dateTo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListOrders(context.Background(), tt.filter, pagination.Args{})

			require.Error(t, err)
			assert.EqualError(t, err, tt.wantMsg)
			assert.Equal(t, model.ErrCodeInvalidInput, model.ErrorCode(err))
		})
	}
}

func TestOrderQueryService_ListOrders_PassesNormalizedFilter(t *testing.T) {
	repo, svc := newQueryService(newOrderFixture(3, model.OrderStatusPaid))

	_, err := svc.ListOrders(context.Background(), model.OrderFilter{
		Status:   "PAID",
		DateFrom: "2026-03-14T00:00:00Z",
		DateTo:   "2026-03-15T00:00:00Z",
	}, pagination.Args{})

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, repo.lastFilter.Status)
	require.NotNil(t, repo.lastFilter.DateFrom)
	require.NotNil(t, repo.lastFilter.DateTo)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), repo.lastFilter.DateFrom.UTC())
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), repo.lastFilter.DateTo.UTC())
}
