package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"coffee-orders/internal/database"
	"coffee-orders/internal/model"
	"coffee-orders/internal/repository"
	"coffee-orders/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type testEnv struct {
	pool   *pgxpool.Pool
	orders service.OrderService
}

func setupEnv(t *testing.T) (*testEnv, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.RunMigrations(connStr, "../../migrations", zerolog.Nop()))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	logger := zerolog.Nop()
	orderRepo := repository.NewOrderRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)

	env := &testEnv{
		pool:   pool,
		orders: service.NewOrderService(orderRepo, productRepo, logger),
	}
	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}
	return env, cleanup
}

func (e *testEnv) seedUser(t *testing.T, email string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := e.pool.QueryRow(context.Background(), `
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, 'test-hash', 'USER')
		RETURNING id`, email,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func (e *testEnv) seedProduct(t *testing.T, title string, priceCents, stock int) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := e.pool.QueryRow(context.Background(), `
		INSERT INTO products (title, price_cents, currency, stock)
		VALUES ($1, $2, 'UAH', $3)
		RETURNING id`, title, priceCents, stock,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func (e *testEnv) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()

	var stock int
	err := e.pool.QueryRow(context.Background(),
		`SELECT stock FROM products WHERE id = $1`, id).Scan(&stock)
	require.NoError(t, err)
	return stock
}

func TestOrderCreation_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env, cleanup := setupEnv(t)
	defer cleanup()

	ctx := context.Background()
	userID := env.seedUser(t, "buyer@coffee.local")
	espressoID := env.seedProduct(t, "Espresso Classic", 28000, 120)
	cappuccinoID := env.seedProduct(t, "Cappuccino Velvet", 44000, 140)

	key := uuid.NewString()
	items := []model.OrderItemRequest{
		{ProductID: espressoID, Quantity: 2},
		{ProductID: cappuccinoID, Quantity: 1},
	}

	result, err := env.orders.CreateOrder(ctx, userID, key, items)
	require.NoError(t, err)
	assert.False(t, result.IsDuplicate)
	assert.Equal(t, 100000, result.Order.TotalAmountCents)
	assert.Equal(t, "UAH", result.Order.Currency)
	assert.Equal(t, model.OrderStatusNew, result.Order.Status)
	require.Len(t, result.Order.Items, 2)

	assert.Equal(t, 118, env.stockOf(t, espressoID))
	assert.Equal(t, 139, env.stockOf(t, cappuccinoID))

	// The same key replays the stored order without touching stock again.
	replay, err := env.orders.CreateOrder(ctx, userID, key, items)
	require.NoError(t, err)
	assert.True(t, replay.IsDuplicate)
	assert.Equal(t, result.Order.ID, replay.Order.ID)
	assert.Equal(t, 118, env.stockOf(t, espressoID))
}

func TestOrderCreation_ConcurrentSameKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env, cleanup := setupEnv(t)
	defer cleanup()

	ctx := context.Background()
	userID := env.seedUser(t, "buyer@coffee.local")
	espressoID := env.seedProduct(t, "Espresso Classic", 28000, 120)

	key := uuid.NewString()
	items := []model.OrderItemRequest{{ProductID: espressoID, Quantity: 1}}

	const workers = 8
	results := make([]*model.CreateOrderResult, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.orders.CreateOrder(ctx, userID, key, items)
		}(i)
	}
	wg.Wait()

	var orderID uuid.UUID
	originals := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		if !results[i].IsDuplicate {
			originals++
		}
		if orderID == uuid.Nil {
			orderID = results[i].Order.ID
		}
		assert.Equal(t, orderID, results[i].Order.ID, "every caller must see the same order")
	}
	assert.Equal(t, 1, originals, "exactly one caller wins the creation race")

	var count int
	require.NoError(t, env.pool.QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE user_id = $1`, userID).Scan(&count))
	assert.Equal(t, 1, count)

	// Stock was decremented exactly once.
	assert.Equal(t, 119, env.stockOf(t, espressoID))
}

func TestOrderCreation_ConcurrentStockContention(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env, cleanup := setupEnv(t)
	defer cleanup()

	ctx := context.Background()
	espressoID := env.seedProduct(t, "Espresso Classic", 28000, 5)

	// Ten buyers each want two units; only two orders can be satisfied.
	const workers = 10
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := env.seedUser(t, uuid.NewString()+"@coffee.local")
			_, errs[i] = env.orders.CreateOrder(ctx, userID, uuid.NewString(),
				[]model.OrderItemRequest{{ProductID: espressoID, Quantity: 2}})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, model.ErrCodeConflict, model.ErrorCode(err))
	}
	assert.Equal(t, 2, succeeded, "stock of 5 satisfies exactly two orders of quantity 2")

	stock := env.stockOf(t, espressoID)
	assert.Equal(t, 1, stock)
	assert.GreaterOrEqual(t, stock, 0, "stock must never go negative")
}
