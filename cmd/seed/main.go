// Command seed populates the database with the demo catalog and two users.
// It is idempotent: products are matched by title, users by email.
package main

import (
	"context"
	"fmt"
	"os"

	"coffee-orders/internal/config"
	"coffee-orders/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

type seedProduct struct {
	title       string
	description string
	priceCents  int
	currency    string
	stock       int
}

var products = []seedProduct{
	{"Espresso Classic", "Bold and intense single-shot espresso", 28000, "UAH", 120},
	{"Espresso Doppio", "Double espresso with rich crema", 36000, "UAH", 110},
	{"Americano Smooth", "Espresso diluted with hot water", 32000, "UAH", 150},
	{"Cappuccino Velvet", "Espresso with steamed milk and foam", 44000, "UAH", 140},
	{"Latte House", "Creamy latte with balanced flavor", 48000, "UAH", 160},
	{"Flat White", "Microfoam milk with double espresso", 46000, "UAH", 130},
	{"Mocha Dark", "Espresso with chocolate and steamed milk", 52000, "UAH", 90},
}

var users = []struct {
	id           string
	email        string
	passwordHash string
	role         string
}{
	// The first entry matches the stub buyer the API uses until auth lands.
	{"00000000-0000-0000-0000-000000000001", "user@coffee.local", "$2b$10$user.seed.hash.placeholder", "USER"},
	{"00000000-0000-0000-0000-000000000002", "admin@coffee.local", "$2b$10$admin.seed.hash.placeholder", "ADMIN"},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	ctx := context.Background()

	if err := database.RunMigrations(cfg.Database.ConnectionString(), cfg.Database.MigrationsDir, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := seedUsers(ctx, pool); err != nil {
		return err
	}
	if err := seedProducts(ctx, pool); err != nil {
		return err
	}

	logger.Info().
		Int("products", len(products)).
		Int("users", len(users)).
		Msg("seed completed")

	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool) error {
	for _, u := range users {
		_, err := pool.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, role)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO NOTHING
		`, u.id, u.email, u.passwordHash, u.role)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.email, err)
		}
	}
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool) error {
	for _, p := range products {
		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE title = $1)`, p.title,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check product %s: %w", p.title, err)
		}
		if exists {
			continue
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO products (title, description, price_cents, currency, stock)
			VALUES ($1, $2, $3, $4, $5)
		`, p.title, p.description, p.priceCents, p.currency, p.stock)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.title, err)
		}
	}
	return nil
}
