package service

import (
	"context"
	"fmt"

	"coffee-orders/internal/model"
	"coffee-orders/internal/repository"

	"github.com/google/uuid"
)

// ProductLoader coalesces product lookups within one logical request into a
// single bulk fetch per distinct set of IDs. Results are cached for the
// loader's lifetime; missing IDs resolve to nil. A loader is request-scoped
// and not safe for concurrent use.
type ProductLoader struct {
	productRepo repository.ProductRepository
	cache       map[uuid.UUID]*model.Product
}

// NewProductLoader creates a loader backed by the given repository.
func NewProductLoader(productRepo repository.ProductRepository) *ProductLoader {
	return &ProductLoader{
		productRepo: productRepo,
		cache:       make(map[uuid.UUID]*model.Product),
	}
}

// LoadMany resolves the given product IDs, issuing one bulk query for the
// IDs this loader has not seen yet.
func (l *ProductLoader) LoadMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	distinct := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	var missing []uuid.UUID

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
		if _, cached := l.cache[id]; !cached {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		products, err := l.productRepo.GetByIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}
		for i := range products {
			l.cache[products[i].ID] = &products[i]
		}
		for _, id := range missing {
			if _, ok := l.cache[id]; !ok {
				l.cache[id] = nil
			}
		}
	}

	resolved := make(map[uuid.UUID]*model.Product, len(distinct))
	for _, id := range distinct {
		resolved[id] = l.cache[id]
	}

	return resolved, nil
}

// AttachProducts resolves the referenced product of every line item across
// the given orders and fans the results back out, using one batched lookup
// for the whole distinct ID set.
func (l *ProductLoader) AttachProducts(ctx context.Context, orders []model.Order) error {
	var ids []uuid.UUID
	for i := range orders {
		for j := range orders[i].Items {
			ids = append(ids, orders[i].Items[j].ProductID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	resolved, err := l.LoadMany(ctx, ids)
	if err != nil {
		return err
	}

	for i := range orders {
		for j := range orders[i].Items {
			item := &orders[i].Items[j]
			item.Product = resolved[item.ProductID]
		}
	}

	return nil
}
