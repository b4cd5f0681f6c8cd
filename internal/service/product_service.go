package service

import (
	"context"
	"fmt"
	"strings"

	"coffee-orders/internal/model"
	"coffee-orders/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// Find retrieves active products matching the catalog query. The sort mode
// defaults to ascending price.
func (s *productService) Find(ctx context.Context, query model.ProductQuery) ([]model.Product, error) {
	query.Search = strings.TrimSpace(query.Search)

	if query.Sort == "" {
		query.Sort = model.SortPriceAsc
	}
	if !query.Sort.IsValid() {
		return nil, model.InvalidInput("sort must be one of price_asc, price_desc, alphabetical_asc, alphabetical_desc, newest")
	}

	products, err := s.productRepo.Find(ctx, query)
	if err != nil {
		s.logger.Error().Err(err).Str("search", query.Search).Msg("failed to find products")
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Str("sort", string(query.Sort)).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	return product, nil
}
