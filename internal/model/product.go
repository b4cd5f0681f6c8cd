package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog product.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	PriceCents  int       `json:"priceCents" db:"price_cents"`
	Currency    string    `json:"currency" db:"currency"`
	Stock       int       `json:"stock" db:"stock"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// ProductSort enumerates the supported catalog sort modes.
type ProductSort string

const (
	SortPriceAsc         ProductSort = "price_asc"
	SortPriceDesc        ProductSort = "price_desc"
	SortAlphabeticalAsc  ProductSort = "alphabetical_asc"
	SortAlphabeticalDesc ProductSort = "alphabetical_desc"
	SortNewest           ProductSort = "newest"
)

// IsValid reports whether the sort mode is one of the supported values.
func (s ProductSort) IsValid() bool {
	switch s {
	case SortPriceAsc, SortPriceDesc, SortAlphabeticalAsc, SortAlphabeticalDesc, SortNewest:
		return true
	}
	return false
}

// ProductQuery represents catalog listing criteria.
type ProductQuery struct {
	Search string      `json:"search,omitempty"`
	Sort   ProductSort `json:"sort,omitempty"`
}
