package catalog

import (
	"context"
	"errors"

	"github.com/YadneshBamne/HoLo/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// ListFilter narrows a product listing. The zero value lists everything,
// newest first.
type ListFilter struct {
	CategoryID   string
	InStockOnly  bool
	FeaturedOnly bool
	Limit        int
}

type Repository interface {
	ListProducts(ctx context.Context, filter ListFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}
