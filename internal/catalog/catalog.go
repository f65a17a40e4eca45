package catalog

import (
	"context"
	"errors"

	"joules-shop/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Catalog is the read-only product lookup the cart and checkout depend on.
// Implementations must treat products as immutable reference data.
type Catalog interface {
	Find(ctx context.Context, id string) (*domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
}
