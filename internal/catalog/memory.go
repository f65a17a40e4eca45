package catalog

import (
	"context"

	"joules-shop/internal/domain"

	"github.com/shopspring/decimal"
)

// Memory is an in-memory catalog seeded at construction. It backs tests and
// catalog-less bootstrap; the postgres catalog is the production path.
type Memory struct {
	products []domain.Product
	byID     map[string]int
}

// NewMemory builds a catalog from the given products, preserving order.
func NewMemory(products []domain.Product) *Memory {
	m := &Memory{
		products: make([]domain.Product, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	copy(m.products, products)
	for i, p := range m.products {
		m.byID[p.ID] = i
	}
	return m
}

func (m *Memory) Find(_ context.Context, id string) (*domain.Product, error) {
	i, ok := m.byID[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	p := m.products[i]
	return &p, nil
}

func (m *Memory) ListAll(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

// Seed returns the static storefront products.
func Seed() []domain.Product {
	return []domain.Product{
		{
			ID:          "p1",
			Name:        "Striped Rugby Shirt",
			Price:       decimal.RequireFromString("39.99"),
			Image:       "/images/image1.jpg",
			Description: "Classic striped rugby shirt, perfect for everyday wear. Made from soft, durable cotton.",
		},
		{
			ID:          "p2",
			Name:        "Casual Green Shirt",
			Price:       decimal.RequireFromString("45.00"),
			Image:       "/images/image2.jpg",
			Description: "Comfortable green and white striped shirt, ideal for a relaxed look.",
		},
		{
			ID:          "p3",
			Name:        "Red & Blue Cardigan",
			Price:       decimal.RequireFromString("55.50"),
			Image:       "/images/image3.jpg",
			Description: "Stylish striped cardigan with button-down front. Great for layering.",
		},
		{
			ID:          "p4",
			Name:        "Long Waterproof Coat",
			Price:       decimal.RequireFromString("89.99"),
			Image:       "/images/image4.jpg",
			Description: "Lightweight and waterproof coat, perfect for rainy days. Features a hood and adjustable waist.",
		},
		{
			ID:          "p5",
			Name:        "Floral Summer Dress",
			Price:       decimal.RequireFromString("62.00"),
			Image:       "/images/image5.jpg",
			Description: "A beautiful floral dress, perfect for spring and summer outings.",
		},
		{
			ID:          "p6",
			Name:        "Men's Denim Jacket",
			Price:       decimal.RequireFromString("75.00"),
			Image:       "/images/image6.jpg",
			Description: "Classic fit denim jacket, a timeless addition to any wardrobe.",
		},
	}
}
