package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"joules-shop/internal/domain"
)

// Postgres serves the catalog from the products table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a catalog backed by the given database.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Find retrieves a product by ID using parameterized queries.
func (p *Postgres) Find(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, image
		FROM products
		WHERE id = $1
	`

	product := &domain.Product{}
	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Image,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// ListAll retrieves every product in catalog order.
func (p *Postgres) ListAll(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, description, price, image
		FROM products
		ORDER BY id
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var product domain.Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.Image,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
