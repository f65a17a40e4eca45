package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"joules-shop/internal/domain"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrIllegalTransition = errors.New("illegal order status transition")
)

// OrderRepository defines the interface for order persistence. Save must
// reject a duplicate order ID; UpdateStatus must apply the transition only
// when the order is currently in the expected state.
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, orderID string) (*domain.Order, error)
	FindByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository backed by
// postgres.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Save inserts the order and its line items in one transaction.
func (r *orderRepository) Save(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (order_id, user_id, full_name, email, phone, address, total_price, status, order_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = tx.ExecContext(
		ctx,
		orderQuery,
		order.OrderID,
		order.UserID,
		order.FullName,
		order.Email,
		order.Phone,
		order.Address,
		order.TotalPrice,
		order.Status,
		order.OrderDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, position, product_id, name, price, image, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i, item := range order.Items {
		_, err = tx.ExecContext(
			ctx,
			itemQuery,
			order.OrderID,
			i,
			item.ProductID,
			item.Name,
			item.Price,
			item.Image,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// FindByID retrieves an order with its line items.
func (r *orderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `
		SELECT order_id, user_id, full_name, email, phone, address, total_price, status, order_date
		FROM orders
		WHERE order_id = $1
	`

	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&order.OrderID,
		&order.UserID,
		&order.FullName,
		&order.Email,
		&order.Phone,
		&order.Address,
		&order.TotalPrice,
		&order.Status,
		&order.OrderDate,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	items, err := r.loadItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// FindByUser retrieves a user's orders, most recent first.
func (r *orderRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `
		SELECT order_id, user_id, full_name, email, phone, address, total_price, status, order_date
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		err := rows.Scan(
			&order.OrderID,
			&order.UserID,
			&order.FullName,
			&order.Email,
			&order.Phone,
			&order.Address,
			&order.TotalPrice,
			&order.Status,
			&order.OrderDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for _, order := range orders {
		items, err := r.loadItems(ctx, order.OrderID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}

	return orders, nil
}

// UpdateStatus applies a status transition guarded by the expected current
// status, so the pending -> completed transition is one-way.
func (r *orderRepository) UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	query := `UPDATE orders SET status = $3 WHERE order_id = $1 AND status = $2`

	result, err := r.db.ExecContext(ctx, query, orderID, from, to)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Distinguish a missing order from one in the wrong state.
		var exists bool
		err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE order_id = $1)`, orderID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check order existence: %w", err)
		}
		if !exists {
			return ErrOrderNotFound
		}
		return ErrIllegalTransition
	}

	return nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID string) ([]domain.CartItem, error) {
	query := `
		SELECT product_id, name, price, image, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		err := rows.Scan(
			&item.ProductID,
			&item.Name,
			&item.Price,
			&item.Image,
			&item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}
