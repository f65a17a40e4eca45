package cart

import (
	"context"
	"errors"
	"sync"

	"joules-shop/internal/catalog"
	"joules-shop/internal/domain"
)

var (
	ErrItemNotFound = errors.New("item not found in cart")
)

// Store holds the line items of one session's cart, unique by product ID and
// kept in insertion order. A single mutex serializes all mutation so that two
// in-flight requests for the same session cannot lose an update on the
// read-modify-write quantity increment.
type Store struct {
	mu    sync.Mutex
	items []domain.CartItem
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{}
}

// Add puts one unit of the given product into the cart. If the product is
// already present its quantity is incremented by one, without an upper bound.
// Otherwise a new line is appended with name, price and image copied from the
// catalog entry at this instant. The catalog lookup happens outside the cart
// lock; the upsert itself is serialized, so two concurrent adds of an absent
// product yield one line with quantity 2.
func (s *Store) Add(ctx context.Context, cat catalog.Catalog, productID string) (domain.CartItem, error) {
	product, err := cat.Find(ctx, productID)
	if err != nil {
		return domain.CartItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity++
			return s.items[i], nil
		}
	}

	item := domain.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		Quantity:  1,
	}
	s.items = append(s.items, item)
	return item, nil
}

// SetQuantity overwrites the quantity of an existing line. A quantity of zero
// or less removes the line entirely (delete-by-zero policy). Returns
// ErrItemNotFound, leaving the cart unchanged, if the product is not present.
func (s *Store) SetQuantity(productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID != productID {
			continue
		}
		if quantity > 0 {
			s.items[i].Quantity = quantity
		} else {
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
		return nil
	}

	return ErrItemNotFound
}

// Remove deletes a line and returns it, or ErrItemNotFound.
func (s *Store) Remove(productID string) (domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			removed := s.items[i]
			s.items = append(s.items[:i], s.items[i+1:]...)
			return removed, nil
		}
	}

	return domain.CartItem{}, ErrItemNotFound
}

// Items returns a snapshot copy of the cart lines in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Count returns the total number of units across all lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// Clear removes every line.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Checkout runs fn with a snapshot of the cart while holding the cart lock,
// and clears the cart only if fn returns nil. This is the single logical
// transaction of order placement: read, compute, persist, then clear. A
// persistence failure inside fn leaves the cart exactly as it was, so the
// customer can retry without re-adding items.
func (s *Store) Checkout(fn func(items []domain.CartItem) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.snapshot()); err != nil {
		return err
	}

	s.items = nil
	return nil
}

// snapshot copies the lines; callers must hold s.mu.
func (s *Store) snapshot() []domain.CartItem {
	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}
