package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"joules-shop/internal/cart"
	"joules-shop/internal/catalog"
	"joules-shop/internal/domain"
	"joules-shop/internal/repository"
)

// mockOrderRepository is an in-memory OrderRepository for testing.
type mockOrderRepository struct {
	orders    map[string]*domain.Order
	saveErr   error
	saveCalls int
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[string]*domain.Order)}
}

func (m *mockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	stored := *order
	m.orders[order.OrderID] = &stored
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	order, ok := m.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if order.Status != from {
		return repository.ErrIllegalTransition
	}
	order.Status = to
	return nil
}

func validShipping() domain.ShippingInfo {
	return domain.ShippingInfo{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Phone:    "07700900000",
		Address:  "1 Analytical Way, London",
	}
}

func cartWith(t *testing.T, productIDs ...string) *cart.Store {
	t.Helper()
	store := cart.NewStore()
	cat := catalog.NewMemory(catalog.Seed())
	for _, id := range productIDs {
		if _, err := store.Add(context.Background(), cat, id); err != nil {
			t.Fatalf("Failed to seed cart: %v", err)
		}
	}
	return store
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	repo := newMockOrderRepository()
	svc := NewOrderService(repo)
	store := cart.NewStore()

	_, err := svc.PlaceOrder(context.Background(), store, "user-1", validShipping())
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("Expected ErrEmptyCart, got %v", err)
	}
	if repo.saveCalls != 0 {
		t.Error("Nothing must be persisted for an empty cart")
	}
}

func TestPlaceOrderEmptyCartTakesPrecedenceOverValidation(t *testing.T) {
	repo := newMockOrderRepository()
	svc := NewOrderService(repo)
	store := cart.NewStore()

	// Empty cart and incomplete shipping at once: the empty cart is the
	// reported failure.
	_, err := svc.PlaceOrder(context.Background(), store, "user-1", domain.ShippingInfo{})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("Expected ErrEmptyCart, got %v", err)
	}
	if repo.saveCalls != 0 {
		t.Error("Nothing must be persisted for an empty cart")
	}
}

func TestPlaceOrderIncompleteShippingInfo(t *testing.T) {
	repo := newMockOrderRepository()
	svc := NewOrderService(repo)
	store := cartWith(t, "p1")

	info := domain.ShippingInfo{
		FullName: "Ada Lovelace",
		Email:    "not-an-email",
		Address:  "1 Analytical Way, London",
	}

	_, err := svc.PlaceOrder(context.Background(), store, "user-1", info)

	var validationErr *ShippingValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ShippingValidationError, got %v", err)
	}
	if _, ok := validationErr.Fields["email"]; !ok {
		t.Error("Expected a field error for email")
	}
	if _, ok := validationErr.Fields["phone"]; !ok {
		t.Error("Expected a field error for phone")
	}
	if validationErr.Info != info {
		t.Error("Submitted shipping info must be returned for form re-population")
	}
	if repo.saveCalls != 0 {
		t.Error("Nothing must be persisted on validation failure")
	}
	if store.IsEmpty() {
		t.Error("Cart must be left intact on validation failure")
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	repo := newMockOrderRepository()
	svc := NewOrderService(repo)
	store := cartWith(t, "p1", "p2", "p2")

	itemsBefore := store.Items()

	order, err := svc.PlaceOrder(context.Background(), store, "user-1", validShipping())
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if order.TotalPrice != "129.99" {
		t.Errorf("Expected total 129.99, got %s", order.TotalPrice)
	}
	if order.Status != domain.StatusPending {
		t.Errorf("New order must be pending, got %s", order.Status)
	}
	if !strings.HasPrefix(order.OrderID, "ORD-") {
		t.Errorf("Unexpected order ID format: %s", order.OrderID)
	}
	if order.UserID != "user-1" {
		t.Errorf("Expected order owner user-1, got %s", order.UserID)
	}
	if order.OrderDate.IsZero() {
		t.Error("Order date must be set")
	}

	if len(order.Items) != len(itemsBefore) {
		t.Fatalf("Expected %d order lines, got %d", len(itemsBefore), len(order.Items))
	}
	for i, want := range itemsBefore {
		got := order.Items[i]
		if got.ProductID != want.ProductID || got.Quantity != want.Quantity || !got.Price.Equal(want.Price) {
			t.Errorf("Order line %d diverges from cart snapshot: got %+v want %+v", i, got, want)
		}
	}

	if !store.IsEmpty() {
		t.Error("Cart must be empty after a successful order")
	}

	stored, err := repo.FindByID(context.Background(), order.OrderID)
	if err != nil {
		t.Fatalf("Order was not persisted: %v", err)
	}
	if stored.TotalPrice != order.TotalPrice {
		t.Error("Persisted order diverges from returned order")
	}
}

func TestPlaceOrderPersistenceFailureLeavesCartIntact(t *testing.T) {
	repo := newMockOrderRepository()
	repo.saveErr = errors.New("connection refused")
	svc := NewOrderService(repo)
	store := cartWith(t, "p1", "p4")

	itemsBefore := store.Items()

	_, err := svc.PlaceOrder(context.Background(), store, "user-1", validShipping())
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("Expected ErrPersistence, got %v", err)
	}

	itemsAfter := store.Items()
	if len(itemsAfter) != len(itemsBefore) {
		t.Fatalf("Cart changed after failed persistence: %d lines before, %d after", len(itemsBefore), len(itemsAfter))
	}
	for i := range itemsBefore {
		if itemsAfter[i] != itemsBefore[i] {
			t.Errorf("Cart line %d changed after failed persistence", i)
		}
	}
}

func TestPlaceOrderGeneratesDistinctIDs(t *testing.T) {
	repo := newMockOrderRepository()
	svc := NewOrderService(repo)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		store := cartWith(t, "p1")
		order, err := svc.PlaceOrder(context.Background(), store, "user-1", validShipping())
		if err != nil {
			t.Fatalf("PlaceOrder failed: %v", err)
		}
		if seen[order.OrderID] {
			t.Fatalf("Duplicate order ID generated: %s", order.OrderID)
		}
		seen[order.OrderID] = true
	}
}

func TestCompleteOrderTransitionsPendingToCompleted(t *testing.T) {
	repo := newMockOrderRepository()
	svc := NewOrderService(repo)
	store := cartWith(t, "p1")

	order, err := svc.PlaceOrder(context.Background(), store, "user-1", validShipping())
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if err := svc.CompleteOrder(context.Background(), order.OrderID); err != nil {
		t.Fatalf("CompleteOrder failed: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), order.OrderID)
	if stored.Status != domain.StatusCompleted {
		t.Errorf("Expected status completed, got %s", stored.Status)
	}

	// The transition is one-way: completing again must fail.
	err = svc.CompleteOrder(context.Background(), order.OrderID)
	if !errors.Is(err, repository.ErrIllegalTransition) {
		t.Errorf("Expected ErrIllegalTransition on second completion, got %v", err)
	}
	stored, _ = repo.FindByID(context.Background(), order.OrderID)
	if stored.Status != domain.StatusCompleted {
		t.Error("Order status must not change on a rejected transition")
	}
}

func TestCompleteOrderUnknownOrder(t *testing.T) {
	repo := newMockOrderRepository()
	svc := NewOrderService(repo)

	err := svc.CompleteOrder(context.Background(), "ORD-0-000")
	if !errors.Is(err, repository.ErrOrderNotFound) {
		t.Errorf("Expected ErrOrderNotFound, got %v", err)
	}
}

func TestListOrdersReturnsOnlyOwnOrders(t *testing.T) {
	repo := newMockOrderRepository()
	svc := NewOrderService(repo)

	for _, userID := range []string{"user-1", "user-1", "user-2"} {
		store := cartWith(t, "p1")
		if _, err := svc.PlaceOrder(context.Background(), store, userID, validShipping()); err != nil {
			t.Fatalf("PlaceOrder failed: %v", err)
		}
	}

	orders, err := svc.ListOrders(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("Expected 2 orders for user-1, got %d", len(orders))
	}
	for _, order := range orders {
		if order.UserID != "user-1" {
			t.Errorf("Got an order belonging to %s", order.UserID)
		}
	}
}
