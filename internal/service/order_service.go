package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"joules-shop/internal/cart"
	"joules-shop/internal/domain"
	"joules-shop/internal/pricing"
	"joules-shop/internal/repository"

	"github.com/go-playground/validator/v10"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrPersistence = errors.New("failed to persist order")
)

// ShippingValidationError reports the missing or malformed checkout fields,
// keyed by form field name, together with the submitted values so the caller
// can re-populate the form. Nothing is persisted when it is returned.
type ShippingValidationError struct {
	Fields map[string]string
	Info   domain.ShippingInfo
}

func (e *ShippingValidationError) Error() string {
	return "incomplete shipping information"
}

// OrderService defines the interface for checkout and order lifecycle logic.
type OrderService interface {
	PlaceOrder(ctx context.Context, store *cart.Store, userID string, info domain.ShippingInfo) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	CompleteOrder(ctx context.Context, orderID string) error
}

type orderService struct {
	orders   repository.OrderRepository
	validate *validator.Validate
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(orders repository.OrderRepository) OrderService {
	return &orderService{
		orders:   orders,
		validate: validator.New(),
	}
}

// PlaceOrder converts the cart into an immutable order.
//
// The whole check-validate-compute-persist-clear sequence runs inside the
// cart's checkout critical section, so concurrent cart mutation in the same
// session cannot interleave with it. The empty-cart check comes before
// shipping validation, so an empty cart is reported as such even when the
// form is also incomplete. The cart is cleared strictly after persistence
// succeeds; on any failure it is left untouched so the customer can retry.
func (s *orderService) PlaceOrder(ctx context.Context, store *cart.Store, userID string, info domain.ShippingInfo) (*domain.Order, error) {
	var order *domain.Order
	err := store.Checkout(func(items []domain.CartItem) error {
		if len(items) == 0 {
			return ErrEmptyCart
		}

		if err := s.validate.Struct(info); err != nil {
			return &ShippingValidationError{
				Fields: shippingFieldErrors(err),
				Info:   info,
			}
		}

		order = &domain.Order{
			OrderID:    newOrderID(),
			UserID:     userID,
			FullName:   info.FullName,
			Email:      info.Email,
			Phone:      info.Phone,
			Address:    info.Address,
			Items:      items,
			TotalPrice: pricing.FormatTotal(items),
			Status:     domain.StatusPending,
			OrderDate:  time.Now().UTC(),
		}

		if err := s.orders.Save(ctx, order); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrder retrieves a single order.
func (s *orderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.orders.FindByID(ctx, orderID)
}

// ListOrders retrieves a user's order history.
func (s *orderService) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.orders.FindByUser(ctx, userID)
}

// CompleteOrder performs the one-way pending -> completed administrative
// transition. No other transitions exist.
func (s *orderService) CompleteOrder(ctx context.Context, orderID string) error {
	return s.orders.UpdateStatus(ctx, orderID, domain.StatusPending, domain.StatusCompleted)
}

// newOrderID builds an order identifier from the current timestamp and a
// random suffix. Uniqueness is ultimately enforced by the orders table
// primary key.
func newOrderID() string {
	return fmt.Sprintf("ORD-%d-%03d", time.Now().UnixMilli(), rand.IntN(1000))
}

func shippingFieldErrors(err error) map[string]string {
	fields := make(map[string]string)

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fields
	}

	for _, fe := range validationErrors {
		name := shippingFieldName(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = "This field is required"
		case "email":
			fields[name] = "Invalid email format"
		default:
			fields[name] = "Invalid value"
		}
	}

	return fields
}

// shippingFieldName maps struct field names to the form field names the
// presentation layer keys on.
func shippingFieldName(structField string) string {
	switch structField {
	case "FullName":
		return "full_name"
	case "Email":
		return "email"
	case "Phone":
		return "phone"
	case "Address":
		return "address"
	default:
		return structField
	}
}
