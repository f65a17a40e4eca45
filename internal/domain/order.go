package domain

import "time"

// OrderStatus enumerates the order lifecycle. The only defined transition
// is StatusPending -> StatusCompleted, performed by an administrative actor.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
)

// Order is an immutable record created from a cart at checkout time.
// Only Status changes after creation.
type Order struct {
	OrderID    string      `json:"order_id" db:"order_id"`
	UserID     string      `json:"user_id" db:"user_id"`
	FullName   string      `json:"full_name" db:"full_name"`
	Email      string      `json:"email" db:"email"`
	Phone      string      `json:"phone" db:"phone"`
	Address    string      `json:"address" db:"address"`
	Items      []CartItem  `json:"items"`
	TotalPrice string      `json:"total_price" db:"total_price"`
	Status     OrderStatus `json:"status" db:"status"`
	OrderDate  time.Time   `json:"order_date" db:"order_date"`
}

// ShippingInfo carries the checkout form fields. All four are required;
// validation failures are returned to the caller together with the submitted
// values so the form can be re-populated.
type ShippingInfo struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required"`
}
