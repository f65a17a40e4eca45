package domain

import "github.com/shopspring/decimal"

// CartItem is a denormalized snapshot of a product taken when it was added
// to the cart. Name, price and image are copied by value, so a later catalog
// price change does not retroactively affect an open cart.
//
// Invariant: Quantity >= 1 in any stored cart. An update to a non-positive
// quantity removes the line instead of storing it.
type CartItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}
