// Package pricing computes cart and line totals with exact decimal
// arithmetic, so repeated accumulation never drifts from the reference
// two-decimal amounts.
package pricing

import (
	"joules-shop/internal/domain"

	"github.com/shopspring/decimal"
)

// LineTotal returns price times quantity for one cart line.
func LineTotal(item domain.CartItem) decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Total returns the exact sum of all line totals. The result depends only on
// the multiset of (product, quantity) pairs, not on their order.
func Total(items []domain.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item))
	}
	return total
}

// FormatTotal renders the cart total fixed to two decimal places, the form
// used for display and for storage on an order.
func FormatTotal(items []domain.CartItem) string {
	return Total(items).StringFixed(2)
}
