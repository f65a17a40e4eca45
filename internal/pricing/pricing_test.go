package pricing

import (
	"testing"

	"joules-shop/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func item(price string, quantity int) domain.CartItem {
	return domain.CartItem{
		ProductID: "p",
		Name:      "item",
		Price:     decimal.RequireFromString(price),
		Quantity:  quantity,
	}
}

func TestFormatTotalReferenceCart(t *testing.T) {
	// One shirt at 39.99 plus two at 45.00 must come out to exactly 129.99,
	// not 129.99000000000001.
	items := []domain.CartItem{
		item("39.99", 1),
		item("45.00", 2),
	}

	if got := FormatTotal(items); got != "129.99" {
		t.Errorf("Expected total 129.99, got %s", got)
	}
}

func TestFormatTotalEmptyCart(t *testing.T) {
	if got := FormatTotal(nil); got != "0.00" {
		t.Errorf("Expected 0.00 for empty cart, got %s", got)
	}
}

func TestFormatTotalAlwaysTwoDecimals(t *testing.T) {
	items := []domain.CartItem{item("45.00", 2)}
	if got := FormatTotal(items); got != "90.00" {
		t.Errorf("Expected 90.00, got %s", got)
	}
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(item("55.50", 3))
	if !got.Equal(decimal.RequireFromString("166.50")) {
		t.Errorf("Expected 166.50, got %s", got)
	}
}

func TestProperty_TotalIsOrderIndependent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total is invariant under line reordering", prop.ForAll(
		func(cents []int, quantities []int) bool {
			n := len(cents)
			if len(quantities) < n {
				n = len(quantities)
			}

			items := make([]domain.CartItem, 0, n)
			for i := 0; i < n; i++ {
				items = append(items, domain.CartItem{
					ProductID: "p",
					Price:     decimal.NewFromInt(int64(cents[i])).Div(decimal.NewFromInt(100)),
					Quantity:  quantities[i],
				})
			}

			forward := Total(items)

			reversed := make([]domain.CartItem, n)
			for i := range items {
				reversed[n-1-i] = items[i]
			}
			backward := Total(reversed)

			return forward.Equal(backward)
		},
		gen.SliceOf(gen.IntRange(1, 999999)),
		gen.SliceOf(gen.IntRange(1, 50)),
	))

	properties.Property("total equals the sum of line totals", prop.ForAll(
		func(cents []int) bool {
			items := make([]domain.CartItem, 0, len(cents))
			for _, c := range cents {
				items = append(items, domain.CartItem{
					ProductID: "p",
					Price:     decimal.NewFromInt(int64(c)).Div(decimal.NewFromInt(100)),
					Quantity:  1,
				})
			}

			sum := decimal.Zero
			for _, it := range items {
				sum = sum.Add(LineTotal(it))
			}

			return Total(items).Equal(sum)
		},
		gen.SliceOf(gen.IntRange(1, 999999)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
