package domain

import "github.com/shopspring/decimal"

// Product is read-only catalog reference data. Cart logic never mutates it;
// prices are copied into cart lines at add time.
type Product struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Image       string          `json:"image" db:"image"`
}
