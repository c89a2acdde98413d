package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Price struct {
	Current  decimal.Decimal  `json:"current"`
	Original *decimal.Decimal `json:"original,omitempty"`
	Currency string           `json:"currency"`
}

// Product is read-only catalog data. Carts keep their own copy.
type Product struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	Title     string    `json:"title"`
	Price     Price     `json:"price"`
	Images    []string  `json:"images"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
