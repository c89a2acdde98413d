package cart

import "github.com/shopspring/decimal"

var (
	FreeShippingOver = decimal.NewFromInt(1000)
	FlatShipping     = decimal.NewFromInt(50)
	TaxRate          = decimal.RequireFromString("0.18") // GST
)

type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	Currency  string          `json:"currency,omitempty"`
}

// Totals is what the checkout charges: subtotal plus shipping plus tax,
// each rounded to two places.
func (c *Cart) Totals() Totals {
	sub := c.Subtotal().Round(2)
	t := Totals{
		Subtotal:  sub,
		Shipping:  decimal.Zero,
		Tax:       decimal.Zero,
		ItemCount: c.ItemCount(),
		Currency:  c.Currency(),
	}
	if len(c.Items) == 0 {
		t.Total = decimal.Zero
		return t
	}
	if sub.LessThanOrEqual(FreeShippingOver) {
		t.Shipping = FlatShipping
	}
	t.Tax = sub.Mul(TaxRate).Round(2)
	t.Total = sub.Add(t.Shipping).Add(t.Tax)
	return t
}
