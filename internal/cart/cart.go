package cart

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/alterd/checkout/internal/catalog"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInsufficientStock = errors.New("not enough stock for requested quantity")
)

// Key identifies a line item. At most one item per key lives in a cart.
type Key struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// idEscaper keeps '-' out of the individual fields so distinct keys never
// render to the same id. Plain values render unchanged.
var idEscaper = strings.NewReplacer("%", "%25", "-", "%2D")

// String is the line item id exposed to clients: "<product>-<size>-<color>".
func (k Key) String() string {
	return idEscaper.Replace(k.ProductID) + "-" + idEscaper.Replace(k.Size) + "-" + idEscaper.Replace(k.Color)
}

type LineItem struct {
	ID       string          `json:"id"`
	Key      Key             `json:"key"`
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	AddedAt  time.Time       `json:"added_at"`
}

// LineTotal uses the unit price captured when the item was added.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Product.Price.Current.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func New(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Items: []LineItem{}}
}

func (c *Cart) indexOf(k Key) int {
	return slices.IndexFunc(c.Items, func(li LineItem) bool { return li.Key == k })
}

// AddItem merges into an existing line for the same key or appends a new one.
func (c *Cart) AddItem(p catalog.Product, size, color string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	k := Key{ProductID: p.ID, Size: size, Color: color}
	if i := c.indexOf(k); i >= 0 {
		c.Items[i].Quantity += quantity
		return nil
	}
	c.Items = append(c.Items, LineItem{
		ID:       k.String(),
		Key:      k,
		Product:  p,
		Quantity: quantity,
		AddedAt:  time.Now().UTC(),
	})
	return nil
}

// UpdateQuantity replaces the quantity in place. n <= 0 removes the line.
// Unknown keys are ignored: UI events can race with removals.
func (c *Cart) UpdateQuantity(k Key, n int) {
	if n <= 0 {
		c.RemoveItem(k)
		return
	}
	if i := c.indexOf(k); i >= 0 {
		c.Items[i].Quantity = n
	}
}

func (c *Cart) RemoveItem(k Key) {
	if i := c.indexOf(k); i >= 0 {
		c.Items = slices.Delete(c.Items, i, i+1)
	}
}

func (c *Cart) Item(k Key) (LineItem, bool) {
	if i := c.indexOf(k); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

// Lookup resolves a client-facing line item id.
func (c *Cart) Lookup(id string) (Key, bool) {
	for _, li := range c.Items {
		if li.Key.String() == id {
			return li.Key, true
		}
	}
	return Key{}, false
}

func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.Items {
		total = total.Add(li.LineTotal())
	}
	return total
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, li := range c.Items {
		n += li.Quantity
	}
	return n
}

// Currency of the cart; items are assumed to share one currency.
func (c *Cart) Currency() string {
	if len(c.Items) == 0 {
		return ""
	}
	return c.Items[0].Product.Price.Currency
}

func (c *Cart) Clone() *Cart {
	out := *c
	out.Items = slices.Clone(c.Items)
	return &out
}
