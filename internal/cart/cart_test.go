package cart

import (
	"testing"

	"github.com/alterd/checkout/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id, price string) catalog.Product {
	return catalog.Product{
		ID:    id,
		Title: "Product " + id,
		Price: catalog.Price{Current: decimal.RequireFromString(price), Currency: "INR"},
	}
}

func TestAddItem_MergesSameKey(t *testing.T) {
	c := New("s1")
	p := product("p1", "499.00")

	require.NoError(t, c.AddItem(p, "M", "black", 1))
	require.NoError(t, c.AddItem(p, "M", "black", 2))
	require.NoError(t, c.AddItem(p, "M", "black", 4))

	require.Len(t, c.Items, 1)
	assert.Equal(t, 7, c.Items[0].Quantity)
	assert.Equal(t, "p1-M-black", c.Items[0].ID)
}

func TestAddItem_DistinctKeysKeepInsertionOrder(t *testing.T) {
	c := New("s1")
	p1 := product("p1", "10")
	p2 := product("p2", "20")

	require.NoError(t, c.AddItem(p1, "M", "black", 1))
	require.NoError(t, c.AddItem(p2, "M", "black", 1))
	require.NoError(t, c.AddItem(p1, "L", "black", 1))
	require.NoError(t, c.AddItem(p1, "M", "white", 1))
	require.NoError(t, c.AddItem(p2, "M", "black", 1))

	ids := make([]string, 0, len(c.Items))
	for _, li := range c.Items {
		ids = append(ids, li.ID)
	}
	assert.Equal(t, []string{"p1-M-black", "p2-M-black", "p1-L-black", "p1-M-white"}, ids)
	assert.Equal(t, 2, c.Items[1].Quantity)
}

func TestAddItem_RejectsNonPositiveQuantity(t *testing.T) {
	c := New("s1")
	assert.ErrorIs(t, c.AddItem(product("p1", "10"), "M", "black", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.AddItem(product("p1", "10"), "M", "black", -3), ErrInvalidQuantity)
	assert.Empty(t, c.Items)
}

func TestUpdateQuantity(t *testing.T) {
	c := New("s1")
	p := product("p1", "10")
	require.NoError(t, c.AddItem(p, "M", "black", 1))
	k := Key{ProductID: "p1", Size: "M", Color: "black"}

	c.UpdateQuantity(k, 5)
	li, ok := c.Item(k)
	require.True(t, ok)
	assert.Equal(t, 5, li.Quantity)

	// unknown key is a no-op
	c.UpdateQuantity(Key{ProductID: "nope"}, 3)
	assert.Len(t, c.Items, 1)
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	k := Key{ProductID: "p1", Size: "M", Color: "black"}

	a := New("a")
	require.NoError(t, a.AddItem(product("p1", "10"), "M", "black", 2))
	a.UpdateQuantity(k, 0)

	b := New("b")
	require.NoError(t, b.AddItem(product("p1", "10"), "M", "black", 2))
	b.RemoveItem(k)

	_, okA := a.Item(k)
	_, okB := b.Item(k)
	assert.False(t, okA)
	assert.False(t, okB)
	assert.Equal(t, a.Items, b.Items)
}

func TestRemoveItem_Idempotent(t *testing.T) {
	c := New("s1")
	require.NoError(t, c.AddItem(product("p1", "10"), "M", "black", 1))
	k := Key{ProductID: "p1", Size: "M", Color: "black"}

	c.RemoveItem(k)
	c.RemoveItem(k)
	assert.Empty(t, c.Items)
}

func TestSubtotal_UsesAddTimePrice(t *testing.T) {
	c := New("s1")
	p := product("p1", "199.50")
	require.NoError(t, c.AddItem(p, "M", "black", 2))
	require.NoError(t, c.AddItem(product("p2", "1000"), "S", "red", 1))

	// catalog price changes after the fact
	p.Price.Current = decimal.NewFromInt(9999)
	require.NoError(t, c.AddItem(p, "M", "black", 1))

	assert.True(t, c.Subtotal().Equal(decimal.RequireFromString("1598.50")), c.Subtotal().String())
	assert.Equal(t, 4, c.ItemCount())
}

func TestLookup(t *testing.T) {
	c := New("s1")
	require.NoError(t, c.AddItem(product("p1", "10"), "M", "black", 1))

	k, ok := c.Lookup("p1-M-black")
	require.True(t, ok)
	assert.Equal(t, Key{ProductID: "p1", Size: "M", Color: "black"}, k)

	_, ok = c.Lookup("p1-L-black")
	assert.False(t, ok)
}

func TestLineItemIDsAreUnambiguous(t *testing.T) {
	c := New("s1")
	require.NoError(t, c.AddItem(product("tee-M", "10"), "L", "red", 1))
	require.NoError(t, c.AddItem(product("tee", "20"), "M-L", "red", 1))
	require.NoError(t, c.AddItem(product("50%", "30"), "M", "red", 1))

	require.Len(t, c.Items, 3)
	assert.Equal(t, "tee%2DM-L-red", c.Items[0].ID)
	assert.Equal(t, "tee-M%2DL-red", c.Items[1].ID)
	assert.Equal(t, "50%25-M-red", c.Items[2].ID)

	for _, li := range c.Items {
		k, ok := c.Lookup(li.ID)
		require.True(t, ok, li.ID)
		assert.Equal(t, li.Key, k)
	}

	c.RemoveItem(Key{ProductID: "tee", Size: "M-L", Color: "red"})
	require.Len(t, c.Items, 2)
	assert.Equal(t, "tee-M", c.Items[0].Key.ProductID)
}

func TestTotals(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		qty      int
		shipping string
		tax      string
		total    string
	}{
		{"below threshold pays shipping", "500", 1, "50", "90", "640"},
		{"exactly threshold pays shipping", "1000", 1, "50", "180", "1230"},
		{"above threshold ships free", "600", 2, "0", "216", "1416"},
		{"tax rounds to paise", "33.33", 1, "50", "6", "89.33"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("s1")
			require.NoError(t, c.AddItem(product("p1", tt.price), "M", "black", tt.qty))
			got := c.Totals()
			assert.True(t, got.Shipping.Equal(decimal.RequireFromString(tt.shipping)), got.Shipping.String())
			assert.True(t, got.Tax.Equal(decimal.RequireFromString(tt.tax)), got.Tax.String())
			assert.True(t, got.Total.Equal(decimal.RequireFromString(tt.total)), got.Total.String())
			assert.Equal(t, "INR", got.Currency)
		})
	}
}

func TestTotals_EmptyCart(t *testing.T) {
	got := New("s1").Totals()
	assert.True(t, got.Total.IsZero())
	assert.True(t, got.Shipping.IsZero())
	assert.Equal(t, 0, got.ItemCount)
}

func TestClone_Independent(t *testing.T) {
	c := New("s1")
	require.NoError(t, c.AddItem(product("p1", "10"), "M", "black", 1))
	cp := c.Clone()
	cp.Items[0].Quantity = 99
	assert.Equal(t, 1, c.Items[0].Quantity)
}
