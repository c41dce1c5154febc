package cart

import (
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/popstand/internal/catalog"
	"github.com/roach88/popstand/internal/ledger"
	"github.com/roach88/popstand/internal/poserr"
)

// fakeStock is a map-backed StockLookup.
type fakeStock map[string]catalog.Product

func (f fakeStock) Product(id string) (catalog.Product, bool) {
	p, ok := f[id]
	return p, ok
}

func newStock(products ...catalog.Product) fakeStock {
	f := fakeStock{}
	for _, p := range products {
		f[p.ID] = p
	}
	return f
}

func product(id string, price string, stock int) catalog.Product {
	return catalog.Product{ID: id, Name: "name-" + id, Price: decimal.RequireFromString(price), Stock: stock, InitialStock: stock}
}

func addN(t *testing.T, c *Cart, id string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		added, err := c.Add(id)
		require.NoError(t, err)
		require.True(t, added, "add #%d of %s", i+1, id)
	}
}

func TestAdd_ThreeUnits(t *testing.T) {
	c := New(newStock(product("p-1", "10", 5)))
	addN(t, c, "p-1", 3)

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 3, c.Quantity("p-1"))
	assert.Equal(t, "30", c.Total().String())
}

func TestAdd_OutOfStockRefused(t *testing.T) {
	c := New(newStock(product("p-1", "10", 0)))

	added, err := c.Add("p-1")
	require.NoError(t, err)
	assert.False(t, added)
	assert.True(t, c.IsEmpty())
}

func TestAdd_CannotExceedStock(t *testing.T) {
	c := New(newStock(product("p-1", "10", 2)))
	addN(t, c, "p-1", 2)

	added, err := c.Add("p-1")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 2, c.Quantity("p-1"))
}

func TestAdd_UnknownProduct(t *testing.T) {
	c := New(newStock())
	_, err := c.Add("missing")
	assert.True(t, poserr.IsKind(err, poserr.KindUnknownEntity))
}

func TestAdd_SnapshotsPrice(t *testing.T) {
	stock := newStock(product("p-1", "10", 5))
	c := New(stock)
	addN(t, c, "p-1", 1)

	edited := stock["p-1"]
	edited.Price = decimal.NewFromInt(99)
	edited.Name = "Renamed"
	stock["p-1"] = edited
	addN(t, c, "p-1", 1)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "name-p-1", lines[0].Name)
	assert.Equal(t, "10", lines[0].UnitPrice.String())
	assert.Equal(t, "20", c.Total().String())
}

func TestAdjustQuantity(t *testing.T) {
	tests := []struct {
		name        string
		start       int
		delta       int
		wantChanged bool
		wantQty     int
	}{
		{"increase within stock", 2, 2, true, 4},
		{"increase to exactly stock", 2, 3, true, 5},
		{"increase past stock refused", 2, 4, false, 2},
		{"decrease", 3, -1, true, 2},
		{"decrease to zero removes", 2, -2, true, 0},
		{"decrease below zero removes", 2, -7, true, 0},
		{"zero delta", 2, 0, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(newStock(product("p-1", "10", 5)))
			addN(t, c, "p-1", tt.start)

			changed, err := c.AdjustQuantity("p-1", tt.delta)
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantQty, c.Quantity("p-1"))
			if tt.wantQty == 0 {
				assert.True(t, c.IsEmpty())
			}
		})
	}
}

func TestAdjustQuantity_NoLine(t *testing.T) {
	c := New(newStock(product("p-1", "10", 5)))
	changed, err := c.AdjustQuantity("p-1", 1)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, c.IsEmpty())
}

func TestAdjustQuantity_DecreaseAfterProductDeleted(t *testing.T) {
	stock := newStock(product("p-1", "10", 5))
	c := New(stock)
	addN(t, c, "p-1", 2)
	delete(stock, "p-1")

	changed, err := c.AdjustQuantity("p-1", -1)
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = c.AdjustQuantity("p-1", 1)
	assert.True(t, poserr.IsKind(err, poserr.KindUnknownEntity))
}

func TestAdjustQuantity_DecreaseStillAboveStockRefused(t *testing.T) {
	stock := newStock(product("p-1", "10", 5))
	c := New(stock)
	addN(t, c, "p-1", 5)

	// Another session sold three units.
	stock["p-1"] = product("p-1", "10", 2)

	changed, err := c.AdjustQuantity("p-1", -1)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 5, c.Quantity("p-1"))

	changed, err = c.AdjustQuantity("p-1", -3)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, c.Quantity("p-1"))
}

func TestRemove(t *testing.T) {
	c := New(newStock(product("p-1", "10", 5), product("p-2", "3", 5)))
	addN(t, c, "p-1", 2)
	addN(t, c, "p-2", 1)

	assert.True(t, c.Remove("p-1"))
	assert.False(t, c.Remove("p-1"))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "3", c.Total().String())
}

func TestChangeDue(t *testing.T) {
	c := New(newStock(product("p-1", "10", 5)))
	addN(t, c, "p-1", 3)
	fifty := decimal.NewNullDecimal(decimal.NewFromInt(50))

	assert.Equal(t, "20", c.ChangeDue(ledger.MethodCash, fifty).String())
	assert.True(t, c.ChangeDue(ledger.MethodWallet, fifty).IsZero())
	assert.True(t, c.ChangeDue(ledger.MethodCash, decimal.NewNullDecimal(decimal.NewFromInt(10))).IsZero())
}

func TestClear(t *testing.T) {
	c := New(newStock(product("p-1", "10", 5)))
	addN(t, c, "p-1", 2)
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Total().IsZero())
}

// Adding n units one by one gives the same total as the line n*price,
// regardless of the order products were added in.
func TestTotal_SplitMergeAndReorder(t *testing.T) {
	stock := newStock(product("a", "2.50", 10), product("b", "4", 10), product("c", "0.99", 10))

	forward := New(stock)
	addN(t, forward, "a", 3)
	addN(t, forward, "b", 2)
	addN(t, forward, "c", 1)

	interleaved := New(stock)
	for _, id := range []string{"c", "a", "b", "a", "b", "a"} {
		addN(t, interleaved, id, 1)
	}

	want := ledger.ItemsTotal([]ledger.Item{
		{Quantity: 3, UnitPrice: decimal.RequireFromString("2.50")},
		{Quantity: 2, UnitPrice: decimal.NewFromInt(4)},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("0.99")},
	})
	assert.True(t, forward.Total().Equal(want))
	assert.True(t, interleaved.Total().Equal(want))
	assert.Equal(t, "16.49", want.String())
}

// No sequence of Add calls lets a line exceed the product's stock.
func TestProperty_AddNeverExceedsStock(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	stock := newStock(product("a", "1", 0), product("b", "1", 3), product("c", "1", 7))
	ids := []string{"a", "b", "c"}
	c := New(stock)

	for i := 0; i < 300; i++ {
		id := ids[rng.IntN(len(ids))]
		if rng.IntN(4) == 0 {
			_, err := c.AdjustQuantity(id, rng.IntN(5)-2)
			require.NoError(t, err)
		} else {
			_, err := c.Add(id)
			require.NoError(t, err)
		}
		for _, line := range c.Lines() {
			require.LessOrEqual(t, line.Quantity, stock[line.ProductID].Stock)
			require.GreaterOrEqual(t, line.Quantity, 1)
		}
	}
}
