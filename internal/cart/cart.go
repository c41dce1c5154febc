package cart

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/roach88/popstand/internal/catalog"
	"github.com/roach88/popstand/internal/ledger"
	"github.com/roach88/popstand/internal/poserr"
)

// StockLookup resolves a product's current state.
type StockLookup interface {
	Product(id string) (catalog.Product, bool)
}

// Cart accumulates lines for a sale that has not been finalized.
type Cart struct {
	stock StockLookup
	lines []ledger.Item
}

// New creates an empty cart that checks quantities against stock.
func New(stock StockLookup) *Cart {
	return &Cart{stock: stock}
}

func (c *Cart) find(productID string) int {
	return slices.IndexFunc(c.lines, func(it ledger.Item) bool {
		return it.ProductID == productID
	})
}

// Add puts one unit of the product in the cart.
// A new line snapshots the product's current name and price. Returns
// added=false when the product is out of stock or the line already holds
// every unit in stock.
func (c *Cart) Add(productID string) (added bool, err error) {
	p, ok := c.stock.Product(productID)
	if !ok {
		return false, poserr.UnknownProduct(productID)
	}

	i := c.find(productID)
	if i < 0 {
		if p.Stock < 1 {
			return false, nil
		}
		c.lines = append(c.lines, ledger.Item{
			ProductID: p.ID,
			Quantity:  1,
			Name:      p.Name,
			UnitPrice: p.Price,
		})
		return true, nil
	}

	next := c.lines[i].Quantity + 1
	if next > p.Stock {
		return false, nil
	}
	c.lines[i].Quantity = next
	return true, nil
}

// AdjustQuantity changes a line's quantity by delta.
// A result of zero or less removes the line. A result above current stock
// is refused with quantity unchanged, whatever the sign of delta; lower the
// line with Remove once stock has dropped below it. A product deleted from
// the catalog may still be decreased. Returns changed=false when nothing
// happened, including when the product has no line in the cart.
func (c *Cart) AdjustQuantity(productID string, delta int) (changed bool, err error) {
	i := c.find(productID)
	if i < 0 || delta == 0 {
		return false, nil
	}

	next := c.lines[i].Quantity + delta
	if next <= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
		return true, nil
	}
	p, ok := c.stock.Product(productID)
	switch {
	case !ok && delta > 0:
		return false, poserr.UnknownProduct(productID)
	case ok && next > p.Stock:
		return false, nil
	}
	c.lines[i].Quantity = next
	return true, nil
}

// Remove deletes the product's line. Returns false if there was none.
func (c *Cart) Remove(productID string) bool {
	i := c.find(productID)
	if i < 0 {
		return false
	}
	c.lines = slices.Delete(c.lines, i, i+1)
	return true
}

// Quantity returns the units of the product in the cart.
func (c *Cart) Quantity(productID string) int {
	if i := c.find(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []ledger.Item {
	return slices.Clone(c.lines)
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Units returns the total quantity across all lines.
func (c *Cart) Units() int {
	n := 0
	for _, it := range c.lines {
		n += it.Quantity
	}
	return n
}

// Total returns the sum of unit price times quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	return ledger.ItemsTotal(c.lines)
}

// ChangeDue returns the change owed if the cart were paid with tendered.
// Always zero for wallet transfers.
func (c *Cart) ChangeDue(method ledger.Method, tendered decimal.NullDecimal) decimal.Decimal {
	return ledger.ChangeFor(method, c.Total(), tendered)
}

// Clear discards every line.
func (c *Cart) Clear() {
	c.lines = nil
}
