package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/roach88/popstand/internal/poserr"
)

// Catalog is an ordered set of products keyed by id.
type Catalog struct {
	products []Product
	index    map[string]int
}

// New creates a catalog holding copies of the given products.
func New(products []Product) *Catalog {
	c := &Catalog{
		products: make([]Product, len(products)),
		index:    make(map[string]int, len(products)),
	}
	copy(c.products, products)
	c.reindex()
	return c
}

func (c *Catalog) reindex() {
	clear(c.index)
	for i, p := range c.products {
		c.index[p.ID] = i
	}
}

// Add creates a product with the given id. InitialStock starts equal to stock.
func (c *Catalog) Add(id, name string, price decimal.Decimal, stock int) Product {
	p := Product{
		ID:           id,
		Name:         NormalizeName(name),
		Price:        price,
		Stock:        stock,
		InitialStock: stock,
	}
	c.products = append(c.products, p)
	c.index[id] = len(c.products) - 1
	return p
}

// Update merges patch into the product with the given id.
// Unknown ids are a no-op and return ok=false.
//
// If the patched stock exceeds InitialStock, InitialStock is raised to
// match so that units sold never goes negative.
func (c *Catalog) Update(id string, patch Patch) (Product, bool) {
	i, ok := c.index[id]
	if !ok {
		return Product{}, false
	}

	p := &c.products[i]
	if patch.Name != nil {
		p.Name = NormalizeName(*patch.Name)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
		if p.Stock > p.InitialStock {
			p.InitialStock = p.Stock
		}
	}
	return *p, true
}

// Delete removes the product. Historical sales keep their own snapshots.
// Returns false if the id is unknown.
func (c *Catalog) Delete(id string) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.products = append(c.products[:i], c.products[i+1:]...)
	c.reindex()
	return true
}

// Restock adds units to both Stock and InitialStock.
func (c *Catalog) Restock(id string, units int) (Product, error) {
	if units <= 0 {
		return Product{}, poserr.Validation("units must be greater than 0, got %d", units)
	}
	i, ok := c.index[id]
	if !ok {
		return Product{}, poserr.UnknownProduct(id)
	}
	p := &c.products[i]
	p.Stock += units
	p.InitialStock += units
	return *p, nil
}

// CheckTake verifies that qty units can be taken from the product
// without driving stock below zero.
func (c *Catalog) CheckTake(id string, qty int) error {
	i, ok := c.index[id]
	if !ok {
		return poserr.StockInconsistency(id, qty, 0)
	}
	if have := c.products[i].Stock; qty > have {
		return poserr.StockInconsistency(id, qty, have)
	}
	return nil
}

// Take decrements stock by qty. Callers check with CheckTake first;
// Take still floors at zero and reports the violation.
func (c *Catalog) Take(id string, qty int) error {
	if err := c.CheckTake(id, qty); err != nil {
		if i, ok := c.index[id]; ok {
			c.products[i].Stock = 0
		}
		return err
	}
	c.products[c.index[id]].Stock -= qty
	return nil
}

// Get returns the product with the given id.
func (c *Catalog) Get(id string) (Product, bool) {
	i, ok := c.index[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// List returns a copy of all products in insertion order.
func (c *Catalog) List() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Available returns products that still have stock to sell.
func (c *Catalog) Available() []Product {
	var out []Product
	for _, p := range c.products {
		if p.Stock > 0 {
			out = append(out, p)
		}
	}
	return out
}

// TotalStock sums Stock across all products.
func (c *Catalog) TotalStock() int {
	total := 0
	for _, p := range c.products {
		total += p.Stock
	}
	return total
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}
