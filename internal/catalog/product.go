package catalog

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/popstand/internal/poserr"
)

// Product is a sellable item with its stock counters.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	InitialStock int             `json:"initialStock"`
}

// UnitsSold returns how many units left the catalog through sales.
func (p Product) UnitsSold() int {
	return p.InitialStock - p.Stock
}

// Patch lists the fields an update may change. Nil fields are left alone.
// InitialStock is deliberately absent: it only moves through Restock, or
// is raised to match a patched Stock that would exceed it.
type Patch struct {
	Name  *string
	Price *decimal.Decimal
	Stock *int
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Stock == nil
}

// NormalizeName trims a product name and converts it to NFC so names typed
// on different keyboards compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ParseUnits parses an operator-typed restock quantity.
// Returns a VALIDATION error for non-numeric or non-positive input.
func ParseUnits(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, poserr.Validation("units %q is not a whole number", s)
	}
	if n <= 0 {
		return 0, poserr.Validation("units must be greater than 0, got %d", n)
	}
	return n, nil
}
