package ledger

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a snapshot of one product line at the moment it entered a cart.
type Item struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
}

// Subtotal returns unit price times quantity.
func (it Item) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// ItemsTotal sums the subtotals of items. Order does not matter.
func ItemsTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Sale is a finalized transaction.
type Sale struct {
	ID              string          `json:"id"`
	Items           []Item          `json:"items"`
	Total           decimal.Decimal `json:"total"`
	PaymentMethod   Method          `json:"paymentMethod"`
	AmountPaid      decimal.Decimal `json:"amountPaid"`
	Change          decimal.Decimal `json:"change"`
	Timestamp       time.Time       `json:"timestamp"`
	WalletAccountID string          `json:"walletAccountId,omitempty"`
	Evidence        string          `json:"evidence,omitempty"`
}

// Quantity returns the total units across all items.
func (s Sale) Quantity() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// HasEvidence reports whether an attachment is stored on the sale.
func (s Sale) HasEvidence() bool {
	return s.Evidence != ""
}

func (s Sale) clone() Sale {
	s.Items = slices.Clone(s.Items)
	return s
}

// SalePatch lists the fields an amend may overwrite. Nil fields are left alone.
type SalePatch struct {
	Items           *[]Item
	Total           *decimal.Decimal
	PaymentMethod   *Method
	AmountPaid      *decimal.Decimal
	Change          *decimal.Decimal
	WalletAccountID *string
	Evidence        *string
}

// TouchesTotals reports whether the patch overwrites fields that other
// records derive from (stock, report totals). Amend does not recompute them.
func (p SalePatch) TouchesTotals() bool {
	return p.Items != nil || p.Total != nil || p.PaymentMethod != nil ||
		p.AmountPaid != nil || p.Change != nil
}

// IsEmpty reports whether the patch changes nothing.
func (p SalePatch) IsEmpty() bool {
	return !p.TouchesTotals() && p.WalletAccountID == nil && p.Evidence == nil
}

func (p SalePatch) apply(s *Sale) {
	if p.Items != nil {
		s.Items = slices.Clone(*p.Items)
	}
	if p.Total != nil {
		s.Total = *p.Total
	}
	if p.PaymentMethod != nil {
		s.PaymentMethod = *p.PaymentMethod
	}
	if p.AmountPaid != nil {
		s.AmountPaid = *p.AmountPaid
	}
	if p.Change != nil {
		s.Change = *p.Change
	}
	if p.WalletAccountID != nil {
		s.WalletAccountID = *p.WalletAccountID
	}
	if p.Evidence != nil {
		s.Evidence = *p.Evidence
	}
}
