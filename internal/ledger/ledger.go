package ledger

import (
	"slices"

	"github.com/roach88/popstand/internal/poserr"
)

// Ledger is the ordered, append/update store of finalized sales.
// It performs no locking; the store facade serializes access.
type Ledger struct {
	sales []Sale
	index map[string]int
}

// New creates a ledger holding copies of the given sales in order.
func New(sales []Sale) *Ledger {
	l := &Ledger{
		sales: make([]Sale, 0, len(sales)),
		index: make(map[string]int, len(sales)),
	}
	for _, s := range sales {
		l.Append(s)
	}
	return l
}

// Append records a sale at the end of the ledger.
func (l *Ledger) Append(s Sale) {
	l.sales = append(l.sales, s.clone())
	l.index[s.ID] = len(l.sales) - 1
}

// Amend overwrites the patched fields of the sale with the given id.
// Stock and totals derived from the sale are not recomputed.
func (l *Ledger) Amend(id string, patch SalePatch) (Sale, error) {
	i, ok := l.index[id]
	if !ok {
		return Sale{}, poserr.UnknownSale(id)
	}
	patch.apply(&l.sales[i])
	return l.sales[i].clone(), nil
}

// Get returns the sale with the given id.
func (l *Ledger) Get(id string) (Sale, bool) {
	i, ok := l.index[id]
	if !ok {
		return Sale{}, false
	}
	return l.sales[i].clone(), true
}

// List returns all sales in recording order.
func (l *Ledger) List() []Sale {
	out := make([]Sale, len(l.sales))
	for i, s := range l.sales {
		out[i] = s.clone()
	}
	return out
}

// Recent returns all sales newest first. Ties keep reverse recording order.
func (l *Ledger) Recent() []Sale {
	out := l.List()
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b Sale) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

// Len returns the number of recorded sales.
func (l *Ledger) Len() int {
	return len(l.sales)
}
