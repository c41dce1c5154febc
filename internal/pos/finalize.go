package pos

import (
	"context"

	"github.com/roach88/popstand/internal/cart"
	"github.com/roach88/popstand/internal/ledger"
	"github.com/roach88/popstand/internal/poserr"
)

// Finalize turns the cart into a recorded sale.
//
// Checks run first, in order: empty cart, payment (INSUFFICIENT_PAYMENT
// for short cash), then stock for every line (STOCK_INCONSISTENCY if a
// line no longer fits, e.g. another session sold the same units). Only
// then are stock decremented, the sale appended and the cart cleared,
// all under the store lock.
//
// A PERSISTENCE error is returned alongside the recorded sale.
func (s *Store) Finalize(ctx context.Context, c *cart.Cart, p ledger.Payment) (ledger.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := c.Lines()
	if len(items) == 0 {
		return ledger.Sale{}, poserr.EmptyCart()
	}

	settled, err := ledger.Settle(ledger.ItemsTotal(items), p, s.config.WalletAccountID)
	if err != nil {
		return ledger.Sale{}, err
	}

	need := make(map[string]int, len(items))
	for _, it := range items {
		need[it.ProductID] += it.Quantity
	}
	for _, it := range items {
		if err := s.catalog.CheckTake(it.ProductID, need[it.ProductID]); err != nil {
			return ledger.Sale{}, err
		}
	}

	for _, it := range items {
		if err := s.catalog.Take(it.ProductID, it.Quantity); err != nil {
			// Unreachable after CheckTake; stock was floored at zero.
			s.logger.Error("stock went negative during finalize", "error", err)
		}
	}

	sale := ledger.Sale{
		ID:              s.ids.Generate(),
		Items:           items,
		Total:           settled.Total,
		PaymentMethod:   p.Method,
		AmountPaid:      settled.AmountPaid,
		Change:          settled.Change,
		Timestamp:       s.now().UTC(),
		WalletAccountID: settled.WalletAccountID,
		Evidence:        p.Evidence,
	}
	s.ledger.Append(sale)
	c.Clear()

	s.logger.Info("sale recorded",
		"sale_id", sale.ID,
		"total", sale.Total.String(),
		"method", string(sale.PaymentMethod),
		"units", sale.Quantity(),
	)
	return sale, s.commitLocked(ctx, "finalize sale")
}
