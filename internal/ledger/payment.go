package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roach88/popstand/internal/poserr"
)

// Method is how a sale was paid.
type Method string

const (
	// MethodCash is physical cash handed over at the stand.
	MethodCash Method = "cash"

	// MethodWallet is a mobile-wallet transfer settled outside the till.
	MethodWallet Method = "wallet-transfer"
)

// Methods lists every payment method in report order.
var Methods = []Method{MethodCash, MethodWallet}

// ParseMethod accepts the canonical names and their short operator aliases.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash", "efectivo":
		return MethodCash, nil
	case "wallet", "wallet-transfer", "yape":
		return MethodWallet, nil
	}
	return "", poserr.Validation("unknown payment method %q", s)
}

// Payment is what the operator supplies when closing a sale.
type Payment struct {
	Method Method

	// Tendered is the cash handed over. Ignored for wallet transfers.
	// When not valid the customer is assumed to pay the exact total.
	Tendered decimal.NullDecimal

	// WalletAccountID overrides the configured receiving account.
	WalletAccountID string

	// Evidence is an opaque attachment reference, stored verbatim.
	Evidence string
}

// Settlement is the computed money side of a sale.
type Settlement struct {
	Total           decimal.Decimal
	AmountPaid      decimal.Decimal
	Change          decimal.Decimal
	WalletAccountID string
}

// Settle applies the payment rules to a sale total.
func Settle(total decimal.Decimal, p Payment, defaultAccount string) (Settlement, error) {
	switch p.Method {
	case MethodCash:
		paid := total
		if p.Tendered.Valid {
			paid = p.Tendered.Decimal
		}
		if paid.LessThan(total) {
			return Settlement{}, poserr.InsufficientPayment(paid.String(), total.String())
		}
		return Settlement{
			Total:      total,
			AmountPaid: paid,
			Change:     paid.Sub(total),
		}, nil

	case MethodWallet:
		account := p.WalletAccountID
		if account == "" {
			account = defaultAccount
		}
		return Settlement{
			Total:           total,
			AmountPaid:      total,
			Change:          decimal.Zero,
			WalletAccountID: account,
		}, nil
	}
	return Settlement{}, poserr.Validation("unknown payment method %q", p.Method)
}

// ChangeFor returns the change owed for a tender against total.
// Always zero for wallet transfers and for an absent tender.
func ChangeFor(method Method, total decimal.Decimal, tendered decimal.NullDecimal) decimal.Decimal {
	if method != MethodCash || !tendered.Valid {
		return decimal.Zero
	}
	if change := tendered.Decimal.Sub(total); change.IsPositive() {
		return change
	}
	return decimal.Zero
}
