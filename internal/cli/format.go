package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roach88/popstand/internal/catalog"
	"github.com/roach88/popstand/internal/ledger"
	"github.com/roach88/popstand/internal/poserr"
)

// parseMoney parses a non-negative decimal amount.
func parseMoney(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, poserr.Validation("%s %q is not a number", field, s)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, poserr.Validation("%s must not be negative, got %s", field, s)
	}
	return d, nil
}

// parseCount parses a non-negative integer.
func parseCount(field, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, poserr.Validation("%s %q is not an integer", field, s)
	}
	if n < 0 {
		return 0, poserr.Validation("%s must not be negative, got %d", field, n)
	}
	return n, nil
}

func money(currency string, d decimal.Decimal) string {
	return currency + " " + d.StringFixed(2)
}

func writeProducts(w io.Writer, currency string, products []catalog.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-20s  %10s  %5s  %5s\n", "ID", "NAME", "PRICE", "STOCK", "SOLD")
	for _, p := range products {
		fmt.Fprintf(w, "%-36s  %-20s  %10s  %5d  %5d\n", p.ID, p.Name, money(currency, p.Price), p.Stock, p.UnitsSold())
	}
}

func writeProduct(w io.Writer, currency string, p catalog.Product) {
	fmt.Fprintf(w, "%s  %s  %s  stock %d\n", p.ID, p.Name, money(currency, p.Price), p.Stock)
}

func writeSales(w io.Writer, currency string, sales []ledger.Sale) {
	if len(sales) == 0 {
		fmt.Fprintln(w, "No sales.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-20s  %-15s  %5s  %12s\n", "ID", "TIME", "METHOD", "UNITS", "TOTAL")
	for _, s := range sales {
		fmt.Fprintf(w, "%-36s  %-20s  %-15s  %5d  %12s\n",
			s.ID, s.Timestamp.Format("2006-01-02 15:04:05"), s.PaymentMethod, s.Quantity(), money(currency, s.Total))
	}
}

func writeSale(w io.Writer, currency string, s ledger.Sale) {
	fmt.Fprintf(w, "Sale %s\n", s.ID)
	fmt.Fprintf(w, "  %-14s %s\n", "Time", s.Timestamp.Format("2006-01-02 15:04:05 MST"))
	for _, it := range s.Items {
		fmt.Fprintf(w, "  %3d x %-20s %s\n", it.Quantity, it.Name, money(currency, it.Subtotal()))
	}
	fmt.Fprintf(w, "  %-14s %s\n", "Total", money(currency, s.Total))
	fmt.Fprintf(w, "  %-14s %s\n", "Method", s.PaymentMethod)
	fmt.Fprintf(w, "  %-14s %s\n", "Paid", money(currency, s.AmountPaid))
	if s.PaymentMethod == ledger.MethodCash {
		fmt.Fprintf(w, "  %-14s %s\n", "Change", money(currency, s.Change))
	}
	if s.WalletAccountID != "" {
		fmt.Fprintf(w, "  %-14s %s\n", "Account", s.WalletAccountID)
	}
	if s.HasEvidence() {
		fmt.Fprintf(w, "  %-14s %d bytes attached\n", "Evidence", len(s.Evidence))
	}
}
