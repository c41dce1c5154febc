package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/roach88/popstand/internal/ledger"
)

// DefaultCurrencySymbol prefixes money amounts in rendered reports.
const DefaultCurrencySymbol = "S/"

// Render writes the report as plain text, suitable for printing.
func Render(w io.Writer, r Report, currency string) error {
	if currency == "" {
		currency = DefaultCurrencySymbol
	}
	money := func(d decimal.Decimal) string {
		return currency + " " + d.StringFixed(2)
	}

	bw := bufio.NewWriter(w)
	row := func(label, value string) {
		fmt.Fprintf(bw, "  %-20s %s\n", label, value)
	}

	fmt.Fprintln(bw, "CLOSING REPORT")
	fmt.Fprintln(bw, "==============")
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Sales")
	row("Total revenue", money(r.TotalRevenue))
	row("Transactions", fmt.Sprintf("%d", r.Transactions))
	row("Cash", money(r.Revenue(ledger.MethodCash)))
	row("Wallet transfer", money(r.Revenue(ledger.MethodWallet)))
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Cash reconciliation")
	row("Opening cash", money(r.OpeningCash))
	row("Cash sales", money(r.Revenue(ledger.MethodCash)))
	row("Change given", money(r.TotalChangeGiven))
	row("Cash on hand", money(r.CashOnHand))
	row("Wallet transfers", money(r.Revenue(ledger.MethodWallet)))
	row("Total to hand over", money(r.TotalToHandOver))
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "Products sold (%d units)\n", r.TotalUnitsSold)
	if len(r.ProductsSold) == 0 {
		fmt.Fprintln(bw, "  none")
	}
	for _, p := range r.ProductsSold {
		row(p.Name, fmt.Sprintf("%d x %s = %s (%d left)", p.UnitsSold, money(p.UnitPrice), money(p.Revenue), p.Remaining))
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Remaining inventory")
	if len(r.Inventory) == 0 {
		fmt.Fprintln(bw, "  none")
	}
	for _, line := range r.Inventory {
		row(line.Name, fmt.Sprintf("%d %s", line.Stock, line.Band))
	}

	return bw.Flush()
}
