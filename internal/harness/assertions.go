package harness

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/roach88/popstand/internal/ledger"
	"github.com/roach88/popstand/internal/report"
)

// reportFigures are the expect.report keys.
var reportFigures = map[string]func(report.Report) string{
	"transactions":       func(r report.Report) string { return strconv.Itoa(r.Transactions) },
	"total_revenue":      func(r report.Report) string { return r.TotalRevenue.String() },
	"cash_revenue":       func(r report.Report) string { return r.Revenue(ledger.MethodCash).String() },
	"wallet_revenue":     func(r report.Report) string { return r.Revenue(ledger.MethodWallet).String() },
	"change_given":       func(r report.Report) string { return r.TotalChangeGiven.String() },
	"opening_cash":       func(r report.Report) string { return r.OpeningCash.String() },
	"cash_on_hand":       func(r report.Report) string { return r.CashOnHand.String() },
	"total_to_hand_over": func(r report.Report) string { return r.TotalToHandOver.String() },
	"units_sold":         func(r report.Report) string { return strconv.Itoa(r.TotalUnitsSold) },
}

func (h *Harness) checkExpectations(e *Expectations, result *Result) []string {
	var errs []string

	for _, ref := range slices.Sorted(maps.Keys(e.Stock)) {
		want := e.Stock[ref]
		p, ok := h.store.Product(h.refs[ref])
		switch {
		case !ok:
			errs = append(errs, fmt.Sprintf("expect.stock[%s]: product no longer exists", ref))
		case p.Stock != want:
			errs = append(errs, fmt.Sprintf("expect.stock[%s]: expected %d, got %d", ref, want, p.Stock))
		}
	}

	if e.Sales != nil && len(result.Sales) != *e.Sales {
		errs = append(errs, fmt.Sprintf("expect.sales: expected %d, got %d", *e.Sales, len(result.Sales)))
	}

	for _, key := range slices.Sorted(maps.Keys(e.Report)) {
		got := reportFigures[key](result.Report)
		if !sameAmount(got, e.Report[key]) {
			errs = append(errs, fmt.Sprintf("expect.report[%s]: expected %s, got %s", key, e.Report[key], got))
		}
	}
	return errs
}

// sameAmount compares decimal strings numerically, so "30" matches "30.00".
func sameAmount(got, want string) bool {
	g, err1 := decimal.NewFromString(got)
	w, err2 := decimal.NewFromString(want)
	if err1 != nil || err2 != nil {
		return got == want
	}
	return g.Equal(w)
}

// checkInvariants verifies properties every scenario must satisfy.
func checkInvariants(s *Scenario, refs map[string]string, result *Result) []string {
	var errs []string

	// Products whose stock was overwritten no longer tie stock to sales.
	edited := make(map[string]bool)
	amendedTotals := false
	for _, step := range s.Steps {
		switch step.Action {
		case ActionUpdateProduct:
			if _, ok := step.Fields["stock"]; ok {
				edited[refs[step.Product]] = true
			}
		case ActionAmendLast:
			for _, key := range []string{"total", "amount_paid", "change"} {
				if _, ok := step.Fields[key]; ok {
					amendedTotals = true
				}
			}
		}
	}

	sold := make(map[string]int)
	for _, sale := range result.Sales {
		for _, it := range sale.Items {
			sold[it.ProductID] += it.Quantity
		}
	}

	for _, p := range result.Products {
		if p.Stock < 0 {
			errs = append(errs, fmt.Sprintf("invariant: %s stock is negative (%d)", p.ID, p.Stock))
		}
		if !edited[p.ID] && p.UnitsSold() != sold[p.ID] {
			errs = append(errs, fmt.Sprintf("invariant: %s consumed %d units but sales record %d", p.ID, p.UnitsSold(), sold[p.ID]))
		}
	}

	r := result.Report
	if !r.TotalToHandOver.Equal(r.OpeningCash.Add(r.TotalRevenue)) {
		errs = append(errs, fmt.Sprintf("invariant: hand-over %s != opening %s + revenue %s", r.TotalToHandOver, r.OpeningCash, r.TotalRevenue))
	}
	if !r.CashOnHand.Equal(r.OpeningCash.Add(r.Revenue(ledger.MethodCash))) {
		errs = append(errs, fmt.Sprintf("invariant: cash on hand %s != opening %s + cash revenue %s", r.CashOnHand, r.OpeningCash, r.Revenue(ledger.MethodCash)))
	}

	if amendedTotals {
		return errs
	}
	for _, sale := range result.Sales {
		if !sale.Total.Equal(ledger.ItemsTotal(sale.Items)) {
			errs = append(errs, fmt.Sprintf("invariant: sale %s total %s != line sum", sale.ID, sale.Total))
		}
		if !sale.Change.Equal(sale.AmountPaid.Sub(sale.Total)) {
			errs = append(errs, fmt.Sprintf("invariant: sale %s change %s != paid %s - total %s", sale.ID, sale.Change, sale.AmountPaid, sale.Total))
		}
		if sale.Change.IsNegative() {
			errs = append(errs, fmt.Sprintf("invariant: sale %s has negative change", sale.ID))
		}
	}
	return errs
}
