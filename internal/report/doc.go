// Package report computes the end-of-event cash reconciliation.
//
// Compute is a pure function of products, sales and opening cash. It
// never mutates its inputs and returns identical output for identical
// input, so it can run any number of times alongside other reads.
//
// Derived figures:
//
//	totalRevenue     = sum of sale totals
//	revenueByMethod  = sum of sale totals per payment method
//	totalChangeGiven = sum of change over cash sales
//	cashOnHand       = openingCash + cash revenue
//	totalToHandOver  = cashOnHand + wallet revenue
//
// Per product, unitsSold = initialStock - stock and revenue = unitsSold *
// current price; only products with unitsSold > 0 are listed as sold.
package report
