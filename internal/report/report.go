package report

import (
	"github.com/shopspring/decimal"

	"github.com/roach88/popstand/internal/catalog"
	"github.com/roach88/popstand/internal/ledger"
)

// DefaultLowStockThreshold is the highest stock count still tagged low.
const DefaultLowStockThreshold = 5

// Band tags remaining stock by severity.
type Band string

const (
	BandDepleted Band = "depleted"
	BandLow      Band = "low"
	BandNormal   Band = "normal"
)

// Policy holds the tunable report constants.
type Policy struct {
	// LowStockThreshold is the highest stock count tagged low.
	LowStockThreshold int
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{LowStockThreshold: DefaultLowStockThreshold}
}

// Band classifies a stock count.
func (p Policy) Band(stock int) Band {
	switch {
	case stock <= 0:
		return BandDepleted
	case stock <= p.LowStockThreshold:
		return BandLow
	default:
		return BandNormal
	}
}

// ProductSales is one sold product's line in the report.
type ProductSales struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	UnitsSold int             `json:"unitsSold"`
	Revenue   decimal.Decimal `json:"revenue"`
	Remaining int             `json:"remaining"`
}

// InventoryLine is one product's remaining stock.
type InventoryLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	Band      Band   `json:"band"`
}

// Report is the closing cash reconciliation.
type Report struct {
	Transactions     int                               `json:"transactions"`
	TotalRevenue     decimal.Decimal                   `json:"totalRevenue"`
	RevenueByMethod  map[ledger.Method]decimal.Decimal `json:"revenueByMethod"`
	TotalChangeGiven decimal.Decimal                   `json:"totalChangeGiven"`
	OpeningCash      decimal.Decimal                   `json:"openingCash"`
	CashOnHand       decimal.Decimal                   `json:"cashOnHand"`
	TotalToHandOver  decimal.Decimal                   `json:"totalToHandOver"`
	ProductsSold     []ProductSales                    `json:"productsSold"`
	TotalUnitsSold   int                               `json:"totalUnitsSold"`
	Inventory        []InventoryLine                   `json:"inventory"`
}

// Revenue returns the revenue recorded for a payment method.
func (r Report) Revenue(m ledger.Method) decimal.Decimal {
	return r.RevenueByMethod[m]
}

// Compute builds the report from the current catalog and ledger.
func Compute(products []catalog.Product, sales []ledger.Sale, openingCash decimal.Decimal, policy Policy) Report {
	r := Report{
		Transactions:     len(sales),
		TotalRevenue:     decimal.Zero,
		RevenueByMethod:  make(map[ledger.Method]decimal.Decimal, len(ledger.Methods)),
		TotalChangeGiven: decimal.Zero,
		OpeningCash:      openingCash,
		ProductsSold:     []ProductSales{},
		Inventory:        make([]InventoryLine, 0, len(products)),
	}
	for _, m := range ledger.Methods {
		r.RevenueByMethod[m] = decimal.Zero
	}

	for _, s := range sales {
		r.TotalRevenue = r.TotalRevenue.Add(s.Total)
		if sum, ok := r.RevenueByMethod[s.PaymentMethod]; ok {
			r.RevenueByMethod[s.PaymentMethod] = sum.Add(s.Total)
		}
		if s.PaymentMethod == ledger.MethodCash {
			r.TotalChangeGiven = r.TotalChangeGiven.Add(s.Change)
		}
	}

	r.CashOnHand = openingCash.Add(r.RevenueByMethod[ledger.MethodCash])
	r.TotalToHandOver = r.CashOnHand.Add(r.RevenueByMethod[ledger.MethodWallet])

	for _, p := range products {
		if sold := p.UnitsSold(); sold > 0 {
			r.ProductsSold = append(r.ProductsSold, ProductSales{
				ProductID: p.ID,
				Name:      p.Name,
				UnitPrice: p.Price,
				UnitsSold: sold,
				Revenue:   p.Price.Mul(decimal.NewFromInt(int64(sold))),
				Remaining: p.Stock,
			})
			r.TotalUnitsSold += sold
		}
		r.Inventory = append(r.Inventory, InventoryLine{
			ProductID: p.ID,
			Name:      p.Name,
			Stock:     p.Stock,
			Band:      policy.Band(p.Stock),
		})
	}

	return r
}
