/*
report.go - Date-range sales reports

PURPOSE:
  Aggregates invoices whose calendar date falls inside [from, to]:
  totals, per-customer breakdown and the top products by quantity and
  revenue. Invoice dates are the user-entered YYYY-MM-DD strings, which
  compare correctly as strings; invoices with unparsable dates are
  counted when the range is open.

SEE ALSO:
  - statement.go: Per-customer detail
*/
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ProductStat is one product's aggregate over a report range.
type ProductStat struct {
	Product  string
	Quantity decimal.Decimal
	Revenue  decimal.Decimal
}

// Report is the aggregate view over a date range.
type Report struct {
	From, To string

	InvoiceCount  int
	TotalSales    decimal.Decimal
	TotalPayments decimal.Decimal
	// TotalOutstanding sums each included invoice's remaining value.
	// It is a per-invoice aggregate, not the ledger balance.
	TotalOutstanding decimal.Decimal

	Customers   []CustomerSummary
	TopProducts []ProductStat
}

// SalesReport aggregates invoices with from <= date <= to. Empty bounds
// leave that side of the range open.
func (e *Engine) SalesReport(from, to string) Report {
	r := Report{
		From:             from,
		To:               to,
		TotalSales:       decimal.Zero,
		TotalPayments:    decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}

	customers := make(map[string]*CustomerSummary)
	products := make(map[string]*ProductStat)

	for _, inv := range e.store.Invoices.List() {
		if from != "" && inv.Date < from {
			continue
		}
		if to != "" && inv.Date > to {
			continue
		}

		r.InvoiceCount++
		r.TotalSales = r.TotalSales.Add(inv.Total)
		r.TotalPayments = r.TotalPayments.Add(inv.Payment)
		r.TotalOutstanding = r.TotalOutstanding.Add(inv.Remaining())

		cs, ok := customers[inv.Customer]
		if !ok {
			cs = &CustomerSummary{
				Customer:      inv.Customer,
				TotalInvoiced: decimal.Zero,
				TotalPaid:     decimal.Zero,
			}
			customers[inv.Customer] = cs
		}
		cs.InvoiceCount++
		cs.TotalInvoiced = cs.TotalInvoiced.Add(inv.Total)
		cs.TotalPaid = cs.TotalPaid.Add(inv.Payment)

		for _, item := range inv.Items {
			ps, ok := products[item.Product]
			if !ok {
				ps = &ProductStat{
					Product:  item.Product,
					Quantity: decimal.Zero,
					Revenue:  decimal.Zero,
				}
				products[item.Product] = ps
			}
			ps.Quantity = ps.Quantity.Add(item.Quantity)
			ps.Revenue = ps.Revenue.Add(item.Total)
		}
	}

	for _, cs := range customers {
		cs.Balance = e.CustomerBalance(cs.Customer)
		r.Customers = append(r.Customers, *cs)
	}
	sort.Slice(r.Customers, func(i, j int) bool {
		return r.Customers[i].Customer < r.Customers[j].Customer
	})

	for _, ps := range products {
		r.TopProducts = append(r.TopProducts, *ps)
	}
	sort.Slice(r.TopProducts, func(i, j int) bool {
		if !r.TopProducts[i].Revenue.Equal(r.TopProducts[j].Revenue) {
			return r.TopProducts[i].Revenue.GreaterThan(r.TopProducts[j].Revenue)
		}
		return r.TopProducts[i].Product < r.TopProducts[j].Product
	})

	return r
}
