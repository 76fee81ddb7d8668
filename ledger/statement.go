/*
statement.go - Customer statement data

PURPOSE:
  Assembles everything a printed or shared customer statement needs:
  the invoice history in ledger order, each invoice's remaining value,
  and the final outstanding balance. The core supplies only the data;
  rendering belongs to the print/share collaborator.

SEE ALSO:
  - ledger.go: The balance rules this reuses
  - report.go: Aggregates across customers and date ranges
*/
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/daftar/storefront/record"
)

// StatementLine is one invoice row of a statement.
type StatementLine struct {
	Invoice   record.Invoice
	Remaining decimal.Decimal
}

// Statement is the full ledger view for one customer.
type Statement struct {
	Customer string
	Lines    []StatementLine
	Payments []record.Payment

	// TotalInvoiced is the sum of invoice totals (not remainings).
	TotalInvoiced decimal.Decimal
	// TotalPaid is the sum of per-invoice payments.
	TotalPaid decimal.Decimal
	// Balance is the current outstanding balance per the ledger rules.
	Balance decimal.Decimal
}

// CustomerStatement builds the statement for one customer. The lines
// are ordered ascending by invoice id, matching the running-ledger
// order used for the balance itself.
func (e *Engine) CustomerStatement(customer string) Statement {
	invoices := e.InvoicesFor(customer)

	st := Statement{
		Customer:      customer,
		Payments:      e.PaymentsFor(customer),
		TotalInvoiced: decimal.Zero,
		TotalPaid:     decimal.Zero,
		Balance:       e.CustomerBalance(customer),
	}
	for _, inv := range invoices {
		st.Lines = append(st.Lines, StatementLine{
			Invoice:   inv,
			Remaining: inv.Remaining(),
		})
		st.TotalInvoiced = st.TotalInvoiced.Add(inv.Total)
		st.TotalPaid = st.TotalPaid.Add(inv.Payment)
	}
	return st
}

// CustomerSummary is the per-customer aggregate shown on the auditing
// overview.
type CustomerSummary struct {
	Customer      string
	InvoiceCount  int
	TotalInvoiced decimal.Decimal
	TotalPaid     decimal.Decimal
	Balance       decimal.Decimal
}

// CustomerSummaries aggregates every customer with at least one
// invoice, sorted by customer name.
func (e *Engine) CustomerSummaries() []CustomerSummary {
	var out []CustomerSummary
	for _, name := range e.Customers() {
		s := CustomerSummary{
			Customer:      name,
			TotalInvoiced: decimal.Zero,
			TotalPaid:     decimal.Zero,
			Balance:       e.CustomerBalance(name),
		}
		for _, inv := range e.InvoicesFor(name) {
			s.InvoiceCount++
			s.TotalInvoiced = s.TotalInvoiced.Add(inv.Total)
			s.TotalPaid = s.TotalPaid.Add(inv.Payment)
		}
		out = append(out, s)
	}
	return out
}
