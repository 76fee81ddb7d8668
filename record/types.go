/*
Package record provides the persisted data model and the record store.

PURPOSE:
  This package owns the three durable collections of the storefront —
  invoices, products and payments — and the rules that keep them coherent:
  monotonic per-collection id assignment, whole-collection atomic writes,
  and a single serialized writer per collection.

KEY CONCEPTS IN THIS FILE (types.go):
  - Invoice: a saved sale with line items, a carried-forward previous
    balance and the payment made against it
  - LineItem: quantity x price with a snapshotted total
  - Payment: a standalone payment, independent of any invoice
  - Product: a catalog entry with the latest known unit price

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for all money, never floats
  2. Derived values stay derived: an invoice's remaining balance is
     computed on demand, never stored
  3. Customers are join keys: a customer is a case-sensitive string on
     invoices and payments; there is no customer entity

SEE ALSO:
  - store.go: The store facade over the three collections
  - collection.go: Generic persisted collection with id assignment
  - ../ledger: Balance computation over invoices + payments
*/
package record

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COLLECTION NAMES - Keys in the underlying key-value storage
// =============================================================================

const (
	CollectionInvoices = "invoices"
	CollectionProducts = "products"
	CollectionPayments = "payments"
)

// DateLayout is the calendar-date format used on invoices and payments.
// Dates are user-editable free text in this format and are NOT reliable
// for chronological ordering; ids are.
const DateLayout = "2006-01-02"

// =============================================================================
// INVOICE
// =============================================================================

// LineItem is a single row of an invoice.
type LineItem struct {
	Product  string          `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
	Notes    string          `json:"notes,omitempty"`
}

// Invoice is a saved sale.
//
// Total is a snapshot of the item totals at save time; it is not
// recomputed lazily. PreviousBalance and Payment are likewise snapshots:
// together with Total they define the invoice's remaining balance, which
// is always derived and never persisted.
type Invoice struct {
	ID       int64      `json:"id"`
	Customer string     `json:"customer"`
	Date     string     `json:"date"`
	Items    []LineItem `json:"items"`

	Total           decimal.Decimal `json:"total"`
	PreviousBalance decimal.Decimal `json:"previousBalance"`
	Payment         decimal.Decimal `json:"payment"`

	CreatedAt time.Time `json:"createdAt"`
}

// Remaining returns total + previousBalance - payment.
// Positive means the customer owes money; negative means credit.
func (inv Invoice) Remaining() decimal.Decimal {
	return inv.Total.Add(inv.PreviousBalance).Sub(inv.Payment)
}

// =============================================================================
// PAYMENT - Standalone, independent of any invoice
// =============================================================================

type Payment struct {
	ID        int64           `json:"id"`
	Customer  string          `json:"customer"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// =============================================================================
// PRODUCT
// =============================================================================

// Product is a catalog entry. Name uniqueness is enforced
// case-insensitively by the catalog engine, not by this package.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}
