/*
Package ledger computes customer balances from invoices and payments.

PURPOSE:
  This is the one piece of real business logic in the system: given a
  customer's invoice history plus their standalone payments, determine
  the outstanding balance at any point. Balance is always derived by
  replaying the records — there is no stored "balance" field anywhere
  that can drift out of sync.

THE ALGORITHM (CustomerBalance):
  1. Select the customer's invoices (exact, case-sensitive match).
  2. No invoices -> balance 0, regardless of any recorded payments.
  3. Order by id ascending. Id order IS chronological order: dates are
     free text and cannot be sorted reliably, ids can.
  4. The latest invoice (highest id) is the base point:
       balance = total + previousBalance - payment
     Earlier invoices' stored fields are historical snapshots and are
     never re-summed.
  5. Subtract every standalone payment for this customer whose createdAt
     is strictly after the latest invoice's createdAt. Payments at or
     before that instant are already inside the invoice's
     previousBalance snapshot and must not be double-subtracted.

SIGN CONVENTION:
  Positive = the customer owes money. Negative = the customer holds
  credit. Zero = settled.

OVERPAYMENT:
  A payment larger than the current balance is recorded anyway and
  surfaced as a warning, not rejected: refund-style corrections and
  prepayments are legitimate.

SEE ALSO:
  - statement.go: Printable statement data for one customer
  - report.go: Date-range sales reports
  - record/types.go: Invoice.Remaining, the per-invoice derived value
*/
package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/daftar/storefront/record"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine answers balance queries and owns the payment lifecycle.
type Engine struct {
	store *record.Store
	log   zerolog.Logger
}

// NewEngine creates an Engine over the given store.
func NewEngine(store *record.Store, opts ...Option) *Engine {
	e := &Engine{store: store, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With().Str("component", "ledger").Logger()
	return e
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// =============================================================================
// BALANCE QUERIES - Pure reads over the store's current snapshot
// =============================================================================

// Remaining returns the invoice's derived remaining value,
// total + previousBalance - payment.
func Remaining(inv record.Invoice) decimal.Decimal {
	return inv.Remaining()
}

// InvoicesFor returns the customer's invoices ordered ascending by id.
func (e *Engine) InvoicesFor(customer string) []record.Invoice {
	var out []record.Invoice
	for _, inv := range e.store.Invoices.List() {
		if inv.Customer == customer {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LatestInvoice returns the customer's highest-id invoice, if any.
func (e *Engine) LatestInvoice(customer string) (record.Invoice, bool) {
	var latest record.Invoice
	found := false
	for _, inv := range e.store.Invoices.List() {
		if inv.Customer != customer {
			continue
		}
		if !found || inv.ID > latest.ID {
			latest = inv
			found = true
		}
	}
	return latest, found
}

// PaymentsFor returns the customer's standalone payments ordered
// ascending by id.
func (e *Engine) PaymentsFor(customer string) []record.Payment {
	var out []record.Payment
	for _, p := range e.store.Payments.List() {
		if p.Customer == customer {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CustomerBalance computes the customer's current outstanding balance.
//
// A customer with no invoices has balance 0 even if standalone payments
// exist for the name: payments are only applied relative to a latest
// invoice, and with no invoice there is no base point. That behavior is
// load-bearing for historical totals; changing it would silently alter
// balances for anyone paid before their first invoice, so the engine
// keeps it and logs when it detects such orphaned payments.
func (e *Engine) CustomerBalance(customer string) decimal.Decimal {
	latest, ok := e.LatestInvoice(customer)
	if !ok {
		if n := len(e.PaymentsFor(customer)); n > 0 {
			e.log.Warn().
				Str("customer", customer).
				Int("payments", n).
				Msg("payments recorded for customer with no invoices; balance stays 0")
		}
		return decimal.Zero
	}

	balance := latest.Remaining()
	for _, p := range e.store.Payments.List() {
		if p.Customer != customer {
			continue
		}
		if p.CreatedAt.After(latest.CreatedAt) {
			balance = balance.Sub(p.Amount)
		}
	}
	return balance
}

// SuggestPreviousBalance returns the value the composition screen
// pre-fills for a known customer: the remaining of their latest
// invoice, or zero when they have none. This is a convenience default,
// not an enforced linkage.
func (e *Engine) SuggestPreviousBalance(customer string) decimal.Decimal {
	latest, ok := e.LatestInvoice(customer)
	if !ok {
		return decimal.Zero
	}
	return latest.Remaining()
}

// Customers returns the distinct customer names across invoices,
// sorted ascending.
func (e *Engine) Customers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, inv := range e.store.Invoices.List() {
		if !seen[inv.Customer] {
			seen[inv.Customer] = true
			out = append(out, inv.Customer)
		}
	}
	sort.Strings(out)
	return out
}

// =============================================================================
// PAYMENT LIFECYCLE
// =============================================================================

// OverpaymentWarning reports that a recorded payment exceeded the
// customer's computed balance at the time it was taken. It is
// informational: the payment is recorded regardless.
type OverpaymentWarning struct {
	Customer string
	Balance  decimal.Decimal
	Amount   decimal.Decimal
}

func (w *OverpaymentWarning) String() string {
	return fmt.Sprintf("payment %s exceeds balance %s for %s",
		w.Amount, w.Balance, w.Customer)
}

// RecordPayment validates and persists a standalone payment.
//
// amount must be positive; customer must be non-empty. If amount
// exceeds the currently computed balance the payment is still recorded
// and a non-nil warning is returned alongside it.
func (e *Engine) RecordPayment(ctx context.Context, p record.Payment) (record.Payment, *OverpaymentWarning, error) {
	if p.Customer == "" {
		return record.Payment{}, nil, record.Invalid("customer", "customer name is required")
	}
	if !p.Amount.IsPositive() {
		return record.Payment{}, nil, record.Invalid("amount", "payment amount must be positive")
	}

	var warn *OverpaymentWarning
	if balance := e.CustomerBalance(p.Customer); p.Amount.GreaterThan(balance) {
		warn = &OverpaymentWarning{Customer: p.Customer, Balance: balance, Amount: p.Amount}
	}

	saved, err := e.store.Payments.Create(ctx, p)
	if err != nil {
		return record.Payment{}, nil, err
	}
	return saved, warn, nil
}

// DeletePayment removes a standalone payment. The balance recomputes
// from scratch on the next query; nothing else is touched. A missing id
// is a silent no-op.
func (e *Engine) DeletePayment(ctx context.Context, id int64) error {
	return e.store.Payments.Delete(ctx, id)
}
