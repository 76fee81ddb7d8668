/*
composer.go - The invoice save flow

PURPOSE:
  Ties composition to the rest of the system: building a draft, saving
  it through the record store, and upserting every referenced product
  into the catalog as a side effect. Also provides the previous-balance
  auto-suggestion used when a known customer is selected.

ORDERING:
  The invoice is persisted first, then the catalog sync runs. A catalog
  write failure after a successful invoice save returns the error but
  does not roll the invoice back — the catalog is derived data and
  self-heals on the next save of any invoice naming the product.

SEE ALSO:
  - draft.go: Composition rules
  - ../catalog: Upsert semantics
  - ../ledger: The suggestion source
*/
package draft

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/daftar/storefront/catalog"
	"github.com/daftar/storefront/ledger"
	"github.com/daftar/storefront/record"
)

// Composer performs the save flow for drafts.
type Composer struct {
	store   *record.Store
	catalog *catalog.Catalog
	ledger  *ledger.Engine
}

// NewComposer wires the collaborators of the save flow.
func NewComposer(store *record.Store, cat *catalog.Catalog, led *ledger.Engine) *Composer {
	return &Composer{store: store, catalog: cat, ledger: led}
}

// SuggestPreviousBalance returns the pre-fill value for the draft's
// previous-balance field when the given customer is selected: the
// remaining of their latest invoice. Zero means no pre-fill. The user
// may override it freely.
func (c *Composer) SuggestPreviousBalance(customer string) decimal.Decimal {
	return c.ledger.SuggestPreviousBalance(customer)
}

// Save builds the draft and creates a new invoice. On success the
// referenced products are upserted into the catalog and the caller
// should clear the draft.
func (c *Composer) Save(ctx context.Context, d *Draft) (record.Invoice, error) {
	inv, err := d.Build()
	if err != nil {
		return record.Invoice{}, err
	}

	saved, err := c.store.Invoices.Create(ctx, inv)
	if err != nil {
		return record.Invoice{}, err
	}
	if err := c.catalog.SyncInvoiceItems(ctx, saved.Items); err != nil {
		return saved, err
	}
	return saved, nil
}

// SaveAs builds the draft and overwrites the invoice with the given id
// (the edit flow). Id and createdAt of the stored invoice are
// preserved; everything else comes from the draft. A missing id is a
// silent no-op per the store's update semantics.
func (c *Composer) SaveAs(ctx context.Context, id int64, d *Draft) error {
	inv, err := d.Build()
	if err != nil {
		return err
	}

	err = c.store.Invoices.Update(ctx, id, func(stored *record.Invoice) {
		stored.Customer = inv.Customer
		stored.Date = inv.Date
		stored.Items = inv.Items
		stored.Total = inv.Total
		stored.PreviousBalance = inv.PreviousBalance
		stored.Payment = inv.Payment
	})
	if err != nil {
		return err
	}
	return c.catalog.SyncInvoiceItems(ctx, inv.Items)
}

// LoadDraft pre-fills a draft from a stored invoice (the edit flow).
func LoadDraft(inv record.Invoice) *Draft {
	items := make([]record.LineItem, len(inv.Items))
	copy(items, inv.Items)
	return &Draft{
		Customer:        inv.Customer,
		Date:            inv.Date,
		Items:           items,
		PreviousBalance: inv.PreviousBalance,
		Payment:         inv.Payment,
	}
}
