/*
Package catalog maintains the product price list.

PURPOSE:
  Keeps a single canonical record per distinct product name. Names are
  deduplicated case-insensitively: upserting "sugar" over an existing
  "Sugar" updates the price of "Sugar" and never creates a second row.
  The original casing is whichever was typed first.

LAST WRITE WINS:
  Every invoice line item's product name/price is upserted here at save
  time, so the catalog is a superset of every product name ever typed,
  with price reflecting the most recent invoice or manual edit. No price
  history is retained.

SEE ALSO:
  - record/types.go: Product
  - ../draft: Runs SyncInvoiceItems as part of saving an invoice
*/
package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/daftar/storefront/record"
)

// Catalog is the product upsert engine over the record store.
type Catalog struct {
	store *record.Store
}

// New creates a Catalog over the given store.
func New(store *record.Store) *Catalog {
	return &Catalog{store: store}
}

// List returns the current products.
func (c *Catalog) List() []record.Product {
	return c.store.Products.List()
}

// FindByName returns the product whose name matches case-insensitively.
func (c *Catalog) FindByName(name string) (record.Product, bool) {
	folded := strings.ToLower(name)
	for _, p := range c.store.Products.List() {
		if strings.ToLower(p.Name) == folded {
			return p, true
		}
	}
	return record.Product{}, false
}

// Upsert creates or updates the product identified by name
// (case-insensitive). A match updates only the price, leaving id, name
// casing and createdAt untouched; otherwise a new product is created
// with a fresh monotonic id.
func (c *Catalog) Upsert(ctx context.Context, name string, price decimal.Decimal) (record.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return record.Product{}, record.Invalid("name", "product name is required")
	}
	if price.IsNegative() {
		return record.Product{}, record.Invalid("price", "product price must not be negative")
	}

	if existing, ok := c.FindByName(name); ok {
		err := c.store.Products.Update(ctx, existing.ID, func(p *record.Product) {
			p.Price = price
		})
		if err != nil {
			return record.Product{}, err
		}
		existing.Price = price
		return existing, nil
	}

	return c.store.Products.Create(ctx, record.Product{Name: name, Price: price})
}

// UpsertByID updates the identified product's fields directly,
// bypassing name matching (the product-management edit path). A missing
// id is a silent no-op, matching the store's update semantics.
func (c *Catalog) UpsertByID(ctx context.Context, id int64, name string, price decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return record.Invalid("name", "product name is required")
	}
	if price.IsNegative() {
		return record.Invalid("price", "product price must not be negative")
	}

	return c.store.Products.Update(ctx, id, func(p *record.Product) {
		p.Name = name
		p.Price = price
	})
}

// Delete removes a product from the catalog.
func (c *Catalog) Delete(ctx context.Context, id int64) error {
	return c.store.Products.Delete(ctx, id)
}

// SyncInvoiceItems upserts every line item's product into the catalog.
// Runs as a side effect of saving an invoice. Items whose product name
// is blank are skipped rather than failing the invoice save.
func (c *Catalog) SyncInvoiceItems(ctx context.Context, items []record.LineItem) error {
	for _, item := range items {
		if strings.TrimSpace(item.Product) == "" {
			continue
		}
		if _, err := c.Upsert(ctx, item.Product, item.Price); err != nil {
			return err
		}
	}
	return nil
}
