/*
Package draft assembles the in-progress invoice before it is saved.

PURPOSE:
  Holds the mutable invoice under composition — customer, date, line
  items, previous balance, payment — and enforces the composition
  rules:

  - adding a line item requires a non-empty product name, quantity > 0
    and price > 0; the item's total is quantity x price
  - editing an item replaces it at its original position
  - building requires a non-empty customer and at least one item;
    the invoice total is the sum of item totals
  - the draft may be cleared at any time, discarding unsaved state

  The draft is plain in-memory state owned by whoever composes (one
  screen, one draft); persistence only happens through the Composer.

SEE ALSO:
  - composer.go: The save flow (store create/update + catalog sync)
  - record/types.go: The persisted Invoice shape
*/
package draft

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/daftar/storefront/record"
)

// Draft is a single in-progress invoice.
type Draft struct {
	Customer        string
	Date            string
	Items           []record.LineItem
	PreviousBalance decimal.Decimal
	Payment         decimal.Decimal
}

// New returns an empty draft dated today.
func New(now time.Time) *Draft {
	d := &Draft{}
	d.Clear(now)
	return d
}

// Clear resets the draft to its empty state, dated now.
func (d *Draft) Clear(now time.Time) {
	d.Customer = ""
	d.Date = now.Format(record.DateLayout)
	d.Items = nil
	d.PreviousBalance = decimal.Zero
	d.Payment = decimal.Zero
}

// Total is the sum of the current item totals.
func (d *Draft) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.Total)
	}
	return total
}

func validateItem(product string, quantity, price decimal.Decimal) error {
	if strings.TrimSpace(product) == "" {
		return record.Invalid("product", "product name is required")
	}
	if !quantity.IsPositive() {
		return record.Invalid("quantity", "quantity must be positive")
	}
	if !price.IsPositive() {
		return record.Invalid("price", "price must be positive")
	}
	return nil
}

// AddItem validates and appends a line item, computing its total.
func (d *Draft) AddItem(product string, quantity, price decimal.Decimal, notes string) error {
	if err := validateItem(product, quantity, price); err != nil {
		return err
	}
	d.Items = append(d.Items, record.LineItem{
		Product:  strings.TrimSpace(product),
		Quantity: quantity,
		Price:    price,
		Total:    quantity.Mul(price),
		Notes:    notes,
	})
	return nil
}

// UpdateItem replaces the item at index with re-validated fields. It
// does not append a duplicate.
func (d *Draft) UpdateItem(index int, product string, quantity, price decimal.Decimal, notes string) error {
	if index < 0 || index >= len(d.Items) {
		return record.Invalid("item", "no line item at that position")
	}
	if err := validateItem(product, quantity, price); err != nil {
		return err
	}
	d.Items[index] = record.LineItem{
		Product:  strings.TrimSpace(product),
		Quantity: quantity,
		Price:    price,
		Total:    quantity.Mul(price),
		Notes:    notes,
	}
	return nil
}

// RemoveItem deletes the item at index.
func (d *Draft) RemoveItem(index int) error {
	if index < 0 || index >= len(d.Items) {
		return record.Invalid("item", "no line item at that position")
	}
	d.Items = append(d.Items[:index], d.Items[index+1:]...)
	return nil
}

// Build validates the ready-to-save rules and returns the invoice to
// persist. The draft itself is left untouched; callers clear it after a
// successful save.
func (d *Draft) Build() (record.Invoice, error) {
	if strings.TrimSpace(d.Customer) == "" {
		return record.Invoice{}, record.Invalid("customer", "customer name is required")
	}
	if len(d.Items) == 0 {
		return record.Invoice{}, record.Invalid("items", "invoice needs at least one line item")
	}

	items := make([]record.LineItem, len(d.Items))
	copy(items, d.Items)

	return record.Invoice{
		Customer:        strings.TrimSpace(d.Customer),
		Date:            d.Date,
		Items:           items,
		Total:           d.Total(),
		PreviousBalance: d.PreviousBalance,
		Payment:         d.Payment,
	}, nil
}
