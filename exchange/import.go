/*
Package exchange reads and writes the interchange file formats.

PURPOSE:
  Import files arrive in several historical shapes — the current
  {invoices: [...]} / {products: [...]} documents, bare arrays from the
  first mobile builds, {data: [...]} and {invoicesList/productsList}
  wrappers, and whole localStorage dumps from the web era. Parse tries
  each known variant in priority order, normalizes field-name aliases
  to the canonical record shape, and rejects anything that matches no
  variant with a clear error instead of guessing.

VARIANT PRIORITY:
  1. {invoices: [...]}            canonical invoices document
  2. {products: [...]}            canonical products document
  3. [...]                        bare array, classified by field shape
  4. {data: [...]}                generic wrapper, classified like 3
  5. {invoicesList: [...]}        legacy list wrappers
     {productsList: [...]}
  6. {localStorage: {...}}        web-app dump; values are arrays or
                                  JSON-encoded strings

FIELD ALIASES (normalized per record):
  invoice:  invoiceId=id, customerName=customer, invoiceDate=date,
            totalAmount/invoiceTotal=total, prevBalance/oldBalance=
            previousBalance, paidAmount/paid=payment
  item:     productName/name=product, qty=quantity, unitPrice=price,
            amount=total, note=notes
  product:  productId=id, productName=name, unitPrice/cost=price

  Classification for untyped arrays: an element carrying customer,
  customerName or items is an invoice; one carrying a name and a price
  is a product. Ambiguous or empty payloads are rejected.

IMPORT IS REPLACEMENT:
  The parsed records replace the target collection wholesale via the
  store's ImportAll; no id or createdAt repair is attempted. Confirming
  destructive intent is the caller's job.

SEE ALSO:
  - export.go: The export document shapes
  - record/store.go: ImportAll semantics
*/
package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/daftar/storefront/record"
)

// Kind says what a parsed import payload contains.
type Kind string

const (
	KindInvoices Kind = "invoices"
	KindProducts Kind = "products"
)

// Result is a normalized import payload.
type Result struct {
	Kind     Kind
	Invoices []record.Invoice
	Products []record.Product
}

// Count returns the number of parsed records.
func (r Result) Count() int {
	if r.Kind == KindInvoices {
		return len(r.Invoices)
	}
	return len(r.Products)
}

// =============================================================================
// ALIAS SHAPES - Every field name any historical format used
// =============================================================================

type itemAlias struct {
	Product     string          `json:"product"`
	ProductName string          `json:"productName"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Qty         decimal.Decimal `json:"qty"`
	Price       decimal.Decimal `json:"price"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
	Amount      decimal.Decimal `json:"amount"`
	Notes       string          `json:"notes"`
	Note        string          `json:"note"`
}

type invoiceAlias struct {
	ID           int64  `json:"id"`
	InvoiceID    int64  `json:"invoiceId"`
	Customer     string `json:"customer"`
	CustomerName string `json:"customerName"`
	Date         string `json:"date"`
	InvoiceDate  string `json:"invoiceDate"`

	Items []itemAlias `json:"items"`

	Total        decimal.Decimal `json:"total"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	InvoiceTotal decimal.Decimal `json:"invoiceTotal"`

	PreviousBalance decimal.Decimal `json:"previousBalance"`
	PrevBalance     decimal.Decimal `json:"prevBalance"`
	OldBalance      decimal.Decimal `json:"oldBalance"`

	Payment    decimal.Decimal `json:"payment"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
	Paid       decimal.Decimal `json:"paid"`

	CreatedAt time.Time `json:"createdAt"`
}

type productAlias struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	Name        string          `json:"name"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Cost        decimal.Decimal `json:"cost"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstInt(vals ...int64) int64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstDecimal(vals ...decimal.Decimal) decimal.Decimal {
	for _, v := range vals {
		if !v.IsZero() {
			return v
		}
	}
	return decimal.Zero
}

func (a invoiceAlias) normalize(now time.Time) record.Invoice {
	inv := record.Invoice{
		ID:              firstInt(a.ID, a.InvoiceID),
		Customer:        firstString(a.Customer, a.CustomerName),
		Date:            firstString(a.Date, a.InvoiceDate, now.Format(record.DateLayout)),
		Total:           firstDecimal(a.Total, a.TotalAmount, a.InvoiceTotal),
		PreviousBalance: firstDecimal(a.PreviousBalance, a.PrevBalance, a.OldBalance),
		Payment:         firstDecimal(a.Payment, a.PaidAmount, a.Paid),
		CreatedAt:       a.CreatedAt,
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	for _, it := range a.Items {
		inv.Items = append(inv.Items, record.LineItem{
			Product:  firstString(it.Product, it.ProductName, it.Name),
			Quantity: firstDecimal(it.Quantity, it.Qty),
			Price:    firstDecimal(it.Price, it.UnitPrice),
			Total:    firstDecimal(it.Total, it.Amount),
			Notes:    firstString(it.Notes, it.Note),
		})
	}
	return inv
}

func (a productAlias) normalize(now time.Time) record.Product {
	p := record.Product{
		ID:        firstInt(a.ID, a.ProductID),
		Name:      firstString(a.Name, a.ProductName),
		Price:     firstDecimal(a.Price, a.UnitPrice, a.Cost),
		CreatedAt: a.CreatedAt,
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	return p
}

// =============================================================================
// PARSER - Tagged-union over the known document variants
// =============================================================================

type document struct {
	Invoices     json.RawMessage `json:"invoices"`
	Products     json.RawMessage `json:"products"`
	Data         json.RawMessage `json:"data"`
	InvoicesList json.RawMessage `json:"invoicesList"`
	ProductsList json.RawMessage `json:"productsList"`
	LocalStorage *struct {
		Invoices json.RawMessage `json:"invoices"`
		Products json.RawMessage `json:"products"`
	} `json:"localStorage"`
}

// Parse normalizes an import payload into canonical records. It
// returns record.ErrUnsupportedFormat (wrapped) when the payload
// matches none of the known variants.
func Parse(data []byte, now time.Time) (Result, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Result{}, fmt.Errorf("%w: empty file", record.ErrUnsupportedFormat)
	}

	// Bare array (variant 3).
	if trimmed[0] == '[' {
		return classifyArray(trimmed, now)
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Result{}, fmt.Errorf("%w: not valid JSON: %v", record.ErrUnsupportedFormat, err)
	}

	switch {
	case isArray(doc.Invoices):
		return parseInvoices(doc.Invoices, now)
	case isArray(doc.Products):
		return parseProducts(doc.Products, now)
	case isArray(doc.Data):
		return classifyArray(doc.Data, now)
	case isArray(doc.InvoicesList):
		return parseInvoices(doc.InvoicesList, now)
	case isArray(doc.ProductsList):
		return parseProducts(doc.ProductsList, now)
	case doc.LocalStorage != nil:
		return parseLocalStorage(doc.LocalStorage.Invoices, doc.LocalStorage.Products, now)
	}

	return Result{}, fmt.Errorf("%w: no recognizable collection", record.ErrUnsupportedFormat)
}

func isArray(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '['
}

func parseInvoices(raw json.RawMessage, now time.Time) (Result, error) {
	var aliases []invoiceAlias
	if err := json.Unmarshal(raw, &aliases); err != nil {
		return Result{}, fmt.Errorf("%w: invoices: %v", record.ErrUnsupportedFormat, err)
	}
	res := Result{Kind: KindInvoices}
	for _, a := range aliases {
		res.Invoices = append(res.Invoices, a.normalize(now))
	}
	return res, nil
}

func parseProducts(raw json.RawMessage, now time.Time) (Result, error) {
	var aliases []productAlias
	if err := json.Unmarshal(raw, &aliases); err != nil {
		return Result{}, fmt.Errorf("%w: products: %v", record.ErrUnsupportedFormat, err)
	}
	res := Result{Kind: KindProducts}
	for _, a := range aliases {
		res.Products = append(res.Products, a.normalize(now))
	}
	return res, nil
}

// classifyArray decides whether an untyped array holds invoices or
// products by inspecting the first element's fields.
func classifyArray(raw json.RawMessage, now time.Time) (Result, error) {
	var probe []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Result{}, fmt.Errorf("%w: array: %v", record.ErrUnsupportedFormat, err)
	}
	if len(probe) == 0 {
		return Result{}, fmt.Errorf("%w: empty array is ambiguous", record.ErrUnsupportedFormat)
	}

	first := probe[0]
	if hasAny(first, "customer", "customerName", "items") {
		return parseInvoices(raw, now)
	}
	if hasAny(first, "name", "productName") && hasAny(first, "price", "unitPrice", "cost") {
		return parseProducts(raw, now)
	}
	return Result{}, fmt.Errorf("%w: array elements match neither invoices nor products", record.ErrUnsupportedFormat)
}

func hasAny(m map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// parseLocalStorage handles web-app dumps where each collection is
// either an array or a JSON-encoded string containing one.
func parseLocalStorage(invoices, products json.RawMessage, now time.Time) (Result, error) {
	if raw := unwrapStored(invoices); isArray(raw) {
		return parseInvoices(raw, now)
	}
	if raw := unwrapStored(products); isArray(raw) {
		return parseProducts(raw, now)
	}
	return Result{}, fmt.Errorf("%w: localStorage dump holds no usable collection", record.ErrUnsupportedFormat)
}

// unwrapStored decodes a localStorage value: either already an array,
// or a string whose contents are the JSON array.
func unwrapStored(raw json.RawMessage) json.RawMessage {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return nil
	}
	if t[0] == '[' {
		return t
	}
	if t[0] == '"' {
		var inner string
		if err := json.Unmarshal(t, &inner); err == nil {
			return json.RawMessage(inner)
		}
	}
	return nil
}
