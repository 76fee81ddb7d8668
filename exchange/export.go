package exchange

import (
	"encoding/json"
	"time"

	"github.com/daftar/storefront/record"
)

// InvoiceDocument is the canonical invoices export shape.
type InvoiceDocument struct {
	ExportDate    time.Time        `json:"exportDate"`
	InvoicesCount int              `json:"invoicesCount"`
	Invoices      []record.Invoice `json:"invoices"`
}

// ProductDocument is the canonical products export shape.
type ProductDocument struct {
	ExportDate    time.Time        `json:"exportDate"`
	ProductsCount int              `json:"productsCount"`
	Products      []record.Product `json:"products"`
}

// ExportInvoices renders the canonical invoices document,
// pretty-printed for hand inspection.
func ExportInvoices(invoices []record.Invoice, now time.Time) ([]byte, error) {
	if invoices == nil {
		invoices = []record.Invoice{}
	}
	doc := InvoiceDocument{
		ExportDate:    now.UTC(),
		InvoicesCount: len(invoices),
		Invoices:      invoices,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ExportProducts renders the canonical products document.
func ExportProducts(products []record.Product, now time.Time) ([]byte, error) {
	if products == nil {
		products = []record.Product{}
	}
	doc := ProductDocument{
		ExportDate:    now.UTC(),
		ProductsCount: len(products),
		Products:      products,
	}
	return json.MarshalIndent(doc, "", "  ")
}
