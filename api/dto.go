/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the stored record shapes from the external API contract, allowing:
  - Derived fields (remaining balance) without polluting storage
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY:
  All money fields are decimal.Decimal, which marshals as a JSON
  string. Clients send either strings or raw numbers; both decode.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/ledger.go: Balance and warning types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/daftar/storefront/ledger"
	"github.com/daftar/storefront/record"
)

// =============================================================================
// INVOICE TYPES
// =============================================================================

// LineItemRequest is one line of an invoice being composed.
type LineItemRequest struct {
	Product  string          `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Notes    string          `json:"notes"`
}

// InvoiceRequest is the body for creating or replacing an invoice.
type InvoiceRequest struct {
	Customer        string            `json:"customer"`
	Date            string            `json:"date"`
	Items           []LineItemRequest `json:"items"`
	PreviousBalance decimal.Decimal   `json:"previousBalance"`
	Payment         decimal.Decimal   `json:"payment"`
}

// InvoiceDTO is an invoice plus its derived remaining amount.
type InvoiceDTO struct {
	record.Invoice
	Remaining decimal.Decimal `json:"remaining"`
}

func toInvoiceDTO(inv record.Invoice) InvoiceDTO {
	return InvoiceDTO{Invoice: inv, Remaining: ledger.Remaining(inv)}
}

func toInvoiceDTOs(invs []record.Invoice) []InvoiceDTO {
	dtos := make([]InvoiceDTO, len(invs))
	for i, inv := range invs {
		dtos[i] = toInvoiceDTO(inv)
	}
	return dtos
}

// =============================================================================
// PRODUCT TYPES
// =============================================================================

// ProductRequest is the body for the catalog upsert.
type ProductRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// =============================================================================
// PAYMENT TYPES
// =============================================================================

// PaymentRequest is the body for recording a standalone payment.
type PaymentRequest struct {
	Customer string          `json:"customer"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
	Notes    string          `json:"notes"`
}

// PaymentResponse carries the recorded payment and, when the amount
// exceeded the customer's balance, a non-blocking warning.
type PaymentResponse struct {
	Payment record.Payment             `json:"payment"`
	Warning *ledger.OverpaymentWarning `json:"warning,omitempty"`
}

// =============================================================================
// CUSTOMER TYPES
// =============================================================================

// BalanceDTO is a customer's current outstanding balance.
type BalanceDTO struct {
	Customer string          `json:"customer"`
	Balance  decimal.Decimal `json:"balance"`
}

// =============================================================================
// EXCHANGE TYPES
// =============================================================================

// ImportResponse reports what an import replaced.
type ImportResponse struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the wire shape for all error replies.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
