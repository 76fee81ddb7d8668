/*
handlers.go - HTTP API handlers for the storefront ledger

PURPOSE:
  Exposes the ledger, catalog, and exchange engines via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Invoices:
    GET    /api/invoices               List invoices (?customer= filter)
    POST   /api/invoices               Compose and save an invoice
    GET    /api/invoices/{id}          Get one invoice
    PUT    /api/invoices/{id}          Replace an invoice
    DELETE /api/invoices/{id}          Delete an invoice

  Products:
    GET    /api/products               List catalog
    POST   /api/products               Upsert by name (case-insensitive)
    PUT    /api/products/{id}          Direct edit
    DELETE /api/products/{id}          Delete

  Payments:
    GET    /api/payments               List payments (?customer= filter)
    POST   /api/payments               Record a payment (warning on overpay)
    DELETE /api/payments/{id}          Delete a payment

  Customers:
    GET    /api/customers              Distinct customer names
    GET    /api/customers/summaries    Per-customer totals
    GET    /api/customers/{name}/balance
    GET    /api/customers/{name}/statement
    GET    /api/customers/{name}/suggested-balance

  Reports:
    GET    /api/reports/sales          Sales report (?from=&to=)

  Exchange:
    GET    /api/export/invoices        Canonical invoices document
    GET    /api/export/products        Canonical products document
    POST   /api/import                 Parse any known format, replace

  Backups:
    POST   /api/backups                Snapshot and upload
    GET    /api/backups                List snapshots
    POST   /api/backups/{id}/restore   Restore a snapshot
    DELETE /api/backups/{id}           Delete a snapshot

  Admin:
    POST   /api/admin/clear            Wipe every collection

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, unrecognized import formats
  - 404: Explicit lookups that miss
  - 500: Persistence failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/daftar/storefront/backup"
	"github.com/daftar/storefront/catalog"
	"github.com/daftar/storefront/draft"
	"github.com/daftar/storefront/exchange"
	"github.com/daftar/storefront/ledger"
	"github.com/daftar/storefront/record"
)

// defaultBackupUser scopes snapshots when no user header is sent.
const defaultBackupUser = "local"

// maxImportBytes caps import payload size.
const maxImportBytes = 16 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *record.Store
	Ledger   *ledger.Engine
	Catalog  *catalog.Catalog
	Composer *draft.Composer
	Backups  *backup.Service

	log zerolog.Logger
}

// timeNow stamps export documents; indirect so it can be pinned.
var timeNow = time.Now

// NewHandler wires the engines over a shared store.
func NewHandler(store *record.Store, backups *backup.Service, log zerolog.Logger) *Handler {
	cat := catalog.New(store)
	led := ledger.NewEngine(store, ledger.WithLogger(log))
	return &Handler{
		Store:    store,
		Ledger:   led,
		Catalog:  cat,
		Composer: draft.NewComposer(store, cat, led),
		Backups:  backups,
		log:      log,
	}
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

// ListInvoices returns all invoices, optionally for one customer.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	if customer := r.URL.Query().Get("customer"); customer != "" {
		writeJSON(w, http.StatusOK, toInvoiceDTOs(h.Ledger.InvoicesFor(customer)))
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTOs(h.Store.Invoices.List()))
}

// GetInvoice returns a single invoice.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	inv, found := h.Store.Invoices.Get(id)
	if !found {
		writeError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv))
}

// CreateInvoice composes a draft from the request and saves it.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	d, err := draftFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid invoice", err)
		return
	}

	inv, err := h.Composer.Save(r.Context(), d)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceDTO(inv))
}

// UpdateInvoice replaces an existing invoice's content.
func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if _, found := h.Store.Invoices.Get(id); !found {
		writeError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}

	var req InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	d, err := draftFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid invoice", err)
		return
	}

	if err := h.Composer.SaveAs(r.Context(), id, d); err != nil {
		writeDomainError(w, err)
		return
	}
	inv, _ := h.Store.Invoices.Get(id)
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv))
}

// DeleteInvoice removes an invoice. Deleting a missing id succeeds.
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Store.Invoices.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// draftFromRequest builds a validated draft from the wire shape.
func draftFromRequest(req InvoiceRequest) (*draft.Draft, error) {
	d := &draft.Draft{
		Customer:        req.Customer,
		Date:            req.Date,
		PreviousBalance: req.PreviousBalance,
		Payment:         req.Payment,
	}
	for _, it := range req.Items {
		if err := d.AddItem(it.Product, it.Quantity, it.Price, it.Notes); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns the catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.List())
}

// UpsertProduct inserts or updates a product by name.
func (h *Handler) UpsertProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	p, err := h.Catalog.Upsert(r.Context(), req.Name, req.Price)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// EditProduct updates a product in place by id.
func (h *Handler) EditProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if _, found := h.Store.Products.Get(id); !found {
		writeError(w, http.StatusNotFound, "Product not found", nil)
		return
	}
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Catalog.UpsertByID(r.Context(), id, req.Name, req.Price); err != nil {
		writeDomainError(w, err)
		return
	}
	p, _ := h.Store.Products.Get(id)
	writeJSON(w, http.StatusOK, p)
}

// DeleteProduct removes a product.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Catalog.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns payments, optionally for one customer.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	if customer := r.URL.Query().Get("customer"); customer != "" {
		writeJSON(w, http.StatusOK, h.Ledger.PaymentsFor(customer))
		return
	}
	writeJSON(w, http.StatusOK, h.Store.Payments.List())
}

// CreatePayment records a standalone payment. Overpaying yields a
// warning in the response, never a rejection.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	p, warning, err := h.Ledger.RecordPayment(r.Context(), record.Payment{
		Customer: req.Customer,
		Amount:   req.Amount,
		Date:     req.Date,
		Notes:    req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, PaymentResponse{Payment: p, Warning: warning})
}

// DeletePayment removes a payment.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Ledger.DeletePayment(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

// ListCustomers returns distinct customer names across collections.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Ledger.Customers())
}

// ListCustomerSummaries returns per-customer ledger totals.
func (h *Handler) ListCustomerSummaries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Ledger.CustomerSummaries())
}

// GetCustomerBalance returns the customer's outstanding balance.
func (h *Handler) GetCustomerBalance(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	writeJSON(w, http.StatusOK, BalanceDTO{
		Customer: name,
		Balance:  h.Ledger.CustomerBalance(name),
	})
}

// GetCustomerStatement returns the full ledger statement.
func (h *Handler) GetCustomerStatement(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	writeJSON(w, http.StatusOK, h.Ledger.CustomerStatement(name))
}

// GetSuggestedBalance returns the previous-balance pre-fill for a new
// invoice draft.
func (h *Handler) GetSuggestedBalance(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	writeJSON(w, http.StatusOK, BalanceDTO{
		Customer: name,
		Balance:  h.Ledger.SuggestPreviousBalance(name),
	})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetSalesReport returns aggregate sales between two dates.
func (h *Handler) GetSalesReport(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	writeJSON(w, http.StatusOK, h.Ledger.SalesReport(from, to))
}

// =============================================================================
// EXCHANGE HANDLERS
// =============================================================================

// ExportInvoices streams the canonical invoices document.
func (h *Handler) ExportInvoices(w http.ResponseWriter, r *http.Request) {
	doc, err := exchange.ExportInvoices(h.Store.Invoices.List(), timeNow())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Export failed", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// ExportProducts streams the canonical products document.
func (h *Handler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	doc, err := exchange.ExportProducts(h.Store.Products.List(), timeNow())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Export failed", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="products.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// Import parses any known interchange format and replaces the
// matching collection wholesale.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}

	res, err := exchange.Parse(body, timeNow())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	switch res.Kind {
	case exchange.KindInvoices:
		err = h.Store.Invoices.ImportAll(r.Context(), res.Invoices)
	case exchange.KindProducts:
		err = h.Store.Products.ImportAll(r.Context(), res.Products)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.log.Info().Str("kind", string(res.Kind)).Int("count", res.Count()).Msg("import replaced collection")
	writeJSON(w, http.StatusOK, ImportResponse{Kind: string(res.Kind), Count: res.Count()})
}

// =============================================================================
// BACKUP HANDLERS
// =============================================================================

func backupUser(r *http.Request) string {
	if u := r.Header.Get("X-User-ID"); u != "" {
		return u
	}
	return defaultBackupUser
}

// CreateBackup snapshots the store and uploads it.
func (h *Handler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	info, err := h.Backups.Backup(r.Context(), backupUser(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Backup failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// ListBackups lists stored snapshots for the user.
func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	infos, err := h.Backups.List(r.Context(), backupUser(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list backups", err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// RestoreBackup replaces the store's collections from a snapshot.
func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	snapshotID := chi.URLParam(r, "id")
	snap, err := h.Backups.Restore(r.Context(), backupUser(r), snapshotID)
	if err != nil {
		if errors.Is(err, backup.ErrSnapshotNotFound) {
			writeError(w, http.StatusNotFound, "Snapshot not found", nil)
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"invoices": len(snap.Invoices),
		"products": len(snap.Products),
		"payments": len(snap.Payments),
	})
}

// DeleteBackup removes a stored snapshot.
func (h *Handler) DeleteBackup(w http.ResponseWriter, r *http.Request) {
	snapshotID := chi.URLParam(r, "id")
	if err := h.Backups.Delete(r.Context(), backupUser(r), snapshotID); err != nil {
		if errors.Is(err, backup.ErrSnapshotNotFound) {
			writeError(w, http.StatusNotFound, "Snapshot not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete snapshot", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ClearAll wipes every collection.
func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	for _, err := range []error{
		h.Store.Invoices.Clear(ctx),
		h.Store.Products.Clear(ctx),
		h.Store.Payments.Clear(ctx),
	} {
		if err != nil {
			writeDomainError(w, err)
			return
		}
	}
	h.log.Warn().Msg("all collections cleared")
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

// writeDomainError maps domain sentinels to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, record.ErrValidation):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	case errors.Is(err, record.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, "Unrecognized format", err)
	case errors.Is(err, record.ErrPersistence):
		writeError(w, http.StatusInternalServerError, "Persistence failed", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
