/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the mobile/web client

ROUTE GROUPS:
  /api/invoices/*       Invoice composition and history
  /api/products/*       Catalog
  /api/payments/*       Standalone payments
  /api/customers/*      Ledger views per customer
  /api/reports/*        Aggregates
  /api/export, /api/import  Interchange documents
  /api/backups/*        Snapshots
  /api/admin/*          Destructive operations

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/storefront: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		// Invoice routes
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", h.ListInvoices)
			r.Post("/", h.CreateInvoice)
			r.Get("/{id}", h.GetInvoice)
			r.Put("/{id}", h.UpdateInvoice)
			r.Delete("/{id}", h.DeleteInvoice)
		})

		// Product routes
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.UpsertProduct)
			r.Put("/{id}", h.EditProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})

		// Payment routes
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.CreatePayment)
			r.Delete("/{id}", h.DeletePayment)
		})

		// Customer routes
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Get("/summaries", h.ListCustomerSummaries)
			r.Get("/{name}/balance", h.GetCustomerBalance)
			r.Get("/{name}/statement", h.GetCustomerStatement)
			r.Get("/{name}/suggested-balance", h.GetSuggestedBalance)
		})

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/sales", h.GetSalesReport)
		})

		// Exchange routes
		r.Get("/export/invoices", h.ExportInvoices)
		r.Get("/export/products", h.ExportProducts)
		r.Post("/import", h.Import)

		// Backup routes
		r.Route("/backups", func(r chi.Router) {
			r.Post("/", h.CreateBackup)
			r.Get("/", h.ListBackups)
			r.Post("/{id}/restore", h.RestoreBackup)
			r.Delete("/{id}", h.DeleteBackup)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/clear", h.ClearAll)
		})
	})

	return r
}
