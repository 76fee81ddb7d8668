package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daftar/storefront/api"
	"github.com/daftar/storefront/backup"
	"github.com/daftar/storefront/record"
	"github.com/daftar/storefront/store/memorykv"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testAPI struct {
	srv   *httptest.Server
	store *record.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	clock := &testClock{t: time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)}
	st := record.Open(context.Background(), memorykv.New(), record.WithClock(clock.now))
	backups := backup.NewService(st, backup.NewMemoryProvider())

	h := api.NewHandler(st, backups, zerolog.Nop())
	srv := httptest.NewServer(api.NewRouter(h))
	t.Cleanup(srv.Close)

	return &testAPI{srv: srv, store: st}
}

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func invoiceBody(customer string, total, prev, payment string) map[string]any {
	return map[string]any{
		"customer":        customer,
		"date":            "2026-01-15",
		"items":           []map[string]any{{"product": "Sugar", "quantity": "1", "price": total}},
		"previousBalance": prev,
		"payment":         payment,
	}
}

// =============================================================================
// INVOICES
// =============================================================================

func TestInvoices_CreateGetListDelete(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "POST", "/api/invoices", invoiceBody("Ali", "100", "0", "30"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID        int64           `json:"id"`
		Customer  string          `json:"customer"`
		Total     decimal.Decimal `json:"total"`
		Remaining decimal.Decimal `json:"remaining"`
	}
	decodeInto(t, resp, &created)
	assert.Equal(t, int64(1), created.ID)
	assert.True(t, created.Total.Equal(dec("100")))
	assert.True(t, created.Remaining.Equal(dec("70")))

	resp = a.do(t, "GET", "/api/invoices/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = a.do(t, "GET", "/api/invoices?customer=Ali", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []json.RawMessage
	decodeInto(t, resp, &list)
	assert.Len(t, list, 1)

	resp = a.do(t, "DELETE", "/api/invoices/1", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, a.store.Invoices.Len())
}

func TestInvoices_GetMissing_404(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "GET", "/api/invoices/42", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInvoices_DeleteMissing_Succeeds(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "DELETE", "/api/invoices/42", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestInvoices_CreateWithoutItems_400(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "POST", "/api/invoices", map[string]any{"customer": "Ali"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInvoices_UpdatePreservesIdentity(t *testing.T) {
	a := newTestAPI(t)

	a.do(t, "POST", "/api/invoices", invoiceBody("Ali", "100", "0", "30"))

	original, found := a.store.Invoices.Get(1)
	require.True(t, found)

	resp := a.do(t, "PUT", "/api/invoices/1", invoiceBody("Ali", "50", "0", "0"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, found := a.store.Invoices.Get(1)
	require.True(t, found)
	assert.True(t, stored.CreatedAt.Equal(original.CreatedAt))
	assert.True(t, stored.Total.Equal(dec("50")))

	resp = a.do(t, "PUT", "/api/invoices/9", invoiceBody("Ali", "50", "0", "0"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// PRODUCTS
// =============================================================================

func TestProducts_UpsertIsCaseInsensitive(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "POST", "/api/products", map[string]any{"name": "Sugar", "price": "5"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = a.do(t, "POST", "/api/products", map[string]any{"name": "sugar", "price": "6"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = a.do(t, "GET", "/api/products", nil)
	var products []struct {
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	}
	decodeInto(t, resp, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Sugar", products[0].Name)
	assert.True(t, products[0].Price.Equal(dec("6")))
}

func TestProducts_UpsertInvalid_400(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "POST", "/api/products", map[string]any{"name": "", "price": "5"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.do(t, "POST", "/api/products", map[string]any{"name": "Sugar", "price": "-1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProducts_EditMissing_404(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "PUT", "/api/products/9", map[string]any{"name": "Sugar", "price": "6"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestPayments_OverpaymentReturnsWarning(t *testing.T) {
	a := newTestAPI(t)

	a.do(t, "POST", "/api/invoices", invoiceBody("Ali", "100", "0", "30"))

	resp := a.do(t, "POST", "/api/payments", map[string]any{"customer": "Ali", "amount": "100"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Payment record.Payment `json:"payment"`
		Warning *struct {
			Balance decimal.Decimal `json:"Balance"`
		} `json:"warning"`
	}
	decodeInto(t, resp, &out)
	assert.Equal(t, int64(1), out.Payment.ID)
	require.NotNil(t, out.Warning)
	assert.True(t, out.Warning.Balance.Equal(dec("70")))
}

func TestPayments_WithinBalance_NoWarning(t *testing.T) {
	a := newTestAPI(t)

	a.do(t, "POST", "/api/invoices", invoiceBody("Ali", "100", "0", "0"))

	resp := a.do(t, "POST", "/api/payments", map[string]any{"customer": "Ali", "amount": "40"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out map[string]json.RawMessage
	decodeInto(t, resp, &out)
	_, hasWarning := out["warning"]
	assert.False(t, hasWarning)
}

func TestPayments_InvalidAmount_400(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "POST", "/api/payments", map[string]any{"customer": "Ali", "amount": "0"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func TestCustomers_BalanceFlow(t *testing.T) {
	a := newTestAPI(t)

	a.do(t, "POST", "/api/invoices", invoiceBody("Ali", "100", "0", "30"))
	a.do(t, "POST", "/api/payments", map[string]any{"customer": "Ali", "amount": "20"})

	resp := a.do(t, "GET", "/api/customers/Ali/balance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var balance struct {
		Customer string          `json:"customer"`
		Balance  decimal.Decimal `json:"balance"`
	}
	decodeInto(t, resp, &balance)
	assert.True(t, balance.Balance.Equal(dec("50")))

	resp = a.do(t, "GET", "/api/customers", nil)
	var customers []string
	decodeInto(t, resp, &customers)
	assert.Equal(t, []string{"Ali"}, customers)

	// The draft pre-fill ignores the standalone payment.
	resp = a.do(t, "GET", "/api/customers/Ali/suggested-balance", nil)
	decodeInto(t, resp, &balance)
	assert.True(t, balance.Balance.Equal(dec("70")))
}

// =============================================================================
// EXCHANGE
// =============================================================================

func TestImport_LegacyShape_ReplacesCollection(t *testing.T) {
	a := newTestAPI(t)

	a.do(t, "POST", "/api/invoices", invoiceBody("Old", "10", "0", "0"))

	payload := `{"invoicesList": [{"customerName": "Ali", "totalAmount": 55}]}`
	req, err := http.NewRequest("POST", a.srv.URL+"/api/import", bytes.NewReader([]byte(payload)))
	require.NoError(t, err)
	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Kind  string `json:"kind"`
		Count int    `json:"count"`
	}
	decodeInto(t, resp, &out)
	assert.Equal(t, "invoices", out.Kind)
	assert.Equal(t, 1, out.Count)

	list := a.store.Invoices.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Ali", list[0].Customer)
}

func TestImport_Unrecognized_400(t *testing.T) {
	a := newTestAPI(t)

	req, err := http.NewRequest("POST", a.srv.URL+"/api/import", bytes.NewReader([]byte(`{"x":1}`)))
	require.NoError(t, err)
	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExport_RoundTripsThroughImport(t *testing.T) {
	a := newTestAPI(t)

	a.do(t, "POST", "/api/invoices", invoiceBody("Ali", "100", "0", "30"))

	resp := a.do(t, "GET", "/api/export/invoices", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		InvoicesCount int `json:"invoicesCount"`
	}
	decodeInto(t, resp, &doc)
	assert.Equal(t, 1, doc.InvoicesCount)
}

// =============================================================================
// BACKUPS
// =============================================================================

func TestBackups_CreateListRestore(t *testing.T) {
	a := newTestAPI(t)

	a.do(t, "POST", "/api/invoices", invoiceBody("Ali", "100", "0", "0"))

	resp := a.do(t, "POST", "/api/backups", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var info struct {
		ID string `json:"id"`
	}
	decodeInto(t, resp, &info)
	require.NotEmpty(t, info.ID)

	resp = a.do(t, "POST", "/api/admin/clear", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, a.store.Invoices.Len())

	resp = a.do(t, "POST", fmt.Sprintf("/api/backups/%s/restore", info.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, a.store.Invoices.Len())

	resp = a.do(t, "POST", "/api/backups/snap-404/restore", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
