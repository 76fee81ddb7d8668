package record_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daftar/storefront/record"
	"github.com/daftar/storefront/store/memorykv"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) (*record.Store, *memorykv.KV) {
	t.Helper()
	kv := memorykv.New()
	st := record.Open(context.Background(), kv)
	return st, kv
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func invoice(customer string, total string) record.Invoice {
	return record.Invoice{
		Customer: customer,
		Date:     "2026-01-15",
		Total:    dec(total),
	}
}

// =============================================================================
// ID ASSIGNMENT
// =============================================================================

func TestCreate_AssignsSequentialIDs(t *testing.T) {
	// GIVEN: An empty invoices collection
	// WHEN: Creating three invoices
	// THEN: They receive ids 1, 2, 3

	ctx := context.Background()
	st, _ := newTestStore(t)

	for i, want := range []int64{1, 2, 3} {
		inv, err := st.Invoices.Create(ctx, invoice("Asha", "10"))
		require.NoError(t, err, "create %d", i)
		assert.Equal(t, want, inv.ID)
	}
}

func TestCreate_IDIsMaxPlusOne_AfterDeletions(t *testing.T) {
	// GIVEN: Invoices 1..3 with invoice 3 deleted
	// WHEN: Creating another invoice
	// THEN: It gets id 3 again (max surviving id + 1), never a duplicate

	ctx := context.Background()
	st, _ := newTestStore(t)

	for i := 0; i < 3; i++ {
		_, err := st.Invoices.Create(ctx, invoice("Asha", "10"))
		require.NoError(t, err)
	}
	require.NoError(t, st.Invoices.Delete(ctx, 3))

	inv, err := st.Invoices.Create(ctx, invoice("Asha", "20"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), inv.ID)

	// Deleting a middle record must not change the next id.
	require.NoError(t, st.Invoices.Delete(ctx, 1))
	inv, err = st.Invoices.Create(ctx, invoice("Asha", "30"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), inv.ID)
}

func TestCreate_IDSequencesAreIndependentPerCollection(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	inv, err := st.Invoices.Create(ctx, invoice("Asha", "10"))
	require.NoError(t, err)
	p, err := st.Products.Create(ctx, record.Product{Name: "Rice", Price: dec("4")})
	require.NoError(t, err)

	assert.Equal(t, int64(1), inv.ID)
	assert.Equal(t, int64(1), p.ID)
}

// =============================================================================
// UPDATE / DELETE SEMANTICS
// =============================================================================

func TestUpdate_MissingID_IsSilentNoOp(t *testing.T) {
	// GIVEN: One stored invoice
	// WHEN: Updating an id that does not exist
	// THEN: No error, and the stored bytes are untouched

	ctx := context.Background()
	st, kv := newTestStore(t)

	_, err := st.Invoices.Create(ctx, invoice("Asha", "10"))
	require.NoError(t, err)

	before, err := kv.Get(ctx, record.CollectionInvoices)
	require.NoError(t, err)

	err = st.Invoices.Update(ctx, 99, func(inv *record.Invoice) {
		inv.Total = dec("999")
	})
	require.NoError(t, err)

	after, err := kv.Get(ctx, record.CollectionInvoices)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDelete_MissingID_IsSilentNoOp(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	_, err := st.Invoices.Create(ctx, invoice("Asha", "10"))
	require.NoError(t, err)

	require.NoError(t, st.Invoices.Delete(ctx, 42))
	assert.Equal(t, 1, st.Invoices.Len())
}

func TestUpdate_PersistsAppliedMutation(t *testing.T) {
	ctx := context.Background()
	st, kv := newTestStore(t)

	created, err := st.Invoices.Create(ctx, invoice("Asha", "10"))
	require.NoError(t, err)

	err = st.Invoices.Update(ctx, created.ID, func(inv *record.Invoice) {
		inv.Payment = dec("5")
	})
	require.NoError(t, err)

	// The replica and the stored bytes agree after reload.
	got, found := st.Invoices.Get(created.ID)
	require.True(t, found)
	assert.True(t, got.Payment.Equal(dec("5")))

	reloaded := record.Open(ctx, kv)
	got, found = reloaded.Invoices.Get(created.ID)
	require.True(t, found)
	assert.True(t, got.Payment.Equal(dec("5")))
}

// =============================================================================
// WRITE-THEN-COMMIT
// =============================================================================

func TestCreate_PersistFailure_LeavesReplicaUnchanged(t *testing.T) {
	// GIVEN: A store whose backend rejects writes
	// WHEN: A create fails
	// THEN: The in-memory view still matches what was last persisted,
	//       and retrying after the backend recovers succeeds with the
	//       same id

	ctx := context.Background()
	st, kv := newTestStore(t)

	_, err := st.Invoices.Create(ctx, invoice("Asha", "10"))
	require.NoError(t, err)

	kv.FailSets(errors.New("disk full"))

	_, err = st.Invoices.Create(ctx, invoice("Binta", "20"))
	require.Error(t, err)
	assert.ErrorIs(t, err, record.ErrPersistence)
	assert.Equal(t, 1, st.Invoices.Len())

	kv.FailSets(nil)

	inv, err := st.Invoices.Create(ctx, invoice("Binta", "20"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), inv.ID)
	assert.Equal(t, 2, st.Invoices.Len())
}

func TestDelete_PersistFailure_KeepsRecord(t *testing.T) {
	ctx := context.Background()
	st, kv := newTestStore(t)

	created, err := st.Invoices.Create(ctx, invoice("Asha", "10"))
	require.NoError(t, err)

	kv.FailSets(errors.New("disk full"))
	err = st.Invoices.Delete(ctx, created.ID)
	require.Error(t, err)

	_, found := st.Invoices.Get(created.ID)
	assert.True(t, found)
}

// =============================================================================
// LOAD BEHAVIOR
// =============================================================================

func TestOpen_CorruptPayload_DegradesToEmpty(t *testing.T) {
	// GIVEN: A backend holding unparseable bytes for invoices
	// WHEN: Opening the store
	// THEN: The collection starts empty and the bad bytes stay on disk

	ctx := context.Background()
	kv := memorykv.New()
	require.NoError(t, kv.Set(ctx, record.CollectionInvoices, []byte("{not json")))

	st := record.Open(ctx, kv)
	assert.Equal(t, 0, st.Invoices.Len())

	raw, err := kv.Get(ctx, record.CollectionInvoices)
	require.NoError(t, err)
	assert.Equal(t, []byte("{not json"), raw)
}

func TestOpen_RoundTripsAllCollections(t *testing.T) {
	ctx := context.Background()
	st, kv := newTestStore(t)

	_, err := st.Invoices.Create(ctx, invoice("Asha", "10"))
	require.NoError(t, err)
	_, err = st.Products.Create(ctx, record.Product{Name: "Rice", Price: dec("4")})
	require.NoError(t, err)
	_, err = st.Payments.Create(ctx, record.Payment{Customer: "Asha", Amount: dec("3")})
	require.NoError(t, err)

	reloaded := record.Open(ctx, kv)
	assert.Equal(t, 1, reloaded.Invoices.Len())
	assert.Equal(t, 1, reloaded.Products.Len())
	assert.Equal(t, 1, reloaded.Payments.Len())
}

// =============================================================================
// IMPORT
// =============================================================================

func TestImportAll_ReplacesWholesale_NoRepair(t *testing.T) {
	// GIVEN: Existing invoices 1..2 and an import with colliding odd ids
	// WHEN: Importing
	// THEN: The collection is exactly the imported records, ids as given

	ctx := context.Background()
	st, _ := newTestStore(t)

	for i := 0; i < 2; i++ {
		_, err := st.Invoices.Create(ctx, invoice("Asha", "10"))
		require.NoError(t, err)
	}

	incoming := []record.Invoice{
		{ID: 7, Customer: "Binta", Total: dec("70")},
		{ID: 7, Customer: "Chidi", Total: dec("30")},
	}
	require.NoError(t, st.Invoices.ImportAll(ctx, incoming))

	got := st.Invoices.List()
	require.Len(t, got, 2)
	assert.Equal(t, int64(7), got[0].ID)
	assert.Equal(t, int64(7), got[1].ID)
	assert.Equal(t, "Binta", got[0].Customer)
	assert.Equal(t, "Chidi", got[1].Customer)
}

func TestClear_PersistsEmptyList(t *testing.T) {
	ctx := context.Background()
	st, kv := newTestStore(t)

	_, err := st.Invoices.Create(ctx, invoice("Asha", "10"))
	require.NoError(t, err)

	require.NoError(t, st.Invoices.Clear(ctx))
	assert.Equal(t, 0, st.Invoices.Len())

	raw, err := kv.Get(ctx, record.CollectionInvoices)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(raw))
}

// =============================================================================
// CLOCK
// =============================================================================

func TestCreate_StampsCreatedAtFromClock(t *testing.T) {
	ctx := context.Background()
	kv := memorykv.New()
	at := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	st := record.Open(ctx, kv, record.WithClock(func() time.Time { return at }))

	inv, err := st.Invoices.Create(ctx, invoice("Asha", "10"))
	require.NoError(t, err)
	assert.True(t, inv.CreatedAt.Equal(at))
}
