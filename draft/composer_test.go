package draft_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daftar/storefront/catalog"
	"github.com/daftar/storefront/draft"
	"github.com/daftar/storefront/ledger"
	"github.com/daftar/storefront/record"
	"github.com/daftar/storefront/store/memorykv"
)

func newTestComposer(t *testing.T) (*draft.Composer, *record.Store) {
	t.Helper()
	st := record.Open(context.Background(), memorykv.New())
	cat := catalog.New(st)
	led := ledger.NewEngine(st)
	return draft.NewComposer(st, cat, led), st
}

// =============================================================================
// SAVE FLOW
// =============================================================================

func TestSave_PersistsInvoiceAndSyncsCatalog(t *testing.T) {
	// GIVEN: A draft referencing two products, one already cataloged
	// WHEN: Saving
	// THEN: The invoice is stored with a fresh id and both products end
	//       up in the catalog at the invoiced price

	comp, st := newTestComposer(t)
	ctx := context.Background()

	cat := catalog.New(st)
	_, err := cat.Upsert(ctx, "Sugar", dec("5"))
	require.NoError(t, err)

	d := draft.New(testDay)
	d.Customer = "Ali"
	require.NoError(t, d.AddItem("sugar", dec("2"), dec("6"), ""))
	require.NoError(t, d.AddItem("Rice", dec("1"), dec("4"), ""))

	saved, err := comp.Save(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.True(t, saved.Total.Equal(dec("16")))

	products := st.Products.List()
	require.Len(t, products, 2)

	sugar, found := cat.FindByName("Sugar")
	require.True(t, found)
	assert.Equal(t, "Sugar", sugar.Name)
	assert.True(t, sugar.Price.Equal(dec("6")))
}

func TestSave_InvalidDraft_NothingPersisted(t *testing.T) {
	comp, st := newTestComposer(t)

	d := draft.New(testDay)
	d.Customer = "Ali" // no items

	_, err := comp.Save(context.Background(), d)
	assert.ErrorIs(t, err, record.ErrValidation)
	assert.Equal(t, 0, st.Invoices.Len())
}

func TestSaveAs_OverwritesContentKeepsIdentity(t *testing.T) {
	// Editing an invoice must preserve its id and createdAt; the ledger
	// depends on both for ordering.

	comp, st := newTestComposer(t)
	ctx := context.Background()

	d := draft.New(testDay)
	d.Customer = "Ali"
	require.NoError(t, d.AddItem("Sugar", dec("1"), dec("5"), ""))
	original, err := comp.Save(ctx, d)
	require.NoError(t, err)

	edit := draft.LoadDraft(original)
	edit.Payment = dec("3")
	require.NoError(t, edit.UpdateItem(0, "Sugar", dec("2"), dec("5"), ""))

	require.NoError(t, comp.SaveAs(ctx, original.ID, edit))

	stored, found := st.Invoices.Get(original.ID)
	require.True(t, found)
	assert.Equal(t, original.ID, stored.ID)
	assert.True(t, stored.CreatedAt.Equal(original.CreatedAt))
	assert.True(t, stored.Total.Equal(dec("10")))
	assert.True(t, stored.Payment.Equal(dec("3")))
	assert.Equal(t, 1, st.Invoices.Len())
}

func TestLoadDraft_RoundTrip(t *testing.T) {
	inv := record.Invoice{
		ID:              4,
		Customer:        "Ali",
		Date:            "2026-04-05",
		Items:           []record.LineItem{{Product: "Sugar", Quantity: dec("1"), Price: dec("5"), Total: dec("5")}},
		Total:           dec("5"),
		PreviousBalance: dec("70"),
		Payment:         dec("30"),
	}

	d := draft.LoadDraft(inv)
	rebuilt, err := d.Build()
	require.NoError(t, err)

	assert.Equal(t, inv.Customer, rebuilt.Customer)
	assert.Equal(t, inv.Date, rebuilt.Date)
	assert.True(t, rebuilt.Total.Equal(inv.Total))
	assert.True(t, rebuilt.PreviousBalance.Equal(inv.PreviousBalance))
	assert.True(t, rebuilt.Payment.Equal(inv.Payment))
}

func TestSuggestPreviousBalance_FromLatestInvoice(t *testing.T) {
	comp, _ := newTestComposer(t)
	ctx := context.Background()

	assert.True(t, comp.SuggestPreviousBalance("Ali").IsZero())

	d := draft.New(testDay)
	d.Customer = "Ali"
	d.Payment = dec("30")
	require.NoError(t, d.AddItem("Sugar", dec("20"), dec("5"), ""))
	_, err := comp.Save(ctx, d)
	require.NoError(t, err)

	// 100 - 30
	assert.True(t, comp.SuggestPreviousBalance("Ali").Equal(dec("70")))
}
