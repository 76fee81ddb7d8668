package sqlitekv_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daftar/storefront/store/sqlitekv"
)

func newTestKV(t *testing.T) *sqlitekv.KV {
	t.Helper()
	kv, err := sqlitekv.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestGet_MissingKey_ReturnsNilNil(t *testing.T) {
	kv := newTestKV(t)

	v, err := kv.Get(context.Background(), "invoices")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSetGet_RoundTrip(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	payload := []byte(`[{"id":1}]`)
	require.NoError(t, kv.Set(ctx, "invoices", payload))

	got, err := kv.Get(ctx, "invoices")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestSet_ReplacesExistingPayload(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "invoices", []byte(`[1]`)))
	require.NoError(t, kv.Set(ctx, "invoices", []byte(`[1,2]`)))

	got, err := kv.Get(ctx, "invoices")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2]`), got)
}

func TestKeys_AreIndependent(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "invoices", []byte(`["i"]`)))
	require.NoError(t, kv.Set(ctx, "products", []byte(`["p"]`)))

	inv, err := kv.Get(ctx, "invoices")
	require.NoError(t, err)
	prod, err := kv.Get(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, []byte(`["i"]`), inv)
	assert.Equal(t, []byte(`["p"]`), prod)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	kv, err := sqlitekv.New(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "invoices", []byte(`[7]`)))
	require.NoError(t, kv.Close())

	reopened, err := sqlitekv.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "invoices")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[7]`), got)
}
