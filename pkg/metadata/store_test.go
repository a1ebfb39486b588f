package metadata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "zcl.db"), "session-1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedPackage(t *testing.T, store *Store) int64 {
	t.Helper()
	ctx := context.Background()
	pkgID, err := store.InsertPackage(ctx, "zcl/general.xml", "zcl-properties")
	require.NoError(t, err)
	require.NoError(t, store.BindSession(ctx, pkgID))
	return pkgID
}

func TestOpen_EmptySessionRefRejected(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "zcl.db"), "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session reference")
}

func TestOpen_CreatesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zcl.db")

	first, err := Open(path, "session-1")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path, "session-1")
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestResolveOwningPackage(t *testing.T) {
	store := newTestStore(t)
	pkgID := seedPackage(t, store)

	resolved, err := store.ResolveOwningPackage(context.Background())

	require.NoError(t, err)
	assert.Equal(t, pkgID, resolved)
}

func TestResolveOwningPackage_UnboundSessionFails(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ResolveOwningPackage(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no package bound to session 'session-1'")
}

func TestFetchOptionValues_InsertionOrder(t *testing.T) {
	store := newTestStore(t)
	pkgID := seedPackage(t, store)
	ctx := context.Background()

	require.NoError(t, store.InsertOptionValue(ctx, pkgID, "clusterRole", 1, "server"))
	require.NoError(t, store.InsertOptionValue(ctx, pkgID, "clusterRole", 2, "client"))

	values, err := store.FetchOptionValues(ctx, pkgID, "clusterRole")

	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, OptionValue{Code: 1, Label: "server"}, values[0])
	assert.Equal(t, OptionValue{Code: 2, Label: "client"}, values[1])
}

func TestFetchOptionValues_UnknownCategoryFails(t *testing.T) {
	store := newTestStore(t)
	pkgID := seedPackage(t, store)

	_, err := store.FetchOptionValues(context.Background(), pkgID, "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no option values for category 'missing'")
}

func TestFetchSpecificOptionValue(t *testing.T) {
	store := newTestStore(t)
	pkgID := seedPackage(t, store)
	ctx := context.Background()

	require.NoError(t, store.InsertOptionValue(ctx, pkgID, "defaultResponse", 0, "enabled"))

	value, err := store.FetchSpecificOptionValue(ctx, pkgID, "defaultResponse", "enabled")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, int64(0), value.Code)

	missing, err := store.FetchSpecificOptionValue(ctx, pkgID, "defaultResponse", "absent")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFetchOptionValues_ScopedToPackage(t *testing.T) {
	store := newTestStore(t)
	pkgID := seedPackage(t, store)
	ctx := context.Background()

	otherID, err := store.InsertPackage(ctx, "zcl/other.xml", "zcl-properties")
	require.NoError(t, err)
	require.NoError(t, store.InsertOptionValue(ctx, otherID, "clusterRole", 9, "other"))

	_, err = store.FetchOptionValues(ctx, pkgID, "clusterRole")

	require.Error(t, err, "options of a different package must not leak into this one")
}
