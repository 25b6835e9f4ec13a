package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	store := openTest(t)

	require.NoError(t, store.Put("objects", []byte("k"), []byte("v")))

	got, found, err := store.Get("objects", []byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v"), got)
}

func TestStore_GetMissingTableOrKey(t *testing.T) {
	store := openTest(t)

	_, found, err := store.Get("nosuchtable", []byte("k"))
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put("objects", []byte("a"), []byte("1")))
	_, found, err = store.Get("objects", []byte("b"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_PutOverwrites(t *testing.T) {
	store := openTest(t)

	require.NoError(t, store.Put("objects", []byte("k"), []byte("v1")))
	require.NoError(t, store.Put("objects", []byte("k"), []byte("v2")))

	got, found, err := store.Get("objects", []byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v2"), got)
}

func TestStore_List(t *testing.T) {
	store := openTest(t)

	require.NoError(t, store.Put("objects", []byte("a"), []byte("1")))
	require.NoError(t, store.Put("objects", []byte("b"), []byte("2")))

	items, err := store.List("objects")
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestStore_ListEmptyTable(t *testing.T) {
	store := openTest(t)

	items, err := store.List("nosuchtable")
	require.NoError(t, err)
	assert.Empty(t, items)
}
