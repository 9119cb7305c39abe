package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carvy-clinic/internal/storage"
)

func TestFileStorageRoundTrip(t *testing.T) {
	fs, err := storage.NewFileStorage(t.TempDir(), 0)
	require.NoError(t, err)

	_, ok, err := fs.GetItem("slot")
	require.NoError(t, err)
	assert.False(t, ok, "unwritten slot should not exist")

	require.NoError(t, fs.SetItem("slot", []byte(`{"a":1}`)))

	got, ok, err := fs.GetItem("slot")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"a":1}`), got)

	require.NoError(t, fs.RemoveItem("slot"))
	_, ok, err = fs.GetItem("slot")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing an absent slot is not an error.
	require.NoError(t, fs.RemoveItem("slot"))
}

func TestFileStorageQuota(t *testing.T) {
	fs, err := storage.NewFileStorage(t.TempDir(), 8)
	require.NoError(t, err)

	require.NoError(t, fs.SetItem("slot", []byte("12345678")))
	err = fs.SetItem("slot", []byte("123456789"))
	require.ErrorIs(t, err, storage.ErrQuotaExceeded)

	// The previous value survives a rejected write.
	got, ok, err := fs.GetItem("slot")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("12345678"), got)
}

func TestMemoryStorageCopiesValues(t *testing.T) {
	mem := storage.NewMemoryStorage(0)
	value := []byte("hello")
	require.NoError(t, mem.SetItem("slot", value))

	value[0] = 'X'
	got, ok, err := mem.GetItem("slot")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got, "stored value must not alias the caller's slice")

	got[0] = 'Y'
	again, _, err := mem.GetItem("slot")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), again, "returned value must not alias the slot")
}

func TestMemoryStorageQuota(t *testing.T) {
	mem := storage.NewMemoryStorage(4)
	require.ErrorIs(t, mem.SetItem("slot", []byte("12345")), storage.ErrQuotaExceeded)

	mem.SetQuota(0)
	require.NoError(t, mem.SetItem("slot", []byte("12345")))
}
