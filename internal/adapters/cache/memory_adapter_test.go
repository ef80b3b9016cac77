package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAdapter_RoundTrip(t *testing.T) {
	adapter := NewMemoryAdapter()
	ctx := context.Background()

	err := adapter.Set(ctx, "artist:radiohead", []byte(`{"name":"Radiohead"}`), 0)
	require.NoError(t, err)

	value, err := adapter.Get(ctx, "artist:radiohead")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"name":"Radiohead"}`), value)

	exists, err := adapter.Exists(ctx, "artist:radiohead")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryAdapter_MissingKey(t *testing.T) {
	adapter := NewMemoryAdapter()
	ctx := context.Background()

	_, err := adapter.Get(ctx, "nope")
	assert.Error(t, err)

	exists, err := adapter.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryAdapter_Delete(t *testing.T) {
	adapter := NewMemoryAdapter()
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, adapter.Delete(ctx, "k"))

	_, err := adapter.Get(ctx, "k")
	assert.Error(t, err)
}

func TestMemoryAdapter_ValueIsolation(t *testing.T) {
	adapter := NewMemoryAdapter()
	ctx := context.Background()

	original := []byte("abc")
	require.NoError(t, adapter.Set(ctx, "k", original, 0))
	original[0] = 'x'

	value, err := adapter.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), value)
}
