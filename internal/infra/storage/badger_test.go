package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerRoundTrip(t *testing.T) {
	kv, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()

	ctx := context.Background()

	got, err := kv.Get(ctx, KeyItems)
	require.NoError(t, err)
	assert.Nil(t, got, "absent key reads as nil, not an error")

	require.NoError(t, kv.Set(ctx, KeyItems, []byte(`[{"name":"Rice"}]`)))
	got, err = kv.Get(ctx, KeyItems)
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Rice"}]`, string(got))

	require.NoError(t, kv.Set(ctx, KeyItems, []byte(`[]`)))
	got, err = kv.Get(ctx, KeyItems)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got), "writes replace the whole value")

	require.NoError(t, kv.Delete(ctx, KeyItems))
	got, err = kv.Get(ctx, KeyItems)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	kv, err := OpenBadger(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, KeyTheme, []byte("dark")))
	require.NoError(t, kv.Close())

	kv, err = OpenBadger(dir)
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()

	got, err := kv.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", string(got))
}
