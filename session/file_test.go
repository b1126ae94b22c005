package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileState struct {
	Markdown string `json:"markdown"`
	Turns    int    `json:"turns"`
}

func TestFileCacheRoundtrip(t *testing.T) {
	ctx := context.Background()
	cache := NewFileCache[fileState](t.TempDir())

	_, ok, err := cache.Get(ctx, "ns:conv-1")
	require.NoError(t, err)
	assert.False(t, ok)

	want := fileState{Markdown: "## Form", Turns: 3}
	require.NoError(t, cache.Set(ctx, "ns:conv-1", want))

	got, ok, err := cache.Get(ctx, "ns:conv-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestFileCacheOverwrite(t *testing.T) {
	ctx := context.Background()
	cache := NewFileCache[fileState](t.TempDir())

	require.NoError(t, cache.Set(ctx, "k", fileState{Turns: 1}))
	require.NoError(t, cache.Set(ctx, "k", fileState{Turns: 2}))

	got, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.Turns)
}

func TestFileCacheSanitizesKeys(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	cache := NewFileCache[fileState](root)

	require.NoError(t, cache.Set(ctx, "fill_form:state:../escape", fileState{Turns: 1}))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(entries[0].Name()), entries[0].Name())
	assert.NotContains(t, entries[0].Name(), ":")
	assert.NotContains(t, entries[0].Name(), "/")
}

func TestFileCacheKeysNeverCollide(t *testing.T) {
	ctx := context.Background()
	cache := NewFileCache[fileState](t.TempDir())

	// "a:b" and "a_b" must map to different files.
	require.NoError(t, cache.Set(ctx, "a:b", fileState{Turns: 1}))
	require.NoError(t, cache.Set(ctx, "a_b", fileState{Turns: 2}))

	got, ok, err := cache.Get(ctx, "a:b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got.Turns)

	got, ok, err = cache.Get(ctx, "a_b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.Turns)
}

func TestFileCacheDel(t *testing.T) {
	ctx := context.Background()
	cache := NewFileCache[fileState](t.TempDir())

	require.NoError(t, cache.Del(ctx, "missing"))

	require.NoError(t, cache.Set(ctx, "k", fileState{}))
	require.NoError(t, cache.Del(ctx, "k"))
	exists, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}
