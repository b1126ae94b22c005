package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreScopesKeysByNamespace(t *testing.T) {
	ctx := context.Background()
	core := NewMemoryCache[string]()
	first := NewStore[string](core, "first")
	second := NewStore[string](core, "second")
	sess := Session{ConversationID: "conv-1"}

	require.NoError(t, first.Set(ctx, sess, "a"))
	require.NoError(t, second.Set(ctx, sess, "b"))

	got, ok, err := first.Get(ctx, sess)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", got)

	got, ok, err = second.Get(ctx, sess)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", got)
}

func TestStoreRejectsEmptySession(t *testing.T) {
	ctx := context.Background()
	store := NewStore[string](NewMemoryCache[string](), "ns")

	err := store.Set(ctx, Session{}, "value")
	assert.ErrorIs(t, err, ErrNoConversationID)

	_, _, err = store.Get(ctx, Session{})
	assert.ErrorIs(t, err, ErrNoConversationID)
}

func TestStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	store := NewStore[int](NewMemoryCache[int](), "ns")

	got, ok, err := store.Get(ctx, Session{ConversationID: "absent"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, got)
}

func TestStoreReady(t *testing.T) {
	assert.False(t, Store[int]{}.Ready())
	assert.True(t, NewStore[int](NewMemoryCache[int](), "ns").Ready())
}

func TestStoreDel(t *testing.T) {
	ctx := context.Background()
	store := NewStore[string](NewMemoryCache[string](), "ns")
	sess := Session{ConversationID: "conv-1"}

	require.NoError(t, store.Set(ctx, sess, "value"))
	exists, err := store.Exists(ctx, sess)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Del(ctx, sess))
	exists, err = store.Exists(ctx, sess)
	require.NoError(t, err)
	assert.False(t, exists)
}
