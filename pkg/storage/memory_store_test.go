package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Put(ctx, "orgForms", "user-1", Document{"organizationId": "org_abc"})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "orgForms", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "org_abc", doc["organizationId"])
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "preferences", "nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDocumentNotFound))
}

func TestMemoryStore_CollectionsAreIsolated(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "orgForms", "u", Document{"v": 1}))

	_, err := store.Get(ctx, "preferences", "u")
	assert.True(t, errors.Is(err, ErrDocumentNotFound))
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Put(ctx, "preferences", "u", Document{"n": 1})
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Get(ctx, "preferences", "u")
		}()
	}
	wg.Wait()
}
