package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CowSmiles/tantivy/internal/resource"
)

func blobKey(idx uint64) CacheKey {
	return CacheKey{Kind: CacheKindBlob, Path: "store.bin", Offset: idx}
}

func TestLRUBlockCache_GetSet(t *testing.T) {
	c := NewLRUBlockCache(1024, nil)

	_, ok := c.Get(t.Context(), blobKey(0))
	assert.False(t, ok)

	c.Set(t.Context(), blobKey(0), []byte("block zero"))
	got, ok := c.Get(t.Context(), blobKey(0))
	require.True(t, ok)
	assert.Equal(t, []byte("block zero"), got)

	hits, misses := c.Stats()
	assert.EqualValues(t, 1, hits)
	assert.EqualValues(t, 1, misses)
}

func TestLRUBlockCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUBlockCache(32, nil)
	for i := uint64(0); i < 4; i++ {
		c.Set(t.Context(), blobKey(i), make([]byte, 8))
	}
	require.EqualValues(t, 32, c.Size())

	// Touch block 0 so block 1 becomes the eviction victim.
	_, ok := c.Get(t.Context(), blobKey(0))
	require.True(t, ok)

	c.Set(t.Context(), blobKey(4), make([]byte, 8))

	_, ok = c.Get(t.Context(), blobKey(1))
	assert.False(t, ok)
	_, ok = c.Get(t.Context(), blobKey(0))
	assert.True(t, ok)
	assert.EqualValues(t, 32, c.Size())
}

func TestLRUBlockCache_OversizedBlockNotCached(t *testing.T) {
	c := NewLRUBlockCache(16, nil)
	c.Set(t.Context(), blobKey(0), make([]byte, 17))

	_, ok := c.Get(t.Context(), blobKey(0))
	assert.False(t, ok)
	assert.Zero(t, c.Size())
}

func TestLRUBlockCache_ReplaceTracksBytes(t *testing.T) {
	c := NewLRUBlockCache(64, nil)
	key := blobKey(0)

	c.Set(t.Context(), key, make([]byte, 10))
	assert.EqualValues(t, 10, c.Size())

	c.Set(t.Context(), key, make([]byte, 24))
	assert.EqualValues(t, 24, c.Size())

	c.Set(t.Context(), key, make([]byte, 4))
	assert.EqualValues(t, 4, c.Size())
}

func TestLRUBlockCache_Invalidate(t *testing.T) {
	c := NewLRUBlockCache(1024, nil)
	for i := uint64(0); i < 3; i++ {
		c.Set(t.Context(), CacheKey{Kind: CacheKindBlob, Path: "a", Offset: i}, []byte{byte(i)})
	}
	c.Set(t.Context(), CacheKey{Kind: CacheKindBlob, Path: "b", Offset: 0}, []byte{9})

	c.Invalidate(func(k CacheKey) bool { return k.Path == "a" })

	_, ok := c.Get(t.Context(), CacheKey{Kind: CacheKindBlob, Path: "a", Offset: 1})
	assert.False(t, ok)
	_, ok = c.Get(t.Context(), CacheKey{Kind: CacheKindBlob, Path: "b", Offset: 0})
	assert.True(t, ok)
	assert.EqualValues(t, 1, c.Size())
}

func TestLRUBlockCache_ControllerAccounting(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64})
	c := NewLRUBlockCache(1024, rc)

	c.Set(t.Context(), blobKey(0), make([]byte, 40))
	assert.EqualValues(t, 40, rc.MemoryUsage())

	// The controller has 24 budget bytes left, so a 40-byte block is
	// refused without blocking.
	c.Set(t.Context(), blobKey(1), make([]byte, 40))
	_, ok := c.Get(t.Context(), blobKey(1))
	assert.False(t, ok)

	// Growth past the budget keeps the old payload.
	c.Set(t.Context(), blobKey(0), make([]byte, 100))
	got, ok := c.Get(t.Context(), blobKey(0))
	require.True(t, ok)
	assert.Len(t, got, 40)

	// Eviction releases the reservation.
	c.Invalidate(func(CacheKey) bool { return true })
	assert.Zero(t, rc.MemoryUsage())
}

func TestLRUBlockCache_DistinctKinds(t *testing.T) {
	c := NewLRUBlockCache(1024, nil)
	doc := CacheKey{Kind: CacheKindDocBlock, FileID: 1, Offset: 0}
	col := CacheKey{Kind: CacheKindColumn, FileID: 1, Offset: 0}

	c.Set(t.Context(), doc, []byte("doc"))
	c.Set(t.Context(), col, []byte("col"))

	got, ok := c.Get(t.Context(), doc)
	require.True(t, ok)
	assert.Equal(t, []byte("doc"), got)
	got, ok = c.Get(t.Context(), col)
	require.True(t, ok)
	assert.Equal(t, []byte("col"), got)
}

func BenchmarkLRUBlockCache_Get(b *testing.B) {
	c := NewLRUBlockCache(1<<20, nil)
	for i := uint64(0); i < 64; i++ {
		c.Set(b.Context(), blobKey(i), make([]byte, 1024))
	}

	var i uint64
	for b.Loop() {
		if _, ok := c.Get(b.Context(), blobKey(i%64)); !ok {
			b.Fatalf("missing block %d", i%64)
		}
		i++
	}
}
