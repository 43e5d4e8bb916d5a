package persistence

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CowSmiles/tantivy/blobstore"
	"github.com/CowSmiles/tantivy/internal/cache"
	"github.com/CowSmiles/tantivy/internal/resource"
)

func TestUploadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), []byte("aaa"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.bin"), []byte("bbbb"), 0644))

	store := blobstore.NewMemoryStore()
	err := UploadDir(t.Context(), store, dir, "idx")
	require.NoError(t, err)

	names, err := store.List(t.Context(), "idx/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"idx/a.bin", "idx/sub/b.bin"}, names)

	blob, err := store.Open(t.Context(), "idx/sub/b.bin")
	require.NoError(t, err)
	defer blob.Close()
	rc, err := blob.ReadRange(t.Context(), 0, blob.Size())
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("bbbb"), data)
}

func TestUploadDir_RateLimited(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), make([]byte, 4096), 0644))

	store := blobstore.NewMemoryStore()
	err := UploadDir(t.Context(), store, dir, "", func(o *UploadOptions) {
		o.RateLimitBytesPerSec = 1 << 20
	})
	require.NoError(t, err)

	blob, err := store.Open(t.Context(), "a.bin")
	require.NoError(t, err)
	defer blob.Close()
	assert.EqualValues(t, 4096, blob.Size())
}

func TestUploadDir_Canceled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), make([]byte, 1<<20), 0644))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	err := UploadDir(ctx, blobstore.NewMemoryStore(), dir, "", func(o *UploadOptions) {
		o.RateLimitBytesPerSec = 1 // forces the limiter to observe the context
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestUploadDir_Controller(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), make([]byte, 4096), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.bin"), make([]byte, 4096), 0644))

	rc := resource.NewController(resource.Config{
		MaxBackgroundWorkers: 1,
		IOLimitBytesPerSec:   1 << 20,
	})
	store := blobstore.NewMemoryStore()
	err := UploadDir(t.Context(), store, dir, "idx", func(o *UploadOptions) {
		o.Controller = rc
	})
	require.NoError(t, err)

	names, err := store.List(t.Context(), "idx/")
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestUploadDir_ControllerCanceled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), make([]byte, 1<<20), 0644))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})
	err := UploadDir(ctx, blobstore.NewMemoryStore(), dir, "", func(o *UploadOptions) {
		o.Controller = rc
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFetchStore(t *testing.T) {
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(t.Context(), "store.bin", writeTestStore(t, 20)))

	sr, closer, err := FetchStore(t.Context(), store, "store.bin")
	require.NoError(t, err)
	defer closer.Close()
	assertStoreContents(t, sr, 20)
}

func TestFetchStore_Mappable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "store.bin"), writeTestStore(t, 10), 0644))

	store := blobstore.NewLocalStore(dir)
	sr, closer, err := FetchStore(t.Context(), store, "store.bin")
	require.NoError(t, err)
	defer closer.Close()
	assertStoreContents(t, sr, 10)
}

func TestFetchStore_Cached(t *testing.T) {
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(t.Context(), "store.bin", writeTestStore(t, 20)))

	blockCache := cache.NewLRUBlockCache(1<<20, nil)
	defer blockCache.Close()
	withCache := func(o *FetchOptions) { o.Cache = blockCache }

	sr, closer, err := FetchStore(t.Context(), store, "store.bin", withCache)
	require.NoError(t, err)
	assertStoreContents(t, sr, 20)
	require.NoError(t, closer.Close())

	_, missesCold := blockCache.Stats()
	require.Positive(t, missesCold)

	// A second fetch is served from the cache.
	sr, closer, err = FetchStore(t.Context(), store, "store.bin", withCache)
	require.NoError(t, err)
	defer closer.Close()
	assertStoreContents(t, sr, 20)

	hits, misses := blockCache.Stats()
	assert.Positive(t, hits)
	assert.Equal(t, missesCold, misses)
}

func TestFetchStore_NotFound(t *testing.T) {
	_, _, err := FetchStore(t.Context(), blobstore.NewMemoryStore(), "missing")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestFetchStore_Corrupt(t *testing.T) {
	store := blobstore.NewMemoryStore()
	data := writeTestStore(t, 5)
	data[20] ^= 0xff
	require.NoError(t, store.Put(t.Context(), "store.bin", data))

	_, _, err := FetchStore(t.Context(), store, "store.bin")
	require.True(t, IsChecksumMismatch(err))
}
