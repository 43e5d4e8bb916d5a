package blobstore

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_CreateOpenRead(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := t.Context()
	content := []byte("hello world, this is a test blob payload")

	w, err := store.Create(ctx, "data-001.bin")
	require.NoError(t, err)
	n, err := w.Write(content)
	require.NoError(t, err)
	require.Equal(t, len(content), n)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, "data-001.bin")
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(len(content)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(buf))

	rc, err := blob.ReadRange(ctx, 13, 4)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "this", string(got))
}

func TestLocalStore_CreateIsAtomic(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root)
	ctx := t.Context()

	w, err := store.Create(ctx, "pending.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)

	// The blob must not exist under its final name until Close.
	_, err = os.Stat(filepath.Join(root, "pending.bin"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, w.Close())
	_, err = os.Stat(filepath.Join(root, "pending.bin"))
	require.NoError(t, err)
}

func TestLocalStore_MappableZeroCopy(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := t.Context()
	require.NoError(t, store.Put(ctx, "mapped.bin", []byte("zero copy bytes")))

	blob, err := store.Open(ctx, "mapped.bin")
	require.NoError(t, err)
	defer blob.Close()

	mappable, ok := blob.(Mappable)
	require.True(t, ok)
	data, err := mappable.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "zero copy bytes", string(data))
}

func TestLocalStore_ListAndDelete(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := t.Context()

	for _, name := range []string{"gen-1/store.bin", "gen-1/fast.bin", "gen-2/store.bin"} {
		require.NoError(t, store.Put(ctx, name, []byte(name)))
	}

	names, err := store.List(ctx, "gen-1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"gen-1/fast.bin", "gen-1/store.bin"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, store.Delete(ctx, "gen-1/fast.bin"))
	require.NoError(t, store.Delete(ctx, "gen-1/fast.bin"))

	_, err = store.Open(ctx, "gen-1/fast.bin")
	require.Error(t, err)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "never-created"))

	names, err := store.List(t.Context(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalBlob_ReadBoundaries(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := t.Context()
	require.NoError(t, store.Put(ctx, "boundary.bin", []byte("0123456789")))

	blob, err := store.Open(ctx, "boundary.bin")
	require.NoError(t, err)
	defer blob.Close()

	t.Run("RangeClampedAtEnd", func(t *testing.T) {
		rc, err := blob.ReadRange(ctx, 8, 5)
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "89", string(got))
	})

	t.Run("RangePastEnd", func(t *testing.T) {
		_, err := blob.ReadRange(ctx, 20, 5)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("ReadAtShort", func(t *testing.T) {
		buf := make([]byte, 8)
		n, err := blob.ReadAt(ctx, buf, 7)
		assert.Equal(t, io.EOF, err)
		assert.Equal(t, "789", string(buf[:n]))
	})

	t.Run("ReadAtEmptyBuffer", func(t *testing.T) {
		n, err := blob.ReadAt(ctx, nil, 5)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
