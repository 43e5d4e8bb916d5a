package blobstore

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/CowSmiles/tantivy/internal/cache"
)

type mockCountingStore struct {
	readCount atomic.Int64
}

func (m *mockCountingStore) Open(ctx context.Context, name string) (Blob, error) {
	return &mockCountingBlob{store: m, size: 1024 * 1024}, nil
}
func (m *mockCountingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	return nil, nil
}
func (m *mockCountingStore) Put(ctx context.Context, name string, data []byte) error { return nil }
func (m *mockCountingStore) Delete(ctx context.Context, name string) error           { return nil }
func (m *mockCountingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return nil, nil
}

type mockCountingBlob struct {
	store *mockCountingStore
	size  int64
}

func (b *mockCountingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	b.store.readCount.Add(1)
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
func (b *mockCountingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	return nil, nil
}
func (b *mockCountingBlob) Size() int64  { return b.size }
func (b *mockCountingBlob) Close() error { return nil }

// A cold read spanning many blocks must be coalesced into one inner read,
// not one read per block.
func TestCachingStore_Coalescing(t *testing.T) {
	inner := &mockCountingStore{}
	cachingStore := NewCachingStore(inner, cache.NewLRUBlockCache(1024*1024, nil), 1024)

	ctx := context.Background()
	blob, err := cachingStore.Open(ctx, "test")
	if err != nil {
		t.Fatal(err)
	}

	// 10KB spans 10 blocks, all missing.
	buf := make([]byte, 10*1024)
	if _, err := blob.ReadAt(ctx, buf, 0); err != nil {
		t.Fatal(err)
	}
	if got := inner.readCount.Load(); got != 1 {
		t.Fatalf("cold read issued %d inner reads, want 1", got)
	}

	// Everything is cached now; a re-read must not touch the inner blob.
	if _, err := blob.ReadAt(ctx, buf, 0); err != nil {
		t.Fatal(err)
	}
	if got := inner.readCount.Load(); got != 1 {
		t.Fatalf("warm read issued %d extra inner reads, want 0", got-1)
	}
}

func BenchmarkCachingBlob_ReadAt(b *testing.B) {
	inner := &mockCountingStore{}
	cachingStore := NewCachingStore(inner, cache.NewLRUBlockCache(64*1024*1024, nil), 4096)

	ctx := context.Background()
	blob, err := cachingStore.Open(ctx, "bench")
	if err != nil {
		b.Fatal(err)
	}
	buf := make([]byte, 16*1024)

	b.ReportAllocs()
	b.SetBytes(int64(len(buf)))
	for b.Loop() {
		if _, err := blob.ReadAt(ctx, buf, 0); err != nil {
			b.Fatal(err)
		}
	}
}
