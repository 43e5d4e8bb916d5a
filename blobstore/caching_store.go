package blobstore

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/CowSmiles/tantivy/internal/cache"
)

// fetchConcurrency caps parallel backend reads per fill so a wide cold read
// cannot exhaust file descriptors or trip backend rate limits.
const fetchConcurrency = 16

// CachingStore wraps a BlobStore with a block-granular read cache. Reads are
// split on fixed block boundaries and served from the cache; contiguous runs
// of missing blocks are fetched from the backend in one request each.
//
// Writes pass through uncached. Store files are written once and never
// mutated in place, so only Put and Delete invalidate.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingStore creates a caching wrapper around inner. blockSize defaults
// to 4KB when not positive.
func NewCachingStore(inner BlobStore, blockCache cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = 4096
	}
	return &CachingStore{inner: inner, cache: blockCache, blockSize: blockSize}
}

func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{inner: b, cache: s.cache, name: name, blockSize: s.blockSize}, nil
}

func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	return s.inner.Create(ctx, name)
}

func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.dropBlob(name)
	return s.inner.Put(ctx, name, data)
}

func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.dropBlob(name)
	return s.inner.Delete(ctx, name)
}

func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) dropBlob(name string) {
	s.cache.Invalidate(func(key cache.CacheKey) bool {
		return key.Kind == cache.CacheKindBlob && key.Path == name
	})
}

// CachingBlob serves reads for one blob through the block cache.
type CachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *CachingBlob) Close() error { return b.inner.Close() }

func (b *CachingBlob) Size() int64 { return b.inner.Size() }

func (b *CachingBlob) blockKey(idx int64) cache.CacheKey {
	return cache.CacheKey{Kind: cache.CacheKindBlob, Path: b.name, Offset: uint64(idx)}
}

func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	first := off / b.blockSize
	last := (off + int64(len(p)) - 1) / b.blockSize
	if err := b.fillCache(ctx, first, last); err != nil {
		return 0, err
	}

	total := 0
	for idx := first; idx <= last; idx++ {
		block, err := b.fetchBlock(ctx, idx)
		if err != nil {
			return total, err
		}

		// Intersect the block's byte range with the request window.
		blockOff := idx * b.blockSize
		lo := max(blockOff, off)
		hi := min(blockOff+b.blockSize, off+int64(len(p)))
		src := lo - blockOff
		if src >= int64(len(block)) {
			// Short final block: the file ends inside this block.
			break
		}
		total += copy(p[lo-off:hi-off], block[src:])
	}
	return total, nil
}

// blockRun is a contiguous range of block indexes missing from the cache.
type blockRun struct {
	start int64
	count int64
}

// fillCache loads every block in [first, last] that the cache is missing,
// one backend read per contiguous run.
func (b *CachingBlob) fillCache(ctx context.Context, first, last int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var runs []blockRun
	for idx := first; idx <= last; idx++ {
		if _, ok := b.cache.Get(ctx, b.blockKey(idx)); ok {
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].start+runs[n-1].count == idx {
			runs[n-1].count++
		} else {
			runs = append(runs, blockRun{start: idx, count: 1})
		}
	}
	if len(runs) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, run := range runs {
		g.Go(func() error { return b.fetchRun(ctx, run) })
	}
	return g.Wait()
}

// fetchRun reads one run of blocks from the backend and populates the cache
// with a per-block copy, so the cache never pins the whole run buffer.
func (b *CachingBlob) fetchRun(ctx context.Context, run blockRun) error {
	start := run.start * b.blockSize
	size := run.count * b.blockSize
	if fileSize := b.Size(); start >= fileSize {
		return nil
	} else if start+size > fileSize {
		size = fileSize - start
	}

	buf := make([]byte, size)
	n, err := b.inner.ReadAt(ctx, buf, start)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	for i := int64(0); i < run.count; i++ {
		lo := i * b.blockSize
		if lo >= int64(n) {
			break
		}
		hi := min(lo+b.blockSize, int64(n))
		block := make([]byte, hi-lo)
		copy(block, buf[lo:hi])
		b.cache.Set(ctx, b.blockKey(run.start+i), block)
	}
	return nil
}

// fetchBlock returns one block, from the cache when possible.
func (b *CachingBlob) fetchBlock(ctx context.Context, idx int64) ([]byte, error) {
	key := b.blockKey(idx)
	if block, ok := b.cache.Get(ctx, key); ok {
		return block, nil
	}

	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(ctx, buf, idx*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	block := buf[:n]
	if n > 0 {
		b.cache.Set(ctx, key, block)
	}
	return block, nil
}

// ReadRange serves ranged reads by looping ReadAt through the block cache.
func (b *CachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	return io.NopCloser(&cachedRangeReader{blob: b, ctx: ctx, off: off, limit: off + length}), nil
}

type cachedRangeReader struct {
	blob  *CachingBlob
	ctx   context.Context
	off   int64
	limit int64
}

func (r *cachedRangeReader) Read(p []byte) (int, error) {
	if r.off >= r.limit {
		return 0, io.EOF
	}
	if remaining := r.limit - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	return n, err
}
