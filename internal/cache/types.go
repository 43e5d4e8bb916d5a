package cache

import "context"

// CacheKind separates key spaces so different block sources never collide.
type CacheKind uint8

const (
	CacheKindUnknown  CacheKind = iota
	CacheKindDocBlock           // compressed document store blocks
	CacheKindColumn             // fast field column data
	CacheKindBlob               // generic blob store blocks
)

// CacheKey identifies one cached block. Keys must be stable across the
// process lifetime: the same block always maps to the same key.
type CacheKey struct {
	Kind CacheKind
	// FileID is an optional numeric identifier, such as a store generation.
	FileID uint64
	// Offset is a logical block identifier (byte offset or block index).
	Offset uint64
	// Path names the source file. Blob caching uses it when no FileID
	// exists.
	Path string
}

// BlockCache is a byte-oriented cache for immutable blocks. Returned slices
// must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block, ok=false on a miss.
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	// Set caches a block. The implementation may retain b, so the caller
	// must not mutate it afterwards.
	Set(ctx context.Context, key CacheKey, b []byte)
	// Invalidate removes every entry matching the predicate.
	Invalidate(predicate func(key CacheKey) bool)
	// Close releases cache resources.
	Close() error
	// Stats reports hit and miss counters.
	Stats() (hits, misses int64)
}
