// Package tantivy implements the compact in-memory document representation
// used by the storage layer of a search engine.
//
// # Document Model
//
// A Document encodes heterogeneous, arbitrarily nested values (scalars, byte
// blobs, arrays, objects) into a single contiguous append-only byte arena.
// Every encoded value is identified by a 4-byte tagged address: one type tag
// byte plus a 3-byte big-endian arena offset. The 3-byte offset caps a single
// document at 16 MiB of encoded payload, in exchange for very dense pointers
// in the root field table and in nested position tables.
//
// Construction is strictly append-only:
//
//	doc := tantivy.NewDocument()
//	doc.AddText(titleField, "Of Mice and Men")
//	doc.AddU64(countField, 42)
//
// Decoding is lazy. Extracted values are borrowed views over the arena and
// arrays/objects are walked through forward-only iterators that never
// materialize siblings ahead of need:
//
//	v, _ := doc.GetFirst(jsonField)
//	it, _ := v.Object()
//	for {
//	    key, val, ok := it.Next()
//	    if !ok {
//	        break
//	    }
//	    _ = key
//	    _ = val
//	}
//
// # Concurrency
//
// Construction is single-writer. Once populated, a Document is an immutable
// value that may be shared freely between goroutines; any number of
// independent iterators can decode it concurrently since decoding never
// mutates the arena.
//
// # Related Packages
//
//   - fastfield: columnar multi-valued per-document value index
//   - persistence: binary serialization of documents and columns
//   - blobstore: local, in-memory, S3 and MinIO storage for serialized segments
//   - codec: JSON codecs used for ingestion and canonical export
package tantivy
