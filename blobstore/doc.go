// Package blobstore provides storage abstraction for immutable index files.
//
// BlobStore is the interface for reading and writing data blobs (document
// stores, fast field columns). Implementations must be safe for concurrent
// use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with mmap support
//   - MemoryStore: In-memory store for testing
//   - CachingStore: Block-level read cache over another store
//   - s3.Store: Amazon S3 with range reads and parallel uploads
//   - minio.Store: MinIO and S3-compatible object stores
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends. For
// cloud backends, ReadRange matters: readers fetch single compressed blocks
// out of large files, and a ranged GET avoids downloading the rest.
package blobstore
