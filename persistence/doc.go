// Package persistence provides binary serialization for document stores.
//
// A store file holds a sequence of compressed blocks, each carrying a batch
// of compact documents, followed by a block index and a CRC32 footer. Blocks
// are the unit of compression and of random access: fetching one document
// decompresses only the block that contains it.
package persistence
