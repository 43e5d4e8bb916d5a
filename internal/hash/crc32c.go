package hash

import (
	"hash"
	"hash/crc32"
)

// The Castagnoli table is shared by every caller; crc32.MakeTable caches
// internally but a package var keeps the lookup out of hot paths.
var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C returns the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

// NewCRC32C returns a streaming CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(castagnoli)
}
