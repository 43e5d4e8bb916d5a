// Package hash provides the checksum primitives shared by the on-disk
// formats.
//
// Everything uses CRC32-Castagnoli (CRC32C). The Castagnoli polynomial gets
// hardware support on x86 (SSE4.2) and ARM (CRC extension) and detects
// burst errors up to 32 bits, which is why iSCSI, RocksDB, and S3 settled
// on it too.
//
// One-shot:
//
//	sum := hash.CRC32C(data)
//
// Streaming:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk)
//	sum := h.Sum32()
//
// The Castagnoli table is built once at package init; Go's crc32 package
// picks the hardware path automatically when the CPU has it.
package hash
