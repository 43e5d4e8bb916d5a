package persistence

import "errors"

const (
	// MagicNumber identifies document store files (ASCII: "TDS1")
	MagicNumber = 0x54445331
	// Version is the current file format version (v1.0.0)
	Version = 0x00010000
)

var (
	ErrInvalidMagic   = errors.New("persistence: invalid magic number")
	ErrInvalidVersion = errors.New("persistence: unsupported version")
	ErrCorruptStore   = errors.New("persistence: corrupt store file")
	ErrDocOutOfRange  = errors.New("persistence: document ordinal out of range")
	ErrWriterClosed   = errors.New("persistence: store writer is closed")
)

// FileHeader is the 16-byte header at the start of every store file.
// Little-endian, written with encoding/binary. Document and block counts
// live in the block index so the writer can stream to a plain io.Writer.
type FileHeader struct {
	Magic       uint32
	Version     uint32
	Compression uint8
	Padding     [7]byte
}

const fileHeaderLen = 16

// The block index section, referenced by the footer:
//
//	uvarint blockCount
//	blockCount times: uvarint blockBytes, uvarint docCount
//
// The footer closes the store:
//
//	indexOffset uint64
//	checksum    uint32   CRC32 over everything before the footer
const fileFooterLen = 12
