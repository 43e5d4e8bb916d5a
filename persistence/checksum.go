package persistence

import (
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// Store files carry a CRC32 (IEEE) over everything before the footer. The
// checksum catches storage and transfer corruption; it is not a defense
// against tampering.

// CalculateChecksum returns the CRC32 of data using the IEEE polynomial.
func CalculateChecksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// ChecksumWriter tees writes into a running CRC32 and counts bytes, so the
// store writer can emit its footer without buffering the whole file.
type ChecksumWriter struct {
	w    io.Writer
	hash hash.Hash32
	n    int64
}

func NewChecksumWriter(w io.Writer) *ChecksumWriter {
	return &ChecksumWriter{w: w, hash: crc32.NewIEEE()}
}

func (cw *ChecksumWriter) Write(p []byte) (int, error) {
	// hash.Hash.Write never fails.
	cw.hash.Write(p)
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// Sum returns the checksum of everything written so far.
func (cw *ChecksumWriter) Sum() uint32 {
	return cw.hash.Sum32()
}

// BytesWritten returns the byte count so far.
func (cw *ChecksumWriter) BytesWritten() int64 {
	return cw.n
}

// ChecksumMismatchError reports a store file whose content hash disagrees
// with its footer.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("persistence: checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// IsChecksumMismatch reports whether err wraps a ChecksumMismatchError.
func IsChecksumMismatch(err error) bool {
	var mismatch *ChecksumMismatchError
	return errors.As(err, &mismatch)
}
