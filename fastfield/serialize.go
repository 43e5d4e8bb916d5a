package fastfield

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"unsafe"
)

const (
	// magicNumber identifies fast field column files (ASCII: "TFF1")
	magicNumber = 0x54464631
	// formatVersion is the current file format version (v1.0.0)
	formatVersion = 0x00010000

	headerLen = 32
)

var (
	ErrInvalidMagic   = errors.New("fastfield: invalid magic number")
	ErrInvalidVersion = errors.New("fastfield: unsupported version")
	ErrChecksum       = errors.New("fastfield: checksum mismatch")
)

// crcTable is the IEEE polynomial table for checksum computation.
var crcTable = crc32.MakeTable(crc32.IEEE)

// File layout, little-endian throughout:
//
//	magic        uint32
//	version      uint32
//	numDocs      uint32
//	padding      uint32
//	totalValues  uint64
//	offsetsBytes uint64   length of the delta section
//	offset deltas, uvarint encoded
//	values, 8 bytes each
//	crc32        uint32   over everything before it

// WriteTo serializes the index. The offset column is delta encoded: since it
// is non-decreasing, every delta is a non-negative uvarint, which compresses
// the common single-valued case to one byte per document.
func (idx *Index[T]) WriteTo(w io.Writer) (int64, error) {
	deltas := make([]byte, 0, len(idx.offsets))
	prev := uint64(0)
	for _, off := range idx.offsets[1:] {
		deltas = binary.AppendUvarint(deltas, off-prev)
		prev = off
	}

	var header [headerLen]byte
	binary.LittleEndian.PutUint32(header[0:], magicNumber)
	binary.LittleEndian.PutUint32(header[4:], formatVersion)
	binary.LittleEndian.PutUint32(header[8:], idx.NumDocs())
	binary.LittleEndian.PutUint64(header[16:], idx.TotalNumValues())
	binary.LittleEndian.PutUint64(header[24:], uint64(len(deltas)))

	h := crc32.New(crcTable)
	cw := io.MultiWriter(w, h)

	var written int64
	n, err := cw.Write(header[:])
	written += int64(n)
	if err != nil {
		return written, err
	}
	n, err = cw.Write(deltas)
	written += int64(n)
	if err != nil {
		return written, err
	}

	var buf [8]byte
	for i := range idx.values {
		binary.LittleEndian.PutUint64(buf[:], valueBits(idx.values[i]))
		n, err = cw.Write(buf[:])
		written += int64(n)
		if err != nil {
			return written, err
		}
	}

	binary.LittleEndian.PutUint32(buf[:4], h.Sum32())
	n, err = w.Write(buf[:4])
	written += int64(n)
	return written, err
}

// ReadFrom deserializes an index written by WriteTo, verifying the checksum.
// It consumes exactly the serialized bytes, so columns can be concatenated
// in one stream.
func ReadFrom[T Numeric](r io.Reader) (*Index[T], int64, error) {
	h := cru32reader{r: r, hash: crc32.New(crcTable)}

	var header [headerLen]byte
	if _, err := io.ReadFull(&h, header[:]); err != nil {
		return nil, h.n, err
	}
	if magic := binary.LittleEndian.Uint32(header[0:]); magic != magicNumber {
		return nil, h.n, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, magic)
	}
	if version := binary.LittleEndian.Uint32(header[4:]); version != formatVersion {
		return nil, h.n, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, version)
	}
	numDocs := binary.LittleEndian.Uint32(header[8:])
	totalValues := binary.LittleEndian.Uint64(header[16:])
	deltaBytes := binary.LittleEndian.Uint64(header[24:])

	// The header sizes are untrusted until the checksum verifies, which is
	// only known at the very end. Every delta costs at least one byte and
	// at most MaxVarintLen64, so both bounds are checked before anything
	// is sized off deltaBytes.
	if deltaBytes < uint64(numDocs) || deltaBytes > uint64(numDocs)*binary.MaxVarintLen64 {
		return nil, h.n, fmt.Errorf("%w: %d delta bytes for %d documents", ErrOffsetColumn, deltaBytes, numDocs)
	}
	deltas, err := readN(&h, deltaBytes)
	if err != nil {
		return nil, h.n, err
	}
	offsets := make([]uint64, 1, uint64(numDocs)+1)
	acc := uint64(0)
	for i := uint32(0); i < numDocs; i++ {
		d, n := binary.Uvarint(deltas)
		if n <= 0 {
			return nil, h.n, fmt.Errorf("%w: truncated delta section", ErrOffsetColumn)
		}
		deltas = deltas[n:]
		acc += d
		offsets = append(offsets, acc)
	}
	if acc != totalValues {
		return nil, h.n, fmt.Errorf("%w: sentinel %d, header says %d values", ErrOffsetColumn, acc, totalValues)
	}

	// totalValues derives from attacker-writable deltas, so the value
	// column grows with the bytes actually read instead of being sized up
	// front.
	values := make([]T, 0, min(totalValues, 1<<16))
	var buf [8]byte
	for i := uint64(0); i < totalValues; i++ {
		if _, err := io.ReadFull(&h, buf[:]); err != nil {
			return nil, h.n, err
		}
		values = append(values, valueFromBits[T](binary.LittleEndian.Uint64(buf[:])))
	}

	sum := h.hash.Sum32()
	if _, err := io.ReadFull(r, buf[:4]); err != nil {
		return nil, h.n, err
	}
	h.n += 4
	if expected := binary.LittleEndian.Uint32(buf[:4]); expected != sum {
		return nil, h.n, fmt.Errorf("%w: expected 0x%08x, got 0x%08x", ErrChecksum, expected, sum)
	}

	idx, err := New(offsets, values)
	return idx, h.n, err
}

// readN reads exactly n bytes from r, growing the buffer in bounded steps
// so a corrupt length cannot force a giant allocation before the stream
// runs dry.
func readN(r io.Reader, n uint64) ([]byte, error) {
	const step = 1 << 20
	buf := make([]byte, 0, min(n, step))
	for uint64(len(buf)) < n {
		grow := min(n-uint64(len(buf)), step)
		off := len(buf)
		buf = append(buf, make([]byte, grow)...)
		if _, err := io.ReadFull(r, buf[off:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// cru32reader counts bytes and feeds them through a CRC32 hash.
type cru32reader struct {
	r    io.Reader
	hash hash.Hash32
	n    int64
}

func (c *cru32reader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.n += int64(n)
		_, _ = c.hash.Write(p[:n])
	}
	return n, err
}

// valueBits reinterprets an 8-byte numeric as its raw bit pattern.
func valueBits[T Numeric](v T) uint64 {
	return *(*uint64)(unsafe.Pointer(&v))
}

func valueFromBits[T Numeric](bits uint64) T {
	return *(*T)(unsafe.Pointer(&bits))
}
