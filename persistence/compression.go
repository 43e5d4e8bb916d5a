package persistence

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType selects the block compression algorithm.
type CompressionType uint8

const (
	// CompressionNone stores blocks raw.
	CompressionNone CompressionType = 0
	// CompressionLZ4 trades ratio for decode speed; good for hot stores.
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD compresses harder; good for cold or remote stores.
	CompressionZSTD CompressionType = 2
)

// Each block starts with two little-endian uint32s: the uncompressed size
// and the compressed size. A compressed size of zero marks a raw block.
const blockHeaderLen = 8

// maxBlockPayload bounds the uncompressed size a block header may claim.
// Blocks flush around the configured block size plus at most one document,
// so anything past this is a corrupt or hostile header, not a real block.
const maxBlockPayload = 64 << 20

var (
	zstdEncoders = sync.Pool{New: func() any {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		return enc
	}}
	zstdDecoders = sync.Pool{New: func() any {
		dec, _ := zstd.NewReader(nil)
		return dec
	}}
)

// compressBlock frames data with the block header, compressing with the
// given algorithm. Blocks that barely shrink are stored raw so readers
// never pay decode cost for a pointless compression.
func compressBlock(data []byte, ct CompressionType) ([]byte, error) {
	var compressed []byte
	switch ct {
	case CompressionLZ4:
		bound := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, bound, nil)
		if err != nil {
			return nil, err
		}
		// n == 0 means incompressible; fall through to the raw path.
		compressed = bound[:n]
	case CompressionZSTD:
		enc := zstdEncoders.Get().(*zstd.Encoder)
		compressed = enc.EncodeAll(data, nil)
		zstdEncoders.Put(enc)
	}

	payload := compressed
	compressedSize := uint32(len(compressed))
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		payload = data
		compressedSize = 0
	}

	block := make([]byte, blockHeaderLen+len(payload))
	binary.LittleEndian.PutUint32(block[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(block[4:], compressedSize)
	copy(block[blockHeaderLen:], payload)
	return block, nil
}

// decompressBlock undoes compressBlock. The returned slice aliases data for
// raw blocks.
func decompressBlock(data []byte, ct CompressionType) ([]byte, error) {
	if len(data) < blockHeaderLen {
		return nil, errors.New("persistence: block too small for header")
	}
	rawSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])
	if rawSize > maxBlockPayload {
		return nil, errors.New("persistence: block size exceeds limit")
	}

	if compressedSize == 0 {
		if uint64(len(data)) < blockHeaderLen+uint64(rawSize) {
			return nil, errors.New("persistence: raw block truncated")
		}
		return data[blockHeaderLen : blockHeaderLen+rawSize], nil
	}
	if uint64(len(data)) < blockHeaderLen+uint64(compressedSize) {
		return nil, errors.New("persistence: compressed block truncated")
	}
	payload := data[blockHeaderLen : blockHeaderLen+compressedSize]

	switch ct {
	case CompressionLZ4:
		out := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, err
		}
		if uint32(n) != rawSize {
			return nil, errors.New("persistence: decompressed size mismatch")
		}
		return out, nil
	case CompressionZSTD:
		dec := zstdDecoders.Get().(*zstd.Decoder)
		out, err := dec.DecodeAll(payload, make([]byte, 0, rawSize))
		zstdDecoders.Put(dec)
		if err != nil {
			return nil, err
		}
		if uint32(len(out)) != rawSize {
			return nil, errors.New("persistence: decompressed size mismatch")
		}
		return out, nil
	default:
		return nil, errors.New("persistence: unknown compression type")
	}
}
