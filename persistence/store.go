package persistence

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"sort"
	"sync"

	"github.com/CowSmiles/tantivy"
)

// StoreWriterOptions configures a StoreWriter.
type StoreWriterOptions struct {
	// Compression selects the block compression algorithm.
	Compression CompressionType

	// BlockSize is the target uncompressed block size in bytes. A block is
	// flushed once the pending documents reach this size, so blocks can
	// exceed it by up to one document.
	BlockSize int

	// Logger receives one entry when the store is finished. Defaults to a
	// noop logger.
	Logger *tantivy.Logger
}

// DefaultStoreWriterOptions returns the default writer configuration.
func DefaultStoreWriterOptions() StoreWriterOptions {
	return StoreWriterOptions{
		Compression: CompressionZSTD,
		BlockSize:   64 * 1024,
		Logger:      tantivy.NoopLogger(),
	}
}

type blockMeta struct {
	bytes uint64
	docs  uint64
}

// StoreWriter streams documents into a store file. Documents are batched
// into blocks, compressed, and written through a running checksum. Close
// finishes the file with the block index and footer.
//
// A StoreWriter is single-writer and must be closed exactly once.
type StoreWriter struct {
	w    io.Writer
	cw   *ChecksumWriter
	opts StoreWriterOptions

	buf         []byte
	docsInBlock uint64
	blocks      []blockMeta
	docCount    uint64
	closed      bool
}

// NewStoreWriter creates a writer and emits the file header.
func NewStoreWriter(w io.Writer, optFns ...func(*StoreWriterOptions)) (*StoreWriter, error) {
	opts := DefaultStoreWriterOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultStoreWriterOptions().BlockSize
	}
	if opts.Logger == nil {
		opts.Logger = tantivy.NoopLogger()
	}

	sw := &StoreWriter{
		w:    w,
		cw:   NewChecksumWriter(w),
		opts: opts,
	}

	header := FileHeader{
		Magic:       MagicNumber,
		Version:     Version,
		Compression: uint8(opts.Compression),
	}
	if err := binary.Write(sw.cw, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("persistence: write header: %w", err)
	}
	return sw, nil
}

// WriteDocument appends one document to the store. Ordinals are assigned in
// call order, starting at zero.
func (sw *StoreWriter) WriteDocument(doc *tantivy.Document) error {
	if sw.closed {
		return ErrWriterClosed
	}
	sw.buf = doc.AppendBinary(sw.buf)
	sw.docsInBlock++
	sw.docCount++
	if len(sw.buf) >= sw.opts.BlockSize {
		return sw.flushBlock()
	}
	return nil
}

// DocCount returns the number of documents written so far.
func (sw *StoreWriter) DocCount() uint64 { return sw.docCount }

func (sw *StoreWriter) flushBlock() error {
	if sw.docsInBlock == 0 {
		return nil
	}
	block, err := compressBlock(sw.buf, sw.opts.Compression)
	if err != nil {
		return fmt.Errorf("persistence: compress block: %w", err)
	}
	if _, err := sw.cw.Write(block); err != nil {
		return fmt.Errorf("persistence: write block: %w", err)
	}
	sw.blocks = append(sw.blocks, blockMeta{bytes: uint64(len(block)), docs: sw.docsInBlock})
	sw.buf = sw.buf[:0]
	sw.docsInBlock = 0
	return nil
}

// Close flushes the pending block and writes the block index and footer.
// The underlying writer is not closed.
func (sw *StoreWriter) Close() error {
	if sw.closed {
		return ErrWriterClosed
	}
	err := sw.finish()
	sw.opts.Logger.LogSerialize(context.Background(), int(sw.docCount), int(sw.cw.BytesWritten())+fileFooterLen, err)
	return err
}

func (sw *StoreWriter) finish() error {
	sw.closed = true

	if err := sw.flushBlock(); err != nil {
		return err
	}

	indexOffset := uint64(sw.cw.BytesWritten())

	index := binary.AppendUvarint(nil, uint64(len(sw.blocks)))
	for _, b := range sw.blocks {
		index = binary.AppendUvarint(index, b.bytes)
		index = binary.AppendUvarint(index, b.docs)
	}
	if _, err := sw.cw.Write(index); err != nil {
		return fmt.Errorf("persistence: write block index: %w", err)
	}

	// The footer is excluded from the checksum, so it bypasses the
	// checksumming writer.
	var footer [fileFooterLen]byte
	binary.LittleEndian.PutUint64(footer[0:], indexOffset)
	binary.LittleEndian.PutUint32(footer[8:], sw.cw.Sum())
	if _, err := sw.w.Write(footer[:]); err != nil {
		return fmt.Errorf("persistence: write footer: %w", err)
	}
	return nil
}

type readerBlock struct {
	off      uint64 // file offset of the compressed block
	length   uint64
	firstDoc uint32
	docs     uint32
}

// StoreReader reads documents from an in-memory or memory-mapped store
// image. Random access decompresses a single block; the most recently used
// block is cached.
//
// A StoreReader is safe for concurrent use.
type StoreReader struct {
	data        []byte
	compression CompressionType
	blocks      []readerBlock
	docCount    uint32

	mu          sync.Mutex
	cachedIdx   int
	cachedBlock []byte
}

// OpenStoreBytes parses and verifies a complete store image. The image is
// retained, not copied; for mapped files it must stay valid for the life of
// the reader.
func OpenStoreBytes(data []byte) (*StoreReader, error) {
	if len(data) < fileHeaderLen+fileFooterLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptStore, len(data))
	}

	footer := data[len(data)-fileFooterLen:]
	indexOffset := binary.LittleEndian.Uint64(footer[0:])
	expected := binary.LittleEndian.Uint32(footer[8:])
	if actual := CalculateChecksum(data[:len(data)-fileFooterLen]); actual != expected {
		return nil, &ChecksumMismatchError{Expected: expected, Actual: actual}
	}

	if magic := binary.LittleEndian.Uint32(data[0:]); magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, magic)
	}
	if version := binary.LittleEndian.Uint32(data[4:]); version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, version)
	}
	compression := CompressionType(data[8])

	if indexOffset < fileHeaderLen || indexOffset > uint64(len(data)-fileFooterLen) {
		return nil, fmt.Errorf("%w: index offset %d", ErrCorruptStore, indexOffset)
	}
	index := data[indexOffset : len(data)-fileFooterLen]

	blockCount, n := binary.Uvarint(index)
	if n <= 0 {
		return nil, fmt.Errorf("%w: block count", ErrCorruptStore)
	}
	index = index[n:]

	// Each index entry is at least two bytes, so a block count larger than
	// the remaining index cannot be honest. Checking here keeps a hostile
	// count from sizing the block table.
	if blockCount > uint64(len(index))/2 {
		return nil, fmt.Errorf("%w: %d blocks in %d index bytes", ErrCorruptStore, blockCount, len(index))
	}

	blocks := make([]readerBlock, 0, blockCount)
	off := uint64(fileHeaderLen)
	var firstDoc uint64
	for i := uint64(0); i < blockCount; i++ {
		length, n := binary.Uvarint(index)
		if n <= 0 {
			return nil, fmt.Errorf("%w: block %d length", ErrCorruptStore, i)
		}
		index = index[n:]
		docs, n := binary.Uvarint(index)
		if n <= 0 {
			return nil, fmt.Errorf("%w: block %d doc count", ErrCorruptStore, i)
		}
		index = index[n:]
		if off+length > indexOffset {
			return nil, fmt.Errorf("%w: block %d overruns index", ErrCorruptStore, i)
		}
		blocks = append(blocks, readerBlock{
			off:      off,
			length:   length,
			firstDoc: uint32(firstDoc),
			docs:     uint32(docs),
		})
		off += length
		firstDoc += docs
	}
	if off != indexOffset {
		return nil, fmt.Errorf("%w: blocks end at %d, index starts at %d", ErrCorruptStore, off, indexOffset)
	}

	return &StoreReader{
		data:        data,
		compression: compression,
		blocks:      blocks,
		docCount:    uint32(firstDoc),
		cachedIdx:   -1,
	}, nil
}

// DocCount returns the number of documents in the store.
func (sr *StoreReader) DocCount() uint32 { return sr.docCount }

// Document returns the document with the given ordinal.
func (sr *StoreReader) Document(ord uint32) (*tantivy.Document, error) {
	if ord >= sr.docCount {
		return nil, fmt.Errorf("%w: ord %d, doc count %d", ErrDocOutOfRange, ord, sr.docCount)
	}
	// Last block whose firstDoc is <= ord.
	i := sort.Search(len(sr.blocks), func(i int) bool {
		return sr.blocks[i].firstDoc > ord
	}) - 1

	raw, err := sr.block(i)
	if err != nil {
		return nil, err
	}

	// Documents inside a block are back to back; skip to the target.
	skip := int(ord - sr.blocks[i].firstDoc)
	for k := 0; k < skip; k++ {
		_, n, err := tantivy.DecodeDocument(raw)
		if err != nil {
			return nil, err
		}
		raw = raw[n:]
	}
	doc, _, err := tantivy.DecodeDocument(raw)
	return doc, err
}

// Documents iterates all documents in ordinal order. A decode error ends
// the iteration with a nil document and the error.
func (sr *StoreReader) Documents() iter.Seq2[*tantivy.Document, error] {
	return func(yield func(*tantivy.Document, error) bool) {
		for i := range sr.blocks {
			raw, err := sr.block(i)
			if err != nil {
				yield(nil, err)
				return
			}
			for k := uint32(0); k < sr.blocks[i].docs; k++ {
				doc, n, err := tantivy.DecodeDocument(raw)
				if err != nil {
					yield(nil, err)
					return
				}
				raw = raw[n:]
				if !yield(doc, nil) {
					return
				}
			}
		}
	}
}

// block returns the decompressed contents of block i, serving repeated
// lookups of the same block from cache.
func (sr *StoreReader) block(i int) ([]byte, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	if sr.cachedIdx == i {
		return sr.cachedBlock, nil
	}
	b := sr.blocks[i]
	raw, err := decompressBlock(sr.data[b.off:b.off+b.length], sr.compression)
	if err != nil {
		return nil, err
	}
	sr.cachedIdx = i
	sr.cachedBlock = raw
	return raw, nil
}
