package fastfield

import (
	"errors"
	"fmt"
)

// Numeric constrains the value column to the 8-byte numeric types fast
// fields support.
type Numeric interface {
	~uint64 | ~int64 | ~float64
}

var (
	// ErrOffsetColumn is returned when an offset column is rejected: wrong
	// length, decreasing entries, or a sentinel that disagrees with the
	// value column.
	ErrOffsetColumn = errors.New("fastfield: invalid offset column")

	// ErrDocOutOfRange is returned for a document ordinal >= NumDocs.
	ErrDocOutOfRange = errors.New("fastfield: doc out of range")
)

// Index is an immutable multi-valued fast field.
//
// Invariants, established at construction and relied on by every method:
// len(offsets) == NumDocs+1, offsets[0] == 0, offsets is non-decreasing,
// and offsets[NumDocs] == uint64(len(values)).
//
// An Index is safe for concurrent readers.
type Index[T Numeric] struct {
	offsets []uint64
	values  []T
}

// New builds an index from raw columns, validating the offset invariants.
// The slices are retained, not copied.
func New[T Numeric](offsets []uint64, values []T) (*Index[T], error) {
	if len(offsets) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrOffsetColumn)
	}
	if offsets[0] != 0 {
		return nil, fmt.Errorf("%w: first entry %d, want 0", ErrOffsetColumn, offsets[0])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return nil, fmt.Errorf("%w: entry %d decreases", ErrOffsetColumn, i)
		}
	}
	if last := offsets[len(offsets)-1]; last != uint64(len(values)) {
		return nil, fmt.Errorf("%w: sentinel %d, value column holds %d", ErrOffsetColumn, last, len(values))
	}
	return &Index[T]{offsets: offsets, values: values}, nil
}

// NumDocs returns the number of documents covered by the index.
func (idx *Index[T]) NumDocs() uint32 {
	return uint32(len(idx.offsets) - 1)
}

// TotalNumValues returns the length of the value column.
func (idx *Index[T]) TotalNumValues() uint64 {
	return idx.offsets[len(idx.offsets)-1]
}

// Range returns the half-open value-index range for the document.
func (idx *Index[T]) Range(doc uint32) (start, end uint64, err error) {
	if int(doc) >= len(idx.offsets)-1 {
		return 0, 0, fmt.Errorf("%w: doc %d, num docs %d", ErrDocOutOfRange, doc, idx.NumDocs())
	}
	return idx.offsets[doc], idx.offsets[doc+1], nil
}

// Values returns the document's values as a subslice of the value column.
// The result aliases the column and must not be mutated. A document with no
// values yields an empty slice.
func (idx *Index[T]) Values(doc uint32) ([]T, error) {
	start, end, err := idx.Range(doc)
	if err != nil {
		return nil, err
	}
	return idx.values[start:end:end], nil
}

// NumValues returns how many values the document holds.
func (idx *Index[T]) NumValues(doc uint32) (uint64, error) {
	start, end, err := idx.Range(doc)
	if err != nil {
		return 0, err
	}
	return end - start, nil
}

// Min returns the smallest value in the column. It aggregates over every
// stored value regardless of document liveness; intersect with a liveness
// set separately. ok is false when the column is empty.
func (idx *Index[T]) Min() (min T, ok bool) {
	if len(idx.values) == 0 {
		return min, false
	}
	min = idx.values[0]
	for _, v := range idx.values[1:] {
		if v < min {
			min = v
		}
	}
	return min, true
}

// Max returns the largest value in the column, with the same liveness
// caveat as Min.
func (idx *Index[T]) Max() (max T, ok bool) {
	if len(idx.values) == 0 {
		return max, false
	}
	max = idx.values[0]
	for _, v := range idx.values[1:] {
		if v > max {
			max = v
		}
	}
	return max, true
}
