package fastfield

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// DocSet implements a 32-bit Roaring Bitmap over document ordinals.
// It wraps the official roaring implementation.
// Used to combine position translations with other per-document filters.
type DocSet struct {
	rb *roaring.Bitmap
}

// NewDocSet creates a new empty doc set.
func NewDocSet() *DocSet {
	return &DocSet{
		rb: roaring.New(),
	}
}

// Add adds a document ordinal to the set.
func (s *DocSet) Add(doc uint32) {
	s.rb.Add(doc)
}

// AddMany adds a batch of document ordinals to the set.
func (s *DocSet) AddMany(docs []uint32) {
	s.rb.AddMany(docs)
}

// Contains checks if a document ordinal is in the set.
func (s *DocSet) Contains(doc uint32) bool {
	return s.rb.Contains(doc)
}

// IsEmpty returns true if the set is empty.
func (s *DocSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Cardinality returns the number of documents in the set.
func (s *DocSet) Cardinality() uint64 {
	return s.rb.GetCardinality()
}

// Clone returns a deep copy of the set.
func (s *DocSet) Clone() *DocSet {
	return &DocSet{
		rb: s.rb.Clone(),
	}
}

// And computes the intersection of two sets.
func (s *DocSet) And(other *DocSet) {
	s.rb.And(other.rb)
}

// Or computes the union of two sets.
func (s *DocSet) Or(other *DocSet) {
	s.rb.Or(other.rb)
}

// Iterator returns an iterator over the set in ascending order.
func (s *DocSet) Iterator() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// ToArray returns the documents in ascending order.
func (s *DocSet) ToArray() []uint32 {
	return s.rb.ToArray()
}

// PositionsToDocSet translates ascending value-column positions into a
// DocSet. Equivalent to PositionsToDocIDs followed by AddMany.
func (idx *Index[T]) PositionsToDocSet(positions []uint64) *DocSet {
	set := NewDocSet()
	docs := idx.PositionsToDocIDs(positions, nil)
	if len(docs) > 0 {
		set.rb.AddMany(docs)
	}
	return set
}

// DocIDsInValueRange returns the set of documents holding at least one
// value in [min, max]. The value column is scanned for matching positions,
// which are then translated through the offset column.
func (idx *Index[T]) DocIDsInValueRange(min, max T) *DocSet {
	var positions []uint64
	for pos, v := range idx.values {
		if v >= min && v <= max {
			positions = append(positions, uint64(pos))
		}
	}
	return idx.PositionsToDocSet(positions)
}
