package fastfield

// Builder accumulates per-document value lists and produces an immutable
// Index. Documents must be added in ordinal order; AddDoc for ordinal d
// freezes the columns for all ordinals <= d.
//
// A Builder is single-writer; the produced Index is independent of it.
type Builder[T Numeric] struct {
	offsets []uint64
	values  []T
}

// NewBuilder creates an empty builder.
func NewBuilder[T Numeric]() *Builder[T] {
	return &Builder[T]{offsets: []uint64{0}}
}

// AddDoc appends one document with the given values. A call with no values
// records an empty document.
func (b *Builder[T]) AddDoc(values ...T) {
	b.values = append(b.values, values...)
	b.offsets = append(b.offsets, uint64(len(b.values)))
}

// NumDocs returns the number of documents added so far.
func (b *Builder[T]) NumDocs() uint32 {
	return uint32(len(b.offsets) - 1)
}

// Build seals the columns into an Index. The builder must not be reused
// afterwards.
func (b *Builder[T]) Build() (*Index[T], error) {
	return New(b.offsets, b.values)
}
