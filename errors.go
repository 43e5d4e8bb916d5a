package tantivy

import (
	"errors"
	"fmt"
)

var (
	// ErrArenaOverflow is returned when an encoded value would need an arena
	// offset beyond the 3-byte address space (16 MiB per document).
	ErrArenaOverflow = errors.New("tantivy: value exceeds the 16MB document arena")

	// ErrFieldIDOverflow is returned when a field id does not fit into the
	// 16-bit slot of the root field table.
	ErrFieldIDOverflow = errors.New("tantivy: field id exceeds 65535")

	// ErrInvalidInput is returned by ingestion helpers when an external value
	// cannot be converted into the document value model.
	ErrInvalidInput = errors.New("tantivy: invalid input value")
)

// MalformedDataError indicates a truncated buffer or an invalid length prefix
// encountered while decoding arena data. It is local to a single extraction;
// sibling fields of the same document remain decodable.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type MalformedDataError struct {
	Offset uint32
	Reason string
	cause  error
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("tantivy: malformed data at offset %d: %s", e.Offset, e.Reason)
}

func (e *MalformedDataError) Unwrap() error { return e.cause }

// UnknownTypeTagError indicates a type tag byte outside the closed 0-12
// enumeration. It always means the buffer does not hold a value address at
// the decoded position.
type UnknownTypeTagError struct {
	Tag byte
}

func (e *UnknownTypeTagError) Error() string {
	return fmt.Sprintf("tantivy: unknown value type tag %d", e.Tag)
}

// TypeMismatchError is returned by typed accessors when the stored value has
// a different type than the one requested.
type TypeMismatchError struct {
	Expected ValueType
	Actual   ValueType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("tantivy: type mismatch: expected %s, got %s", e.Expected, e.Actual)
}
