package tantivy

import (
	"encoding/binary"
	"iter"
	"math"
	"net/netip"
	"time"
	"unsafe"

	"github.com/CowSmiles/tantivy/codec"
)

// DocValue is a lazily decoded value inside a document arena. It carries the
// arena slice plus a tagged address; payload bytes are only touched when a
// typed accessor is called. Strings and byte slices returned by accessors
// alias the arena and stay valid for the lifetime of the Document.
type DocValue struct {
	data []byte
	addr valueAddr
}

// Type returns the value's type tag.
func (v DocValue) Type() ValueType { return v.addr.typ }

// IsNull reports whether the value is null.
func (v DocValue) IsNull() bool { return v.addr.typ == TypeNull }

// Str returns the text payload. The returned string aliases the arena.
func (v DocValue) Str() (string, error) {
	if v.addr.typ != TypeStr {
		return "", &TypeMismatchError{Expected: TypeStr, Actual: v.addr.typ}
	}
	return v.borrowStr()
}

// Facet returns the encoded facet path.
func (v DocValue) Facet() (string, error) {
	if v.addr.typ != TypeFacet {
		return "", &TypeMismatchError{Expected: TypeFacet, Actual: v.addr.typ}
	}
	return v.borrowStr()
}

// Bytes returns the blob payload. The returned slice aliases the arena and
// must not be mutated.
func (v DocValue) Bytes() ([]byte, error) {
	if v.addr.typ != TypeBytes {
		return nil, &TypeMismatchError{Expected: TypeBytes, Actual: v.addr.typ}
	}
	return readPrefixed(v.data, v.addr.val.uint32())
}

// U64 returns the unsigned integer payload.
func (v DocValue) U64() (uint64, error) {
	if v.addr.typ != TypeU64 {
		return 0, &TypeMismatchError{Expected: TypeU64, Actual: v.addr.typ}
	}
	return readFixed64(v.data, v.addr.val.uint32())
}

// I64 returns the signed integer payload.
func (v DocValue) I64() (int64, error) {
	if v.addr.typ != TypeI64 {
		return 0, &TypeMismatchError{Expected: TypeI64, Actual: v.addr.typ}
	}
	u, err := readFixed64(v.data, v.addr.val.uint32())
	return int64(u), err
}

// F64 returns the float payload.
func (v DocValue) F64() (float64, error) {
	if v.addr.typ != TypeF64 {
		return 0, &TypeMismatchError{Expected: TypeF64, Actual: v.addr.typ}
	}
	u, err := readFixed64(v.data, v.addr.val.uint32())
	return math.Float64frombits(u), err
}

// Bool returns the boolean payload. The value lives in the address itself;
// no arena bytes are read.
func (v DocValue) Bool() (bool, error) {
	if v.addr.typ != TypeBool {
		return false, &TypeMismatchError{Expected: TypeBool, Actual: v.addr.typ}
	}
	return v.addr.val.uint32() != 0, nil
}

// Date returns the date payload in UTC with nanosecond precision.
func (v DocValue) Date() (time.Time, error) {
	if v.addr.typ != TypeDate {
		return time.Time{}, &TypeMismatchError{Expected: TypeDate, Actual: v.addr.typ}
	}
	u, err := readFixed64(v.data, v.addr.val.uint32())
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, int64(u)).UTC(), nil
}

// IPAddr returns the IP address payload.
func (v DocValue) IPAddr() (netip.Addr, error) {
	if v.addr.typ != TypeIPAddr {
		return netip.Addr{}, &TypeMismatchError{Expected: TypeIPAddr, Actual: v.addr.typ}
	}
	at := v.addr.val.uint32()
	b, err := readFixed(v.data, at, 16)
	if err != nil {
		return netip.Addr{}, err
	}
	var b16 [16]byte
	copy(b16[:], b)
	return netip.AddrFrom16(b16), nil
}

// PreTokenized decodes the pre-tokenized text payload.
func (v DocValue) PreTokenized() (*PreTokenizedText, error) {
	if v.addr.typ != TypePreTokStr {
		return nil, &TypeMismatchError{Expected: TypePreTokStr, Actual: v.addr.typ}
	}
	payload, err := readPrefixed(v.data, v.addr.val.uint32())
	if err != nil {
		return nil, err
	}
	var t PreTokenizedText
	if err := codec.Default.Unmarshal(payload, &t); err != nil {
		return nil, &MalformedDataError{
			Offset: v.addr.val.uint32(),
			Reason: "pre-tokenized text payload",
			cause:  err,
		}
	}
	return &t, nil
}

// Array returns a forward-only iterator over the array elements.
func (v DocValue) Array() (*ArrayIter, error) {
	if v.addr.typ != TypeArray {
		return nil, &TypeMismatchError{Expected: TypeArray, Actual: v.addr.typ}
	}
	positions, err := readPrefixed(v.data, v.addr.val.uint32())
	if err != nil {
		return nil, err
	}
	return &ArrayIter{data: v.data, positions: positions}, nil
}

// Object returns a forward-only iterator over the object entries, in
// insertion order.
func (v DocValue) Object() (*ObjectIter, error) {
	if v.addr.typ != TypeObject {
		return nil, &TypeMismatchError{Expected: TypeObject, Actual: v.addr.typ}
	}
	positions, err := readPrefixed(v.data, v.addr.val.uint32())
	if err != nil {
		return nil, err
	}
	return &ObjectIter{data: v.data, positions: positions}, nil
}

func (v DocValue) borrowStr() (string, error) {
	b, err := readPrefixed(v.data, v.addr.val.uint32())
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}
	return unsafe.String(&b[0], len(b)), nil
}

// ArrayIter walks an array's position table. Call Next until it returns
// false, then check Err to distinguish exhaustion from corruption.
type ArrayIter struct {
	data      []byte
	positions []byte
	err       error
}

// Next returns the next element. The second result is false once the array
// is exhausted or an error occurred.
func (it *ArrayIter) Next() (DocValue, bool) {
	if it.err != nil || len(it.positions) == 0 {
		return DocValue{}, false
	}
	pos, n := binary.Uvarint(it.positions)
	if n <= 0 {
		it.err = &MalformedDataError{Reason: "array position table varint"}
		return DocValue{}, false
	}
	it.positions = it.positions[n:]
	addr, err := decodeValueAddr(it.data, uint32(pos))
	if err != nil {
		it.err = err
		return DocValue{}, false
	}
	return DocValue{data: it.data, addr: addr}, true
}

// Err returns the first decoding error encountered, if any.
func (it *ArrayIter) Err() error { return it.err }

// ObjectIter walks an object's position table, yielding key/value pairs in
// insertion order. Duplicate keys are preserved as written.
type ObjectIter struct {
	data      []byte
	positions []byte
	err       error
}

// Next returns the next entry. The second result is false once the object is
// exhausted or an error occurred.
func (it *ObjectIter) Next() (string, DocValue, bool) {
	if it.err != nil || len(it.positions) == 0 {
		return "", DocValue{}, false
	}
	pos, n := binary.Uvarint(it.positions)
	if n <= 0 {
		it.err = &MalformedDataError{Reason: "object position table varint"}
		return "", DocValue{}, false
	}
	it.positions = it.positions[n:]
	keyAddr, err := decodeValueAddr(it.data, uint32(pos))
	if err != nil {
		it.err = err
		return "", DocValue{}, false
	}
	valAddr, err := decodeValueAddr(it.data, uint32(pos)+valueAddrLen)
	if err != nil {
		it.err = err
		return "", DocValue{}, false
	}
	key, err := DocValue{data: it.data, addr: keyAddr}.Str()
	if err != nil {
		it.err = err
		return "", DocValue{}, false
	}
	return key, DocValue{data: it.data, addr: valAddr}, true
}

// Err returns the first decoding error encountered, if any.
func (it *ObjectIter) Err() error { return it.err }

// GetFirst returns the first value added for the field.
func (d *Document) GetFirst(field Field) (DocValue, bool) {
	fid := field.ID()
	if fid > maxFieldID {
		return DocValue{}, false
	}
	for _, fv := range d.fieldValues {
		if uint32(fv.field) == fid {
			return DocValue{data: d.data, addr: fv.value}, true
		}
	}
	return DocValue{}, false
}

// GetAll returns all values added for the field, in insertion order.
func (d *Document) GetAll(field Field) []DocValue {
	fid := field.ID()
	if fid > maxFieldID {
		return nil
	}
	var out []DocValue
	for _, fv := range d.fieldValues {
		if uint32(fv.field) == fid {
			out = append(out, DocValue{data: d.data, addr: fv.value})
		}
	}
	return out
}

// FieldValues iterates over every (field, value) root entry in insertion
// order.
func (d *Document) FieldValues() iter.Seq2[Field, DocValue] {
	return func(yield func(Field, DocValue) bool) {
		for _, fv := range d.fieldValues {
			if !yield(Field(fv.field), DocValue{data: d.data, addr: fv.value}) {
				return
			}
		}
	}
}

// readPrefixed reads a uvarint length prefix at the offset and returns the
// payload slice, bounds checked.
func readPrefixed(data []byte, at uint32) ([]byte, error) {
	if uint64(at) >= uint64(len(data)) {
		return nil, &MalformedDataError{Offset: at, Reason: "length prefix out of bounds"}
	}
	length, n := binary.Uvarint(data[at:])
	if n <= 0 {
		return nil, &MalformedDataError{Offset: at, Reason: "length prefix varint"}
	}
	start := uint64(at) + uint64(n)
	end := start + length
	if end > uint64(len(data)) || end < start {
		return nil, &MalformedDataError{Offset: at, Reason: "payload out of bounds"}
	}
	return data[start:end:end], nil
}

// readFixed returns n bytes at the offset, bounds checked.
func readFixed(data []byte, at uint32, n int) ([]byte, error) {
	end := uint64(at) + uint64(n)
	if end > uint64(len(data)) {
		return nil, &MalformedDataError{Offset: at, Reason: "fixed payload out of bounds"}
	}
	return data[at:end:end], nil
}

func readFixed64(data []byte, at uint32) (uint64, error) {
	b, err := readFixed(data, at, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}
