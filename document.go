package tantivy

import (
	"encoding/binary"
	"fmt"
	"math"
	"net/netip"
	"time"

	"github.com/CowSmiles/tantivy/codec"
)

// maxFieldID is the largest field id the 16-bit root table slot can hold.
const maxFieldID = math.MaxUint16

// fieldValueAddr is one root entry: a 16-bit field id and the tagged address
// of the encoded value.
type fieldValueAddr struct {
	field uint16
	value valueAddr
}

// Document is the compact document representation. All values are serialized
// into a single append-only byte arena; the root field table holds one
// (field id, address) pair per field-value occurrence, in insertion order.
//
// A Document is built by a single writer and immutable afterwards; decoding
// never mutates it, so concurrent read-only access is safe once construction
// is complete. There is no update or delete: a changed document is a new
// instance.
type Document struct {
	// data is the arena. Offsets handed out as addresses are monotonically
	// non-decreasing and never reused.
	data        []byte
	fieldValues []fieldValueAddr
}

// NewDocument creates an empty document with a default arena capacity.
func NewDocument() *Document {
	return NewDocumentWithCapacity(1024)
}

// NewDocumentWithCapacity creates an empty document, reserving the given
// number of arena bytes up front.
func NewDocumentWithCapacity(bytes int) *Document {
	return &Document{
		data:        make([]byte, 0, bytes),
		fieldValues: make([]fieldValueAddr, 0, 4),
	}
}

// Len returns the number of root field-value entries.
func (d *Document) Len() int { return len(d.fieldValues) }

// ArenaLen returns the number of encoded arena bytes. Bool and null leaves
// contribute nothing here; their values live in the address itself.
func (d *Document) ArenaLen() int { return len(d.data) }

// ShrinkToFit reallocates the arena and root table to their exact sizes.
func (d *Document) ShrinkToFit() {
	if cap(d.data) > len(d.data) {
		data := make([]byte, len(d.data))
		copy(data, d.data)
		d.data = data
	}
	if cap(d.fieldValues) > len(d.fieldValues) {
		fvs := make([]fieldValueAddr, len(d.fieldValues))
		copy(fvs, d.fieldValues)
		d.fieldValues = fvs
	}
}

// AddText adds a text value for the field.
func (d *Document) AddText(field Field, text string) error {
	return d.AddValue(field, Str(text))
}

// AddU64 adds an unsigned integer value for the field.
func (d *Document) AddU64(field Field, v uint64) error {
	return d.AddValue(field, U64(v))
}

// AddI64 adds a signed integer value for the field.
func (d *Document) AddI64(field Field, v int64) error {
	return d.AddValue(field, I64(v))
}

// AddF64 adds a float value for the field.
func (d *Document) AddF64(field Field, v float64) error {
	return d.AddValue(field, F64(v))
}

// AddBool adds a boolean value for the field.
func (d *Document) AddBool(field Field, v bool) error {
	return d.AddValue(field, Bool(v))
}

// AddDate adds a date value for the field.
func (d *Document) AddDate(field Field, t time.Time) error {
	return d.AddValue(field, Date(t))
}

// AddBytes adds a byte blob value for the field.
func (d *Document) AddBytes(field Field, b []byte) error {
	return d.AddValue(field, Bytes(b))
}

// AddIPAddr adds an IP address value for the field.
func (d *Document) AddIPAddr(field Field, a netip.Addr) error {
	return d.AddValue(field, IPAddr(a))
}

// AddFacet adds a facet value for the field.
func (d *Document) AddFacet(field Field, encoded string) error {
	return d.AddValue(field, Facet(encoded))
}

// AddPreTokenized adds a pre-tokenized text value for the field.
func (d *Document) AddPreTokenized(field Field, t *PreTokenizedText) error {
	return d.AddValue(field, PreTokenized(t))
}

// AddValue encodes the value tree into the arena and appends a root entry.
//
// On error nothing observable changes: bytes a failing call may already have
// written are unreachable dead space since no address for them was returned,
// and previously added entries stay valid and decodable.
func (d *Document) AddValue(field Field, v Value) error {
	fid := field.ID()
	if fid > maxFieldID {
		return fmt.Errorf("%w: field id %d", ErrFieldIDOverflow, fid)
	}
	va, err := d.addValue(v)
	if err != nil {
		return err
	}
	d.fieldValues = append(d.fieldValues, fieldValueAddr{field: uint16(fid), value: va})
	return nil
}

// addValue recursively serializes one value and returns its tagged address.
func (d *Document) addValue(v Value) (valueAddr, error) {
	switch v.typ {
	case TypeNull:
		return valueAddr{typ: TypeNull}, nil

	case TypeBool:
		// Zero arena bytes: the value is packed into the offset field.
		return valueAddr{typ: TypeBool, val: arenaAddr{0, 0, byte(v.u64)}}, nil

	case TypeStr, TypeFacet:
		off, err := d.appendPrefixedString(v.str)
		if err != nil {
			return valueAddr{}, err
		}
		return newValueAddr(v.typ, off)

	case TypeBytes:
		off, err := d.appendPrefixed(v.bytes)
		if err != nil {
			return valueAddr{}, err
		}
		return newValueAddr(TypeBytes, off)

	case TypeU64:
		off, err := d.appendFixed64(v.u64)
		if err != nil {
			return valueAddr{}, err
		}
		return newValueAddr(TypeU64, off)

	case TypeI64:
		off, err := d.appendFixed64(uint64(v.i64))
		if err != nil {
			return valueAddr{}, err
		}
		return newValueAddr(TypeI64, off)

	case TypeF64:
		off, err := d.appendFixed64(math.Float64bits(v.f64))
		if err != nil {
			return valueAddr{}, err
		}
		return newValueAddr(TypeF64, off)

	case TypeDate:
		off, err := d.appendFixed64(uint64(v.i64))
		if err != nil {
			return valueAddr{}, err
		}
		return newValueAddr(TypeDate, off)

	case TypeIPAddr:
		// As16 yields the IPv6-mapped form for IPv4 addresses, so a single
		// 16-byte representation covers both families.
		b16 := v.ip.As16()
		off, err := d.appendFixed(b16[:])
		if err != nil {
			return valueAddr{}, err
		}
		return newValueAddr(TypeIPAddr, off)

	case TypePreTokStr:
		payload, err := codec.Default.Marshal(v.pretok)
		if err != nil {
			return valueAddr{}, fmt.Errorf("tantivy: encode pre-tokenized text: %w", err)
		}
		off, err := d.appendPrefixed(payload)
		if err != nil {
			return valueAddr{}, err
		}
		return newValueAddr(TypePreTokStr, off)

	case TypeArray:
		// Encode each element, then append the position table pointing at
		// the serialized child addresses.
		positions := make([]byte, 0, 2*len(v.arr))
		for _, el := range v.arr {
			ea, err := d.addValue(el)
			if err != nil {
				return valueAddr{}, err
			}
			positions = binary.AppendUvarint(positions, uint64(len(d.data)))
			d.data = ea.appendTo(d.data)
		}
		off, err := d.appendPrefixed(positions)
		if err != nil {
			return valueAddr{}, err
		}
		return newValueAddr(TypeArray, off)

	case TypeObject:
		// Keys are encoded as text leaves; each position-table entry points
		// at the key address, with the value address right behind it.
		positions := make([]byte, 0, 2*len(v.obj))
		for _, ent := range v.obj {
			ka, err := d.addValue(Str(ent.Key))
			if err != nil {
				return valueAddr{}, err
			}
			va, err := d.addValue(ent.Value)
			if err != nil {
				return valueAddr{}, err
			}
			positions = binary.AppendUvarint(positions, uint64(len(d.data)))
			d.data = ka.appendTo(d.data)
			d.data = va.appendTo(d.data)
		}
		off, err := d.appendPrefixed(positions)
		if err != nil {
			return valueAddr{}, err
		}
		return newValueAddr(TypeObject, off)

	default:
		return valueAddr{}, fmt.Errorf("%w: value type %d", ErrInvalidInput, v.typ)
	}
}

// appendPrefixed writes a uvarint length prefix plus payload and returns the
// offset of the prefix.
func (d *Document) appendPrefixed(b []byte) (uint32, error) {
	off := len(d.data)
	if off >= maxArenaBytes {
		return 0, ErrArenaOverflow
	}
	d.data = binary.AppendUvarint(d.data, uint64(len(b)))
	d.data = append(d.data, b...)
	return uint32(off), nil
}

func (d *Document) appendPrefixedString(s string) (uint32, error) {
	off := len(d.data)
	if off >= maxArenaBytes {
		return 0, ErrArenaOverflow
	}
	d.data = binary.AppendUvarint(d.data, uint64(len(s)))
	d.data = append(d.data, s...)
	return uint32(off), nil
}

// appendFixed64 writes a fixed 8-byte little-endian word. Byte order is an
// intra-arena convention only, not a cross-process wire guarantee.
func (d *Document) appendFixed64(v uint64) (uint32, error) {
	off := len(d.data)
	if off >= maxArenaBytes {
		return 0, ErrArenaOverflow
	}
	d.data = binary.LittleEndian.AppendUint64(d.data, v)
	return uint32(off), nil
}

func (d *Document) appendFixed(b []byte) (uint32, error) {
	off := len(d.data)
	if off >= maxArenaBytes {
		return 0, ErrArenaOverflow
	}
	d.data = append(d.data, b...)
	return uint32(off), nil
}
