package tantivy

// ValueType is the closed enumeration of value kinds a document can store.
// The numeric values are part of the binary format and must not change.
type ValueType uint8

const (
	// TypeNull is a null value. It consumes no arena bytes.
	TypeNull ValueType = 0
	// TypeStr is UTF-8 text.
	TypeStr ValueType = 1
	// TypeU64 is an unsigned 64-bit integer.
	TypeU64 ValueType = 2
	// TypeI64 is a signed 64-bit integer.
	TypeI64 ValueType = 3
	// TypeF64 is a 64-bit float.
	TypeF64 ValueType = 4
	// TypeDate is a point in time with nanosecond precision.
	TypeDate ValueType = 5
	// TypeFacet is an encoded facet path.
	TypeFacet ValueType = 6
	// TypeBytes is an arbitrarily sized byte blob.
	TypeBytes ValueType = 7
	// TypeIPAddr is an IP address. IPv4 is widened to its IPv6-mapped form
	// before storage; internally there is no IPv4.
	TypeIPAddr ValueType = 8
	// TypeBool is a boolean. It consumes no arena bytes.
	TypeBool ValueType = 9
	// TypePreTokStr is text that was tokenized ahead of ingestion.
	TypePreTokStr ValueType = 10
	// TypeObject is a nested key/value object.
	TypeObject ValueType = 11
	// TypeArray is a nested array.
	TypeArray ValueType = 12
)

func (t ValueType) valid() bool { return t <= TypeArray }

func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeStr:
		return "str"
	case TypeU64:
		return "u64"
	case TypeI64:
		return "i64"
	case TypeF64:
		return "f64"
	case TypeDate:
		return "date"
	case TypeFacet:
		return "facet"
	case TypeBytes:
		return "bytes"
	case TypeIPAddr:
		return "ip"
	case TypeBool:
		return "bool"
	case TypePreTokStr:
		return "pretokstr"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	default:
		return "invalid"
	}
}

// maxArenaBytes is the hard cap on a single document arena. Addresses are
// truncated to 3 bytes, so nothing past 2^24-1 is reachable.
const maxArenaBytes = 1 << 24

// arenaAddr is a 3-byte big-endian arena offset.
type arenaAddr [3]byte

func arenaAddrFromUint32(v uint32) (arenaAddr, error) {
	if v >= maxArenaBytes {
		return arenaAddr{}, ErrArenaOverflow
	}
	return arenaAddr{byte(v >> 16), byte(v >> 8), byte(v)}, nil
}

func (a arenaAddr) uint32() uint32 {
	return uint32(a[0])<<16 | uint32(a[1])<<8 | uint32(a[2])
}

// valueAddr is the 4-byte tagged pointer underlying every value reference in
// a document: one ValueType byte followed by a 3-byte offset. For Bool and
// Null the offset field carries the value itself and no arena bytes exist.
type valueAddr struct {
	typ ValueType
	val arenaAddr
}

const valueAddrLen = 4

func newValueAddr(typ ValueType, offset uint32) (valueAddr, error) {
	a, err := arenaAddrFromUint32(offset)
	if err != nil {
		return valueAddr{}, err
	}
	return valueAddr{typ: typ, val: a}, nil
}

// appendTo serializes the 4-byte wire form.
func (v valueAddr) appendTo(buf []byte) []byte {
	return append(buf, byte(v.typ), v.val[0], v.val[1], v.val[2])
}

// decodeValueAddr reads the 4-byte wire form at offset at in b.
func decodeValueAddr(b []byte, at uint32) (valueAddr, error) {
	if uint64(at)+valueAddrLen > uint64(len(b)) {
		return valueAddr{}, &MalformedDataError{Offset: at, Reason: "truncated value address"}
	}
	s := b[at:]
	typ := ValueType(s[0])
	if !typ.valid() {
		return valueAddr{}, &UnknownTypeTagError{Tag: s[0]}
	}
	return valueAddr{typ: typ, val: arenaAddr{s[1], s[2], s[3]}}, nil
}
