package tantivy

import (
	"fmt"
	"math"
	"net/netip"
	"sort"
	"time"
)

// Value is a typed value tree consumed by the document encoder: a leaf
// scalar, an array of values, or an ordered object.
//
// Values are cheap to construct and copy; the encoder serializes them into
// the document arena, so a Value never outlives an add call.
type Value struct {
	typ ValueType

	u64    uint64
	i64    int64
	f64    float64
	str    string
	bytes  []byte
	ip     netip.Addr
	pretok *PreTokenizedText
	arr    []Value
	obj    []Entry
}

// Entry is a single key/value pair of an object. Object entries preserve
// insertion order.
type Entry struct {
	Key   string
	Value Value
}

// Type returns the value kind.
func (v Value) Type() ValueType { return v.typ }

// Null returns a null value.
func Null() Value { return Value{typ: TypeNull} }

// Str returns a text value.
func Str(s string) Value { return Value{typ: TypeStr, str: s} }

// U64 returns an unsigned integer value.
func U64(v uint64) Value { return Value{typ: TypeU64, u64: v} }

// I64 returns a signed integer value.
func I64(v int64) Value { return Value{typ: TypeI64, i64: v} }

// F64 returns a float value.
func F64(v float64) Value { return Value{typ: TypeF64, f64: v} }

// Bool returns a boolean value.
func Bool(v bool) Value {
	var u uint64
	if v {
		u = 1
	}
	return Value{typ: TypeBool, u64: u}
}

// Date returns a date value with nanosecond precision.
func Date(t time.Time) Value { return Value{typ: TypeDate, i64: t.UnixNano()} }

// Facet returns a facet value from its encoded path representation.
func Facet(encoded string) Value { return Value{typ: TypeFacet, str: encoded} }

// Bytes returns a byte blob value. The slice is not copied until the value
// is added to a document.
func Bytes(b []byte) Value { return Value{typ: TypeBytes, bytes: b} }

// IPAddr returns an IP address value. IPv4 addresses are widened to their
// IPv6-mapped form on encode.
func IPAddr(a netip.Addr) Value { return Value{typ: TypeIPAddr, ip: a} }

// PreTokenized returns a pre-tokenized text value.
func PreTokenized(t *PreTokenizedText) Value { return Value{typ: TypePreTokStr, pretok: t} }

// Array returns an array value.
func Array(vs ...Value) Value { return Value{typ: TypeArray, arr: vs} }

// Object returns an object value. Entry order is preserved by the encoder
// and by lazy iteration.
func Object(entries ...Entry) Value { return Value{typ: TypeObject, obj: entries} }

// FromAny converts an untyped external value (typically the result of JSON
// decoding) into a Value.
//
// Conversion rules:
//   - nil -> Null
//   - bool, string, []byte -> the corresponding leaf
//   - integer kinds -> I64 (negative) or U64 is not inferred; all Go signed
//     ints map to I64, unsigned ints to U64
//   - float64 -> I64 when the value is integral and exactly representable,
//     F64 otherwise (JSON numbers arrive as float64)
//   - time.Time -> Date, netip.Addr -> IPAddr
//   - []any -> Array, map[string]any -> Object with keys in sorted order
//
// Unsupported types yield ErrInvalidInput.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case string:
		return Str(x), nil
	case []byte:
		return Bytes(x), nil
	case int:
		return I64(int64(x)), nil
	case int8:
		return I64(int64(x)), nil
	case int16:
		return I64(int64(x)), nil
	case int32:
		return I64(int64(x)), nil
	case int64:
		return I64(x), nil
	case uint:
		return U64(uint64(x)), nil
	case uint8:
		return U64(uint64(x)), nil
	case uint16:
		return U64(uint64(x)), nil
	case uint32:
		return U64(uint64(x)), nil
	case uint64:
		return U64(x), nil
	case float32:
		return fromFloat(float64(x)), nil
	case float64:
		return fromFloat(x), nil
	case time.Time:
		return Date(x), nil
	case netip.Addr:
		return IPAddr(x), nil
	case *PreTokenizedText:
		return PreTokenized(x), nil
	case Value:
		return x, nil
	case []any:
		arr := make([]Value, len(x))
		for i, el := range x {
			ev, err := FromAny(el)
			if err != nil {
				return Value{}, err
			}
			arr[i] = ev
		}
		return Array(arr...), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(x))
		for _, k := range keys {
			ev, err := FromAny(x[k])
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, Entry{Key: k, Value: ev})
		}
		return Object(entries...), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidInput, v)
	}
}

// fromFloat maps integral float64s back to I64. JSON decoding loses the
// integer/float distinction; this restores it for exact integral values.
func fromFloat(f float64) Value {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return I64(int64(f))
	}
	return F64(f)
}
