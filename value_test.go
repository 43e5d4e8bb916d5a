package tantivy

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAny(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want ValueType
	}{
		{"Nil", nil, TypeNull},
		{"Bool", true, TypeBool},
		{"String", "s", TypeStr},
		{"Bytes", []byte("b"), TypeBytes},
		{"Int", 42, TypeI64},
		{"Int64", int64(-1), TypeI64},
		{"Uint64", uint64(7), TypeU64},
		{"IntegralFloat", float64(3), TypeI64},
		{"FractionalFloat", 3.25, TypeF64},
		{"Time", time.Now(), TypeDate},
		{"Addr", netip.MustParseAddr("::1"), TypeIPAddr},
		{"Slice", []any{1.0, "x"}, TypeArray},
		{"Map", map[string]any{"k": "v"}, TypeObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromAny(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Type())
		})
	}
}

func TestFromAny_Unsupported(t *testing.T) {
	_, err := FromAny(struct{}{})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = FromAny([]any{struct{}{}})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestFromAny_MapKeysSorted(t *testing.T) {
	v, err := FromAny(map[string]any{"b": 1.0, "a": 2.0, "c": 3.0})
	require.NoError(t, err)

	doc := NewDocument()
	require.NoError(t, doc.AddValue(0, v))

	dv, _ := doc.GetFirst(0)
	it, err := dv.Object()
	require.NoError(t, err)

	var keys []string
	for key, _, ok := it.Next(); ok; key, _, ok = it.Next() {
		keys = append(keys, key)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestFromFloat_Boundaries(t *testing.T) {
	v := fromFloat(0)
	assert.Equal(t, TypeI64, v.Type())

	v = fromFloat(-42)
	assert.Equal(t, TypeI64, v.Type())

	v = fromFloat(0.5)
	assert.Equal(t, TypeF64, v.Type())

	// Values outside the int64 range stay floats.
	v = fromFloat(2e19)
	assert.Equal(t, TypeF64, v.Type())
}

func TestValueType_String(t *testing.T) {
	assert.Equal(t, "str", TypeStr.String())
	assert.Equal(t, "object", TypeObject.String())
	assert.Equal(t, "invalid", ValueType(99).String())
}
