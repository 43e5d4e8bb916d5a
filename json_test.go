package tantivy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONValue(t *testing.T) {
	v, err := ParseJSONValue([]byte(`{"a": 1, "b": [true, null], "c": 1.5}`))
	require.NoError(t, err)
	assert.Equal(t, TypeObject, v.Type())

	_, err = ParseJSONValue([]byte(`{not json`))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseJSONDocument(t *testing.T) {
	b := NewSchemaBuilder()
	title := b.AddField("title")
	count := b.AddField("count")
	tags := b.AddField("tags")
	schema := b.Build()

	doc, unknown, err := ParseJSONDocument(schema, []byte(`{
		"title": "hello",
		"count": 3,
		"tags": ["a", "b"],
		"extra": true
	}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"extra"}, unknown)

	v, ok := doc.GetFirst(title)
	require.True(t, ok)
	s, err := v.Str()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	v, _ = doc.GetFirst(count)
	i, err := v.I64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), i)

	// Top-level arrays expand into one root entry per element.
	vals := doc.GetAll(tags)
	require.Len(t, vals, 2)
	s, err = vals[0].Str()
	require.NoError(t, err)
	assert.Equal(t, "a", s)
	s, err = vals[1].Str()
	require.NoError(t, err)
	assert.Equal(t, "b", s)
}

func TestParseJSONDocument_NestedObject(t *testing.T) {
	b := NewSchemaBuilder()
	attrs := b.AddField("attributes")
	schema := b.Build()

	doc, unknown, err := ParseJSONDocument(schema, []byte(`{
		"attributes": {"a": 1, "b": {"c": 2}}
	}`))
	require.NoError(t, err)
	assert.Empty(t, unknown)

	v, ok := doc.GetFirst(attrs)
	require.True(t, ok)
	require.Equal(t, TypeObject, v.Type())

	it, err := v.Object()
	require.NoError(t, err)

	key, el, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, "a", key)
	i, err := el.I64()
	require.NoError(t, err)
	assert.Equal(t, int64(1), i)

	key, el, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, "b", key)
	assert.Equal(t, TypeObject, el.Type())
}

func TestParseJSONDocument_Invalid(t *testing.T) {
	schema := NewSchemaBuilder().Build()
	_, _, err := ParseJSONDocument(schema, []byte(`[1, 2]`))
	require.Error(t, err)
}
