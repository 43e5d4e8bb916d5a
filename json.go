package tantivy

import (
	"fmt"
	"sort"

	"github.com/CowSmiles/tantivy/codec"
)

// ParseJSONValue decodes a single JSON value into the document value model.
//
// Numbers arrive from the JSON decoder as float64; integral values are
// narrowed to I64 and everything else stays F64. Object keys are sorted for
// deterministic encoding.
func ParseJSONValue(data []byte) (Value, error) {
	var raw any
	if err := codec.Default.Unmarshal(data, &raw); err != nil {
		return Value{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	return FromAny(raw)
}

// ParseJSONDocument decodes a flat JSON object into a document, resolving
// top-level keys as schema field names. Keys not present in the schema are
// skipped and reported via the returned slice. Top-level JSON arrays expand
// into one root entry per element, matching multi-valued field semantics.
func ParseJSONDocument(schema *Schema, data []byte) (*Document, []string, error) {
	var raw map[string]any
	if err := codec.Default.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := NewDocument()
	var unknown []string
	for _, k := range keys {
		field, ok := schema.GetField(k)
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		if arr, isArr := raw[k].([]any); isArr {
			for _, el := range arr {
				v, err := FromAny(el)
				if err != nil {
					return nil, nil, fmt.Errorf("field %q: %w", k, err)
				}
				if err := doc.AddValue(field, v); err != nil {
					return nil, nil, fmt.Errorf("field %q: %w", k, err)
				}
			}
			continue
		}
		v, err := FromAny(raw[k])
		if err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", k, err)
		}
		if err := doc.AddValue(field, v); err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", k, err)
		}
	}
	return doc, unknown, nil
}
