package tantivy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/CowSmiles/tantivy/codec"
)

// NamedDocument is the materialized, field-name keyed form of a document.
// Each field maps to the list of values added for it, in insertion order.
// It is the export surface for debugging and JSON round trips; the compact
// form stays authoritative.
type NamedDocument map[string][]any

// ToNamed materializes the document using the schema for field names.
// Fields whose id is unknown to the schema are skipped.
func (d *Document) ToNamed(schema *Schema) (NamedDocument, error) {
	out := make(NamedDocument, len(d.fieldValues))
	for field, dv := range d.FieldValues() {
		name, ok := schema.FieldName(field)
		if !ok {
			continue
		}
		v, err := materialize(dv)
		if err != nil {
			return nil, err
		}
		out[name] = append(out[name], v)
	}
	return out, nil
}

// FromNamed builds a compact document from its field-name keyed form,
// resolving names through the schema and converting values with FromAny.
// Field names unknown to the schema are an error; map iteration order is
// made deterministic by encoding fields in sorted name order.
func FromNamed(schema *Schema, named NamedDocument) (*Document, error) {
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)

	doc := NewDocument()
	for _, name := range names {
		field, ok := schema.GetField(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidInput, name)
		}
		for _, raw := range named[name] {
			v, err := FromAny(raw)
			if err != nil {
				return nil, err
			}
			if err := doc.AddValue(field, v); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

// FromJSON decodes a JSON object into a document, keyed by field name. Each
// field may hold either a single value or a list of values.
func FromJSON(schema *Schema, data []byte) (*Document, error) {
	var raw map[string]any
	if err := codec.Default.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	named := make(NamedDocument, len(raw))
	for name, v := range raw {
		if list, ok := v.([]any); ok {
			named[name] = list
			continue
		}
		named[name] = []any{v}
	}
	return FromNamed(schema, named)
}

// ToJSON materializes the document and encodes it as a JSON object.
func (d *Document) ToJSON(schema *Schema) ([]byte, error) {
	named, err := d.ToNamed(schema)
	if err != nil {
		return nil, err
	}
	return codec.Default.Marshal(named)
}

// materialize recursively decodes a value into plain Go types. Strings and
// byte slices are copied so the result does not alias the arena.
func materialize(dv DocValue) (any, error) {
	switch dv.Type() {
	case TypeNull:
		return nil, nil
	case TypeStr:
		s, err := dv.Str()
		if err != nil {
			return nil, err
		}
		return strings.Clone(s), nil
	case TypeFacet:
		s, err := dv.Facet()
		if err != nil {
			return nil, err
		}
		return strings.Clone(s), nil
	case TypeU64:
		return dv.U64()
	case TypeI64:
		return dv.I64()
	case TypeF64:
		return dv.F64()
	case TypeBool:
		return dv.Bool()
	case TypeDate:
		return dv.Date()
	case TypeBytes:
		b, err := dv.Bytes()
		if err != nil {
			return nil, err
		}
		return append([]byte(nil), b...), nil
	case TypeIPAddr:
		a, err := dv.IPAddr()
		if err != nil {
			return nil, err
		}
		return a.String(), nil
	case TypePreTokStr:
		return dv.PreTokenized()
	case TypeArray:
		it, err := dv.Array()
		if err != nil {
			return nil, err
		}
		out := []any{}
		for el, ok := it.Next(); ok; el, ok = it.Next() {
			v, err := materialize(el)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		if err := it.Err(); err != nil {
			return nil, err
		}
		return out, nil
	case TypeObject:
		it, err := dv.Object()
		if err != nil {
			return nil, err
		}
		out := map[string]any{}
		for key, el, ok := it.Next(); ok; key, el, ok = it.Next() {
			v, err := materialize(el)
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		if err := it.Err(); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, &UnknownTypeTagError{Tag: byte(dv.Type())}
	}
}
