package tantivy

// Field identifies a field within a schema. Documents store field ids in a
// 16-bit slot, so ids above 65535 are rejected at add time even though the
// schema-side type is wider.
type Field uint32

// ID returns the numeric field id.
func (f Field) ID() uint32 { return uint32(f) }

// Schema is the minimal field-name resolver consumed by ingestion. It maps
// field names to ids and back; value typing and validation live outside this
// package.
type Schema struct {
	names  []string
	byName map[string]Field
}

// SchemaBuilder accumulates field registrations.
type SchemaBuilder struct {
	names  []string
	byName map[string]Field
}

// NewSchemaBuilder creates an empty schema builder.
func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{byName: make(map[string]Field)}
}

// AddField registers a field name and returns its Field. Registering the
// same name twice returns the existing field.
func (b *SchemaBuilder) AddField(name string) Field {
	if f, ok := b.byName[name]; ok {
		return f
	}
	f := Field(len(b.names))
	b.names = append(b.names, name)
	b.byName[name] = f
	return f
}

// Build finalizes the schema. The builder must not be used afterwards.
func (b *SchemaBuilder) Build() *Schema {
	return &Schema{names: b.names, byName: b.byName}
}

// GetField resolves a field name.
func (s *Schema) GetField(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// FieldName resolves a field id back to its name.
func (s *Schema) FieldName(f Field) (string, bool) {
	if int(f) >= len(s.names) {
		return "", false
	}
	return s.names[f], true
}

// NumFields returns the number of registered fields.
func (s *Schema) NumFields() int { return len(s.names) }
