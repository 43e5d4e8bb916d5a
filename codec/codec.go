// Package codec selects the JSON encoder used for document payloads.
//
// Persisted formats record the codec name in their headers, so swapping the
// default only affects newly written files; old files decode with whatever
// codec their header names.
package codec

import "fmt"

// Codec encodes and decodes payload values. Implementations must be safe
// for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec for newly written data.
var Default Codec = GoJSON{}

// ByName resolves a codec from the stable name stored in file headers.
func ByName(name string) (Codec, bool) {
	switch name {
	case JSON{}.Name():
		return JSON{}, true
	case GoJSON{}.Name():
		return GoJSON{}, true
	}
	return nil, false
}

// MustMarshal panics on encode failure. For tests and benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s: %w", c.Name(), err))
	}
	return b
}
