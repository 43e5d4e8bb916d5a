package codec

import gojson "github.com/goccy/go-json"

// GoJSON wraps github.com/goccy/go-json, which encodes the same wire format
// as encoding/json a few times faster. It is the default.
type GoJSON struct{}

func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name is the stable identifier written into file headers.
func (GoJSON) Name() string { return "go-json" }

// Append marshals v onto the end of dst.
func (GoJSON) Append(dst []byte, v any) ([]byte, error) {
	b, err := gojson.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}
