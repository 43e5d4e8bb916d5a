package codec

import "encoding/json"

// JSON is the standard-library codec. Slower than GoJSON but has no
// dependencies; useful when build size matters more than throughput.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name is the stable identifier written into file headers.
func (JSON) Name() string { return "json" }
