package codec

import (
	"testing"
)

type benchToken struct {
	Text     string `json:"text"`
	Position int    `json:"position"`
	From     int    `json:"offset_from"`
	To       int    `json:"offset_to"`
}

type benchPayload struct {
	ID     uint64            `json:"id"`
	Title  string            `json:"title"`
	Score  float64           `json:"score"`
	Tags   []string          `json:"tags"`
	Attrs  map[string]string `json:"attrs"`
	Flags  []bool            `json:"flags"`
	Tokens []benchToken      `json:"tokens"`
}

func benchmarkCodecMarshal(b *testing.B, c Codec, v any) {
	b.Helper()
	b.ReportAllocs()

	warm, err := c.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(warm)))

	var sink []byte
	b.ResetTimer()
	for b.Loop() {
		out, err := c.Marshal(v)
		if err != nil {
			b.Fatal(err)
		}
		sink = out
	}
	_ = sink
}

func benchmarkCodecUnmarshal[T any](b *testing.B, c Codec, data []byte, dst *T) {
	b.Helper()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	var v T
	b.ResetTimer()
	for b.Loop() {
		if err := c.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
	if dst != nil {
		*dst = v
	}
}

func newBenchPayload() benchPayload {
	return benchPayload{
		ID:    123456789,
		Title: "hello tantivy",
		Score: 0.12345,
		Tags:  []string{"a", "b", "c", "d", "e"},
		Attrs: map[string]string{
			"kind": "bench",
			"lang": "go",
		},
		Flags: []bool{true, false, true, true, false, false, true},
		Tokens: []benchToken{
			{Text: "hello", Position: 0, From: 0, To: 5},
			{Text: "tantivy", Position: 1, From: 6, To: 13},
		},
	}
}

func BenchmarkCodec_Marshal_Payload(b *testing.B) {
	payload := newBenchPayload()

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, JSON{}, payload) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, GoJSON{}, payload) })
}

func BenchmarkCodec_Unmarshal_Payload(b *testing.B) {
	payload := newBenchPayload()
	jsonData := MustMarshal(JSON{}, payload)

	b.Run("stdlib", func(b *testing.B) {
		var sink benchPayload
		benchmarkCodecUnmarshal(b, JSON{}, jsonData, &sink)
		_ = sink
	})
	b.Run("go-json", func(b *testing.B) {
		var sink benchPayload
		benchmarkCodecUnmarshal(b, GoJSON{}, jsonData, &sink)
		_ = sink
	})
}
