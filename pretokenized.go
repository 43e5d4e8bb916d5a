package tantivy

// Token is a single token produced by an external tokenizer.
type Token struct {
	// Text is the token text.
	Text string `json:"text"`
	// Position is the token position in the token stream, starting at 0.
	Position int `json:"position"`
	// OffsetFrom is the byte offset of the token start in the original text.
	OffsetFrom int `json:"offset_from"`
	// OffsetTo is the byte offset just past the token end.
	OffsetTo int `json:"offset_to"`
	// PositionLength is the number of positions the token spans. It is 1
	// for plain tokens and may be larger for synonyms or shingles.
	PositionLength int `json:"position_length"`
}

// PreTokenizedText carries text together with its externally produced token
// stream, bypassing the engine's own tokenization.
//
// It is stored in the document arena as a length-prefixed encoded payload;
// the encoding is an implementation detail of this package.
type PreTokenizedText struct {
	Text   string  `json:"text"`
	Tokens []Token `json:"tokens"`
}
