// Package fastfield implements a columnar index for multi-valued fast
// fields.
//
// A multi-valued fast field stores zero or more values per document in two
// flat columns: an offset column with one entry per document plus a final
// sentinel, and a value column holding every value back to back in document
// order. The values of document d occupy the half-open value-index range
// [offsets[d], offsets[d+1]), so per-document lookup is two array reads.
//
// The offset column doubles as a translation table from value positions back
// to document ids, which is what a search engine needs when a match is found
// in the flattened value column.
package fastfield
