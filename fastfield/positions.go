package fastfield

import (
	"sort"
)

// PositionsToDocIDs translates ascending value-column positions into the
// ordinals of the documents owning them, appending to out. Each document
// appears at most once no matter how many of its positions matched.
// Positions at or beyond the value column length are ignored.
//
// The translation is a single forward merge over the offset column, so a
// batch of n positions against d documents costs O(n + d) regardless of how
// the positions cluster.
func (idx *Index[T]) PositionsToDocIDs(positions []uint64, out []uint32) []uint32 {
	numDocs := uint32(len(idx.offsets) - 1)
	var curDoc uint32
	havePrev := false
	var prevDoc uint32
	for _, pos := range positions {
		for curDoc < numDocs && idx.offsets[curDoc+1] <= pos {
			curDoc++
		}
		if curDoc >= numDocs {
			break
		}
		if !havePrev || prevDoc != curDoc {
			out = append(out, curDoc)
			prevDoc, havePrev = curDoc, true
		}
	}
	return out
}

// PositionsToDocIDsBinary is the per-position variant of PositionsToDocIDs.
// It binary searches the offset column for every position, costing
// O(n log d). Output is identical to PositionsToDocIDs; prefer it when the
// position batch is tiny relative to the document count.
func (idx *Index[T]) PositionsToDocIDsBinary(positions []uint64, out []uint32) []uint32 {
	numDocs := len(idx.offsets) - 1
	havePrev := false
	var prevDoc uint32
	for _, pos := range positions {
		if pos >= idx.TotalNumValues() {
			break
		}
		// First document whose end offset exceeds pos owns it.
		doc := sort.Search(numDocs, func(i int) bool {
			return idx.offsets[i+1] > pos
		})
		d := uint32(doc)
		if !havePrev || prevDoc != d {
			out = append(out, d)
			prevDoc, havePrev = d, true
		}
	}
	return out
}
