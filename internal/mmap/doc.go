// Package mmap maps files into memory for zero-copy reads.
//
// A store or column file opened through this package is read straight out
// of the page cache, so files larger than memory still serve point reads
// without any explicit buffering.
//
//	m, err := mmap.Open("store.bin")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
//
// On unix platforms Advise forwards to madvise(2); on Windows it is a
// no-op. Mapping and Region are safe for concurrent reads, but callers
// must not touch Bytes after Close returns.
package mmap
