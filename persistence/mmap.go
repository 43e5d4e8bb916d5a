package persistence

import (
	"github.com/CowSmiles/tantivy/internal/mmap"
)

// MappedStore is a StoreReader backed by a memory-mapped file. Blocks are
// decompressed on demand straight out of the mapping, so opening a large
// store costs no read I/O up front.
//
// Close unmaps the file. Decoded documents own their arenas and stay valid
// afterwards.
type MappedStore struct {
	*StoreReader
	mapping *mmap.Mapping
}

// OpenStore memory-maps a store file and opens a reader over it.
func OpenStore(path string) (*MappedStore, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	sr, err := OpenStoreBytes(m.Bytes())
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	// Store files are read front to back during checksum verification, but
	// lookups after that are random.
	_ = m.Advise(mmap.AccessRandom)
	return &MappedStore{StoreReader: sr, mapping: m}, nil
}

// Close unmaps the underlying file.
func (ms *MappedStore) Close() error {
	return ms.mapping.Close()
}
