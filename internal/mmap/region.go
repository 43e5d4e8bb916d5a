package mmap

// Region is a window into a Mapping. It shares the parent's lifetime: once
// the parent closes, the region's bytes are gone with it.
type Region struct {
	parent *Mapping
	off    int
	size   int
}

// Region returns a view over size bytes starting at off.
func (m *Mapping) Region(off, size int) (*Region, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if off < 0 || size < 0 || off+size > len(m.data) {
		return nil, ErrOutOfBounds
	}
	return &Region{parent: m, off: off, size: size}, nil
}

// Bytes returns the region's bytes, or nil once the parent is closed.
func (r *Region) Bytes() []byte {
	if r.parent.closed.Load() {
		return nil
	}
	return r.parent.data[r.off : r.off+r.size]
}

// Size returns the region length in bytes.
func (r *Region) Size() int {
	return r.size
}

// Advise hints the kernel about the access pattern for this region only.
func (r *Region) Advise(pattern AccessPattern) error {
	if r.parent.closed.Load() {
		return ErrClosed
	}
	if r.size == 0 {
		return nil
	}
	return osAdvise(r.parent.data[r.off:r.off+r.size], pattern)
}
