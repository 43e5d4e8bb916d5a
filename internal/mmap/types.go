package mmap

import "errors"

// AccessPattern hints the kernel about how mapped memory will be read.
type AccessPattern int

const (
	// AccessDefault leaves the kernel's readahead policy untouched.
	AccessDefault AccessPattern = iota
	// AccessSequential announces front-to-back reads.
	AccessSequential
	// AccessRandom announces scattered point reads.
	AccessRandom
	// AccessWillNeed asks the kernel to page the data in soon.
	AccessWillNeed
	// AccessDontNeed tells the kernel the pages can be reclaimed.
	AccessDontNeed
)

var (
	// ErrClosed reports an operation on a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize reports a file whose size cannot be mapped.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrOutOfBounds reports a region that falls outside the mapping.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
	// ErrInvalidOffset reports a negative read offset.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
