package tantivy

import (
	"encoding/binary"
)

// Document wire encoding, little-endian:
//
//	uvarint numEntries
//	numEntries times: field uint16, value address 4 bytes
//	uvarint arenaLen
//	arena bytes
//
// Addresses inside the arena are relative, so the encoding is position
// independent and documents can be concatenated back to back.

// AppendBinary appends the document's wire encoding to buf.
func (d *Document) AppendBinary(buf []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(d.fieldValues)))
	for _, fv := range d.fieldValues {
		buf = binary.LittleEndian.AppendUint16(buf, fv.field)
		buf = fv.value.appendTo(buf)
	}
	buf = binary.AppendUvarint(buf, uint64(len(d.data)))
	buf = append(buf, d.data...)
	return buf
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (d *Document) MarshalBinary() ([]byte, error) {
	return d.AppendBinary(make([]byte, 0, 16+len(d.fieldValues)*6+len(d.data))), nil
}

// DecodeDocument decodes one document from the front of b and returns it
// together with the number of bytes consumed.
func DecodeDocument(b []byte) (*Document, int, error) {
	var consumed int

	numEntries, n := binary.Uvarint(b)
	if n <= 0 {
		return nil, 0, &MalformedDataError{Reason: "document entry count varint"}
	}
	consumed += n
	b = b[n:]

	// Compare against the divided length rather than numEntries*entryLen,
	// which a hostile entry count can wrap around.
	const entryLen = 2 + valueAddrLen
	if numEntries > uint64(len(b))/entryLen {
		return nil, 0, &MalformedDataError{Reason: "document root table truncated"}
	}
	fvs := make([]fieldValueAddr, 0, numEntries)
	for i := uint64(0); i < numEntries; i++ {
		field := binary.LittleEndian.Uint16(b)
		addr, err := decodeValueAddr(b, 2)
		if err != nil {
			return nil, 0, err
		}
		fvs = append(fvs, fieldValueAddr{field: field, value: addr})
		consumed += entryLen
		b = b[entryLen:]
	}

	arenaLen, n := binary.Uvarint(b)
	if n <= 0 {
		return nil, 0, &MalformedDataError{Reason: "document arena length varint"}
	}
	consumed += n
	b = b[n:]
	// The arena may extend past the last addressable offset when the final
	// payload starts just under the 16 MiB boundary, so only truncation is
	// checked here.
	if uint64(len(b)) < arenaLen {
		return nil, 0, &MalformedDataError{Reason: "document arena truncated"}
	}
	data := make([]byte, arenaLen)
	copy(data, b[:arenaLen])
	consumed += int(arenaLen)

	return &Document{data: data, fieldValues: fvs}, consumed, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Trailing bytes
// after one full document are rejected.
func (d *Document) UnmarshalBinary(b []byte) error {
	doc, n, err := DecodeDocument(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return &MalformedDataError{Offset: uint32(n), Reason: "trailing bytes after document"}
	}
	*d = *doc
	return nil
}
