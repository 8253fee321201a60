package fdt

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Cell constants.
const (
	// CellSize is the size of one property cell in bytes.
	CellSize = 4

	// Magic is the signature stored in the first cell of every blob.
	Magic uint32 = 0xd00dfeed

	// HeaderSize is the size of a version 17 header (ten cells).
	HeaderSize = 10 * CellSize
)

// Decoding errors.
var (
	// ErrShortCell indicates a payload that ends before a full cell.
	ErrShortCell = errors.New("payload shorter than one cell")

	// ErrBadMagic indicates a blob without the device tree signature.
	ErrBadMagic = errors.New("invalid device tree header")

	// ErrCorruptTree indicates a blob whose structure could not be decoded.
	ErrCorruptTree = errors.New("corrupt device tree")
)

// CellReader reads consecutive big-endian cells from a property payload.
type CellReader struct {
	data []byte
	pos  int
}

// NewCellReader creates a reader positioned at the start of data.
func NewCellReader(data []byte) *CellReader {
	return &CellReader{data: data}
}

// Next returns the next cell.
// When fewer than CellSize bytes remain the reader does not advance and
// returns an error wrapping ErrShortCell.
func (r *CellReader) Next() (uint32, error) {
	if r.Remaining() < CellSize {
		return 0, fmt.Errorf("%w: %d bytes left", ErrShortCell, r.Remaining())
	}
	v := binary.BigEndian.Uint32(r.data[r.pos : r.pos+CellSize])
	r.pos += CellSize
	return v, nil
}

// Remaining returns the number of unread bytes.
func (r *CellReader) Remaining() int {
	return len(r.data) - r.pos
}

// FirstCell decodes the first cell of a payload. Trailing bytes are ignored.
func FirstCell(data []byte) (uint32, error) {
	return NewCellReader(data).Next()
}

// CheckHeader verifies the blob signature.
func CheckHeader(blob []byte) error {
	magic, err := FirstCell(blob)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadMagic, err)
	}
	if magic != Magic {
		return fmt.Errorf("%w: magic %#08x", ErrBadMagic, magic)
	}
	if len(blob) < HeaderSize {
		return fmt.Errorf("%w: %d bytes, header needs %d", ErrBadMagic, len(blob), HeaderSize)
	}
	return nil
}
