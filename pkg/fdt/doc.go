// Package fdt provides read-only access to a flattened device tree blob.
//
// A blob is decoded once with [Load] into an immutable [Tree]. On top of the
// raw node hierarchy the tree keeps parent links, depth, declaration order of
// properties and a phandle index, so callers can navigate in any direction
// without re-scanning the blob.
//
// # Cells
//
// Property payloads are sequences of big-endian 32-bit cells. [CellReader]
// decodes them with bounds checks: a payload that ends before a full cell
// yields [ErrShortCell] instead of reading past the buffer.
//
// # Header
//
// The first cell of a blob is the signature 0xd00dfeed. A blob with a missing
// or different signature is rejected with [ErrBadMagic] before any further
// decoding. Structural damage found later is reported as [ErrCorruptTree].
package fdt
