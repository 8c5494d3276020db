// Package buffer implements the wire codec primitives: a growable
// little-endian Writer and a cursor-based Reader over an immutable byte
// slice, plus the two variable-length integer encodings the wire format
// uses (signed zig-zag and unsigned LEB128).
package buffer

import (
	"encoding/binary"
	"math"

	"github.com/keybase/saltpack/encoding/basex"
)

// Writer accumulates bytes for one serialize call in a single byte
// slice. Bytes already written are never rewritten, but when capacity
// runs out (in append or Reserve) the backing array is reallocated and
// the written bytes are copied into it. Treat Dump's result as owned by
// the caller from that point on.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with capacity reserved up front, the way a
// caller that knows roughly how big a value will be can avoid repeated
// growth.
func NewWriter(reserve int) *Writer {
	return &Writer{buf: make([]byte, 0, reserve)}
}

// Reserve grows the backing array's capacity without changing length,
// letting a serializer amortise growth ahead of a burst of writes.
func (w *Writer) Reserve(n int) {
	if cap(w.buf)-len(w.buf) >= n {
		return
	}
	grown := make([]byte, len(w.buf), len(w.buf)+n)
	copy(grown, w.buf)
	w.buf = grown
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes appends a raw byte slice verbatim (no length prefix).
func (w *Writer) Bytes(p []byte) { w.buf = append(w.buf, p...) }

// U8 writes a single byte.
func (w *Writer) U8(v uint8) { w.buf = append(w.buf, v) }

// I8 writes a single signed byte.
func (w *Writer) I8(v int8) { w.U8(uint8(v)) }

// U16 writes a fixed-width little-endian uint16.
func (w *Writer) U16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// I16 writes a fixed-width little-endian int16.
func (w *Writer) I16(v int16) { w.U16(uint16(v)) }

// U32 writes a fixed-width little-endian uint32.
func (w *Writer) U32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// I32 writes a fixed-width little-endian int32.
func (w *Writer) I32(v int32) { w.U32(uint32(v)) }

// U64 writes a fixed-width little-endian uint64.
func (w *Writer) U64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// I64 writes a fixed-width little-endian int64.
func (w *Writer) I64(v int64) { w.U64(uint64(v)) }

// F32 writes an IEEE-754 little-endian float32.
func (w *Writer) F32(v float32) { w.U32(math.Float32bits(v)) }

// F64 writes an IEEE-754 little-endian float64.
func (w *Writer) F64(v float64) { w.U64(math.Float64bits(v)) }

// VarUint32 writes v as unsigned LEB128: groups of 7 bits, low bits
// first, continuation signalled by the high bit of each byte.
func (w *Writer) VarUint32(v uint32) {
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

// VarInt32 zig-zag encodes v, then writes it as VarUint32:
// (v << 1) ^ (v >> 31).
func (w *Writer) VarInt32(v int32) {
	w.VarUint32(uint32((v << 1) ^ (v >> 31)))
}

// Dump returns the accumulated bytes. The Writer must not be reused
// after Dump; ownership of the slice passes to the caller.
func (w *Writer) Dump() []byte { return w.buf }

// DebugString renders the bytes written so far as base62, for log lines
// and test failure output only; it is never part of the wire path.
func DebugString(p []byte) string {
	return basex.Base62StdEncoding.EncodeToString(p)
}
