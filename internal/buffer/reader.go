package buffer

import (
	"encoding/binary"
	"math"

	"github.com/fory-project/fory-go-core/internal/ferr"
)

// Reader decodes bytes written by a Writer, advancing a cursor over an
// immutable byte slice. Reads at or past end never touch memory outside
// the slice; they return a MalformedStream error instead.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential decoding. buf is not copied; the
// caller must not mutate it while the Reader is in use.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return ferr.Truncated("read", n, r.Remaining())
	}
	return nil
}

// Bytes reads and returns n raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	p := r.buf[r.pos : r.pos+n]
	r.pos += n
	return p, nil
}

// Skip advances the cursor by n bytes without returning them, the
// primitive the skip walk (§4.7) is built from.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// U8 reads a single byte.
func (r *Reader) U8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// I8 reads a single signed byte.
func (r *Reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

// U16 reads a fixed-width little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	p, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(p), nil
}

// I16 reads a fixed-width little-endian int16.
func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// U32 reads a fixed-width little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	p, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

// I32 reads a fixed-width little-endian int32.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// U64 reads a fixed-width little-endian uint64.
func (r *Reader) U64() (uint64, error) {
	p, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

// I64 reads a fixed-width little-endian int64.
func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

// F32 reads an IEEE-754 little-endian float32.
func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

// F64 reads an IEEE-754 little-endian float64.
func (r *Reader) F64() (float64, error) {
	v, err := r.U64()
	return math.Float64frombits(v), err
}

// maxVarintBytes is the five-byte bound spec.md §4.1 fixes for
// VarUint32: a varint longer than this is malformed.
const maxVarintBytes = 5

// VarUint32 reads an unsigned LEB128 value, terminating at the first
// byte whose high bit is clear. If the fifth byte still has its high
// bit set (a varint longer than five bytes), it returns a
// malformed-stream error.
func (r *Reader) VarUint32() (uint32, error) {
	var result uint32
	var shift uint
	for i := 0; i < maxVarintBytes; i++ {
		b, err := r.U8()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
	return 0, ferr.VarintTooLong()
}

// VarInt32 reads a VarUint32 and undoes the zig-zag mapping.
func (r *Reader) VarInt32() (int32, error) {
	u, err := r.VarUint32()
	if err != nil {
		return 0, err
	}
	return int32(u>>1) ^ -int32(u&1), nil
}
