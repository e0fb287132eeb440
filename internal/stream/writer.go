package stream

import (
	"encoding/binary"
	"math"
)

// Writer accumulates binary output for a record stream. All multi-byte
// values are written in little-endian order, the same layout Reader
// expects back.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the accumulated output. The returned slice aliases the
// Writer's internal buffer and must not be mutated by the caller.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteU8 appends an unsigned 8-bit integer.
func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteU16 appends an unsigned 16-bit integer.
func (w *Writer) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU32 appends an unsigned 32-bit integer.
func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU64 appends an unsigned 64-bit integer.
func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteI8 appends a signed 8-bit integer.
func (w *Writer) WriteI8(v int8) { w.WriteU8(uint8(v)) }

// WriteI16 appends a signed 16-bit integer.
func (w *Writer) WriteI16(v int16) { w.WriteU16(uint16(v)) }

// WriteI32 appends a signed 32-bit integer.
func (w *Writer) WriteI32(v int32) { w.WriteU32(uint32(v)) }

// WriteI64 appends a signed 64-bit integer.
func (w *Writer) WriteI64(v int64) { w.WriteU64(uint64(v)) }

// WriteFloat32 appends a 32-bit float.
func (w *Writer) WriteFloat32(v float32) { w.WriteU32(math.Float32bits(v)) }

// WriteFloat64 appends a 64-bit float.
func (w *Writer) WriteFloat64(v float64) { w.WriteU64(math.Float64bits(v)) }

// WriteBytes appends raw bytes verbatim.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteVarint appends v as a base-128 varint: low 7 bits per byte,
// least-significant group first, high bit set on every byte but the last.
func (w *Writer) WriteVarint(v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			w.buf = append(w.buf, b|0x80)
			continue
		}
		w.buf = append(w.buf, b)
		return
	}
}

// WriteString appends s as a varint-prefixed, UTF-8 encoded string.
func (w *Writer) WriteString(s string) {
	w.WriteVarint(uint32(len(s)))
	w.buf = append(w.buf, s...)
}
