package tiff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

//------------------------//
// ByteReader             //
//------------------------//

// A ByteReader reads byte order aware primitives from an in-memory buffer.
// It keeps a cursor for sequential reads; the *At variants read at an
// absolute offset and leave the cursor untouched.
type ByteReader struct {
	buf   []byte
	order binary.ByteOrder
	next  int
}

// NewByteReader returns a reader over buf. The buffer is not copied.
func NewByteReader(buf []byte, order binary.ByteOrder) *ByteReader {
	return &ByteReader{
		buf:   buf,
		order: order,
	}
}

// Next returns the cursor position.
func (r *ByteReader) Next() int {
	return r.next
}

// Seek moves the cursor to the absolute offset.
func (r *ByteReader) Seek(offset int) error {
	if offset < 0 || offset > len(r.buf) {
		return RangeError(fmt.Sprintf("seek to %d, buffer length %d", offset, len(r.buf)))
	}
	r.next = offset
	return nil
}

// Order returns the byte order used by numeric reads.
func (r *ByteReader) Order() binary.ByteOrder {
	return r.order
}

// SetOrder changes the byte order used by numeric reads.
func (r *ByteReader) SetOrder(order binary.ByteOrder) {
	r.order = order
}

// Len returns the length of the underlying buffer.
func (r *ByteReader) Len() int {
	return len(r.buf)
}

// HasBytes reports whether n bytes are available after the cursor.
func (r *ByteReader) HasBytes(n int) bool {
	return r.next+n <= len(r.buf)
}

// window returns the n bytes at offset without copying.
func (r *ByteReader) window(offset, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset+n > len(r.buf) {
		return nil, RangeError(fmt.Sprintf("read of %d bytes at %d, buffer length %d", n, offset, len(r.buf)))
	}
	return r.buf[offset : offset+n], nil
}

// advance returns the n bytes at the cursor and moves past them.
func (r *ByteReader) advance(n int) ([]byte, error) {
	p, err := r.window(r.next, n)
	if err != nil {
		return nil, err
	}
	r.next += n
	return p, nil
}

// ReadBytes reads n bytes at the cursor. The returned slice is a copy.
func (r *ByteReader) ReadBytes(n int) ([]byte, error) {
	p, err := r.advance(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), p...), nil
}

// ReadBytesAt reads n bytes at offset. The returned slice is a copy.
func (r *ByteReader) ReadBytesAt(offset, n int) ([]byte, error) {
	p, err := r.window(offset, n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), p...), nil
}

// ReadInt8 reads a signed byte at the cursor.
func (r *ByteReader) ReadInt8() (int8, error) {
	p, err := r.advance(1)
	if err != nil {
		return 0, err
	}
	return int8(p[0]), nil
}

// ReadInt8At reads a signed byte at offset.
func (r *ByteReader) ReadInt8At(offset int) (int8, error) {
	p, err := r.window(offset, 1)
	if err != nil {
		return 0, err
	}
	return int8(p[0]), nil
}

// ReadUint8 reads a byte at the cursor.
func (r *ByteReader) ReadUint8() (uint8, error) {
	p, err := r.advance(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// ReadUint8At reads a byte at offset.
func (r *ByteReader) ReadUint8At(offset int) (uint8, error) {
	p, err := r.window(offset, 1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// ReadInt16 reads a signed 16-bit integer at the cursor.
func (r *ByteReader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadInt16At reads a signed 16-bit integer at offset.
func (r *ByteReader) ReadInt16At(offset int) (int16, error) {
	v, err := r.ReadUint16At(offset)
	return int16(v), err
}

// ReadUint16 reads an unsigned 16-bit integer at the cursor.
func (r *ByteReader) ReadUint16() (uint16, error) {
	p, err := r.advance(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(p), nil
}

// ReadUint16At reads an unsigned 16-bit integer at offset.
func (r *ByteReader) ReadUint16At(offset int) (uint16, error) {
	p, err := r.window(offset, 2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(p), nil
}

// ReadInt32 reads a signed 32-bit integer at the cursor.
func (r *ByteReader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadInt32At reads a signed 32-bit integer at offset.
func (r *ByteReader) ReadInt32At(offset int) (int32, error) {
	v, err := r.ReadUint32At(offset)
	return int32(v), err
}

// ReadUint32 reads an unsigned 32-bit integer at the cursor.
func (r *ByteReader) ReadUint32() (uint32, error) {
	p, err := r.advance(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(p), nil
}

// ReadUint32At reads an unsigned 32-bit integer at offset.
func (r *ByteReader) ReadUint32At(offset int) (uint32, error) {
	p, err := r.window(offset, 4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(p), nil
}

// ReadFloat32 reads an IEEE 754 single at the cursor.
func (r *ByteReader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat32At reads an IEEE 754 single at offset.
func (r *ByteReader) ReadFloat32At(offset int) (float32, error) {
	v, err := r.ReadUint32At(offset)
	return math.Float32frombits(v), err
}

// ReadFloat64 reads an IEEE 754 double at the cursor.
func (r *ByteReader) ReadFloat64() (float64, error) {
	p, err := r.advance(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(r.order.Uint64(p)), nil
}

// ReadFloat64At reads an IEEE 754 double at offset.
func (r *ByteReader) ReadFloat64At(offset int) (float64, error) {
	p, err := r.window(offset, 8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(r.order.Uint64(p)), nil
}

// ReadString reads n ASCII bytes at the cursor. A lone NUL byte is the
// empty string.
func (r *ByteReader) ReadString(n int) (string, error) {
	p, err := r.advance(n)
	if err != nil {
		return "", err
	}
	return asciiString(p), nil
}

// ReadStringAt reads n ASCII bytes at offset.
func (r *ByteReader) ReadStringAt(offset, n int) (string, error) {
	p, err := r.window(offset, n)
	if err != nil {
		return "", err
	}
	return asciiString(p), nil
}

func asciiString(p []byte) string {
	if len(p) == 1 && p[0] == 0 {
		return ""
	}
	return string(p)
}

//------------------------//
// ByteWriter             //
//------------------------//

// A ByteWriter accumulates byte order aware primitives into a growable buffer.
type ByteWriter struct {
	buf   bytes.Buffer
	order binary.ByteOrder
	tmp   [8]byte
}

// NewByteWriter returns an empty writer.
func NewByteWriter(order binary.ByteOrder) *ByteWriter {
	return &ByteWriter{order: order}
}

// Order returns the byte order used by numeric writes.
func (w *ByteWriter) Order() binary.ByteOrder {
	return w.order
}

// Size returns the number of bytes written so far.
func (w *ByteWriter) Size() int {
	return w.buf.Len()
}

// Bytes returns the written bytes. The slice aliases the internal buffer.
func (w *ByteWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// WriteBytes appends p and returns len(p).
func (w *ByteWriter) WriteBytes(p []byte) int {
	n, _ := w.buf.Write(p) // bytes.Buffer never fails
	return n
}

// WriteString writes the ASCII bytes of s and returns how many were written.
func (w *ByteWriter) WriteString(s string) int {
	n, _ := w.buf.WriteString(s)
	return n
}

// WriteInt8 appends a signed byte.
func (w *ByteWriter) WriteInt8(v int8) {
	w.buf.WriteByte(byte(v))
}

// WriteUint8 appends a byte.
func (w *ByteWriter) WriteUint8(v uint8) {
	w.buf.WriteByte(v)
}

// WriteInt16 appends a signed 16-bit integer.
func (w *ByteWriter) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

// WriteUint16 appends an unsigned 16-bit integer.
func (w *ByteWriter) WriteUint16(v uint16) {
	w.order.PutUint16(w.tmp[:2], v)
	w.buf.Write(w.tmp[:2])
}

// WriteInt32 appends a signed 32-bit integer.
func (w *ByteWriter) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteUint32 appends an unsigned 32-bit integer.
func (w *ByteWriter) WriteUint32(v uint32) {
	w.order.PutUint32(w.tmp[:4], v)
	w.buf.Write(w.tmp[:4])
}

// WriteFloat32 appends an IEEE 754 single.
func (w *ByteWriter) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 appends an IEEE 754 double.
func (w *ByteWriter) WriteFloat64(v float64) {
	w.order.PutUint64(w.tmp[:8], math.Float64bits(v))
	w.buf.Write(w.tmp[:8])
}
