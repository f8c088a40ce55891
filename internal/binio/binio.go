// Package binio provides bounds-checked fixed-width binary encoding and
// decoding over byte slices in a caller-chosen byte order.
//
// NRRD raw payloads may be stored in either byte order, so unlike a
// single-order codec every Reader and Writer carries its own
// binary.ByteOrder. Element accessors address the slice by element index,
// which is how the raw data codec walks foreign-endian payloads.
package binio

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	// ErrShortBuffer is returned when a read or write operation cannot complete
	// because there isn't enough space in the buffer.
	ErrShortBuffer = errors.New("binio: buffer too short")

	// ErrNegativeSize is returned when a size parameter is negative.
	ErrNegativeSize = errors.New("binio: negative size")
)

// NativeEndian is the byte order of the host.
var NativeEndian binary.ByteOrder

func init() {
	// binary.NativeEndian is not comparable with the two named orders.
	if binary.NativeEndian.Uint16([]byte{1, 0}) == 1 {
		NativeEndian = binary.LittleEndian
	} else {
		NativeEndian = binary.BigEndian
	}
}

// IsNative reports whether order matches the host byte order.
func IsNative(order binary.ByteOrder) bool {
	return order == NativeEndian
}

// Reader provides bounds-checked element reads from a byte slice.
type Reader struct {
	data  []byte
	order binary.ByteOrder
}

// NewReader creates a Reader over data using the given byte order.
func NewReader(data []byte, order binary.ByteOrder) *Reader {
	return &Reader{data: data, order: order}
}

func (r *Reader) span(i, size int) ([]byte, error) {
	if i < 0 {
		return nil, ErrNegativeSize
	}
	off := i * size
	if off+size > len(r.data) {
		return nil, ErrShortBuffer
	}
	return r.data[off : off+size], nil
}

// Uint16 reads the i-th unsigned 16-bit element.
func (r *Reader) Uint16(i int) (uint16, error) {
	b, err := r.span(i, 2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

// Int16 reads the i-th signed 16-bit element.
func (r *Reader) Int16(i int) (int16, error) {
	v, err := r.Uint16(i)
	return int16(v), err
}

// Uint32 reads the i-th unsigned 32-bit element.
func (r *Reader) Uint32(i int) (uint32, error) {
	b, err := r.span(i, 4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// Int32 reads the i-th signed 32-bit element.
func (r *Reader) Int32(i int) (int32, error) {
	v, err := r.Uint32(i)
	return int32(v), err
}

// Uint64 reads the i-th unsigned 64-bit element.
func (r *Reader) Uint64(i int) (uint64, error) {
	b, err := r.span(i, 8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(b), nil
}

// Int64 reads the i-th signed 64-bit element.
func (r *Reader) Int64(i int) (int64, error) {
	v, err := r.Uint64(i)
	return int64(v), err
}

// Float32 reads the i-th 32-bit IEEE 754 element.
func (r *Reader) Float32(i int) (float32, error) {
	v, err := r.Uint32(i)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Float64 reads the i-th 64-bit IEEE 754 element.
func (r *Reader) Float64(i int) (float64, error) {
	v, err := r.Uint64(i)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// Writer provides bounds-checked element writes into a fixed byte slice.
type Writer struct {
	data  []byte
	order binary.ByteOrder
}

// NewWriter creates a Writer over data using the given byte order.
func NewWriter(data []byte, order binary.ByteOrder) *Writer {
	return &Writer{data: data, order: order}
}

func (w *Writer) span(i, size int) ([]byte, error) {
	if i < 0 {
		return nil, ErrNegativeSize
	}
	off := i * size
	if off+size > len(w.data) {
		return nil, ErrShortBuffer
	}
	return w.data[off : off+size], nil
}

// PutUint16 writes v as the i-th unsigned 16-bit element.
func (w *Writer) PutUint16(i int, v uint16) error {
	b, err := w.span(i, 2)
	if err != nil {
		return err
	}
	w.order.PutUint16(b, v)
	return nil
}

// PutInt16 writes v as the i-th signed 16-bit element.
func (w *Writer) PutInt16(i int, v int16) error {
	return w.PutUint16(i, uint16(v))
}

// PutUint32 writes v as the i-th unsigned 32-bit element.
func (w *Writer) PutUint32(i int, v uint32) error {
	b, err := w.span(i, 4)
	if err != nil {
		return err
	}
	w.order.PutUint32(b, v)
	return nil
}

// PutInt32 writes v as the i-th signed 32-bit element.
func (w *Writer) PutInt32(i int, v int32) error {
	return w.PutUint32(i, uint32(v))
}

// PutUint64 writes v as the i-th unsigned 64-bit element.
func (w *Writer) PutUint64(i int, v uint64) error {
	b, err := w.span(i, 8)
	if err != nil {
		return err
	}
	w.order.PutUint64(b, v)
	return nil
}

// PutInt64 writes v as the i-th signed 64-bit element.
func (w *Writer) PutInt64(i int, v int64) error {
	return w.PutUint64(i, uint64(v))
}

// PutFloat32 writes v as the i-th 32-bit IEEE 754 element.
func (w *Writer) PutFloat32(i int, v float32) error {
	return w.PutUint32(i, math.Float32bits(v))
}

// PutFloat64 writes v as the i-th 64-bit IEEE 754 element.
func (w *Writer) PutFloat64(i int, v float64) error {
	return w.PutUint64(i, math.Float64bits(v))
}
