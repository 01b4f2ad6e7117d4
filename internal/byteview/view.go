// Package byteview provides a bounds checked, read-only window over a shared
// byte buffer with a switchable byte order.
package byteview

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when an operation requests bytes outside the view.
var ErrOutOfRange = errors.New("out of range")

// View is a read-only window [start, end) into a shared buffer.
// Sub views never copy the buffer and can only narrow the window.
type View struct {
	buf   []byte
	start int
	end   int
	order binary.ByteOrder
}

// New returns a view over the complete buffer. Multi-byte reads default to
// little-endian, the native order of Nintendo DS data.
func New(buf []byte) View {
	return View{
		buf:   buf,
		end:   len(buf),
		order: binary.LittleEndian,
	}
}

// Len returns the number of bytes in the view.
func (v View) Len() int {
	return v.end - v.start
}

// Offset returns the absolute offset of the view start within the buffer.
func (v View) Offset() int {
	return v.start
}

// Order returns the byte order used by multi-byte reads.
func (v View) Order() binary.ByteOrder {
	return v.order
}

// WithOrder returns a copy of the view that reads with the given byte order.
func (v View) WithOrder(order binary.ByteOrder) View {
	v.order = order
	return v
}

// Inverted returns a copy of the view with the opposite byte order.
func (v View) Inverted() View {
	if v.order == binary.BigEndian {
		v.order = binary.LittleEndian
	} else {
		v.order = binary.BigEndian
	}
	return v
}

// After returns the view without its first n bytes.
func (v View) After(n int) (View, error) {
	return v.Slice(n, v.Len())
}

// Until returns the first n bytes of the view.
func (v View) Until(n int) (View, error) {
	return v.Slice(0, n)
}

// Slice returns the sub view [from, to) relative to the view start.
func (v View) Slice(from, to int) (View, error) {
	if from < 0 || from > to || to > v.Len() {
		return View{}, fmt.Errorf("%w: slice [%d:%d] of view with length %d", ErrOutOfRange, from, to, v.Len())
	}
	sub := v
	sub.start = v.start + from
	sub.end = v.start + to
	return sub, nil
}

// Byte returns the byte at index i.
func (v View) Byte(i int) (byte, error) {
	if i < 0 || i >= v.Len() {
		return 0, fmt.Errorf("%w: index %d of view with length %d", ErrOutOfRange, i, v.Len())
	}
	return v.buf[v.start+i], nil
}

// Uint16 reads a 16 bit value at offset using the view byte order.
func (v View) Uint16(offset int) (uint16, error) {
	b, err := v.window(offset, 2)
	if err != nil {
		return 0, err
	}
	return v.order.Uint16(b), nil
}

// Uint32 reads a 32 bit value at offset using the view byte order.
func (v View) Uint32(offset int) (uint32, error) {
	b, err := v.window(offset, 4)
	if err != nil {
		return 0, err
	}
	return v.order.Uint32(b), nil
}

// String decodes length bytes at offset as UTF-8 text.
func (v View) String(offset, length int) (string, error) {
	b, err := v.window(offset, length)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// StartsWith reports whether the view begins with pattern.
func (v View) StartsWith(pattern []byte) bool {
	if len(pattern) > v.Len() {
		return false
	}
	for i, c := range pattern {
		if v.buf[v.start+i] != c {
			return false
		}
	}
	return true
}

// Bytes returns the bytes of the view. The returned slice aliases the shared
// buffer and must not be modified.
func (v View) Bytes() []byte {
	return v.buf[v.start:v.end:v.end]
}

func (v View) window(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset > v.Len()-length {
		return nil, fmt.Errorf("%w: %d bytes at offset %d of view with length %d",
			ErrOutOfRange, length, offset, v.Len())
	}
	pos := v.start + offset
	return v.buf[pos : pos+length], nil
}
