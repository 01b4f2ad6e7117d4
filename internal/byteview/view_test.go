package byteview

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func testBuffer() []byte {
	buf := make([]byte, 512)
	for i := range buf {
		buf[i] = byte(i)
	}
	return buf
}

func TestAfterWithinRange(t *testing.T) {
	v := New(testBuffer())

	after, err := v.After(3)
	assert.NoError(t, err)
	assert.Equal(t, 3, after.Offset())
	b, err := after.Byte(0)
	assert.NoError(t, err)
	assert.Equal(t, byte(3), b)

	after, err = after.After(5)
	assert.NoError(t, err)
	assert.Equal(t, 8, after.Offset())
	b, err = after.Byte(0)
	assert.NoError(t, err)
	assert.Equal(t, byte(8), b)
}

func TestSliceMatchesBuffer(t *testing.T) {
	buf := testBuffer()
	v := New(buf)

	tests := []struct {
		name string
		a, b int
	}{
		{name: "full", a: 0, b: len(buf)},
		{name: "empty at start", a: 0, b: 0},
		{name: "empty at end", a: len(buf), b: len(buf)},
		{name: "middle", a: 17, b: 301},
		{name: "single byte", a: 255, b: 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after, err := v.After(tt.a)
			assert.NoError(t, err)
			sub, err := after.Until(tt.b - tt.a)
			assert.NoError(t, err)
			assert.True(t, bytes.Equal(buf[tt.a:tt.b], sub.Bytes()))
			assert.Equal(t, tt.b-tt.a, sub.Len())
		})
	}
}

func TestSubViewsShareBuffer(t *testing.T) {
	buf := testBuffer()
	v := New(buf)

	sub, err := v.Slice(10, 20)
	assert.NoError(t, err)
	buf[10] = 0xAA
	b, err := sub.Byte(0)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xAA), b)
}

func TestOutOfRange(t *testing.T) {
	v, err := New(testBuffer()).Slice(100, 110)
	assert.NoError(t, err)

	_, err = v.After(11)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, err = v.Until(11)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, err = v.Slice(5, 4)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, err = v.After(-1)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, err = v.Byte(10)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, err = v.Byte(-1)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, err = v.Uint32(7)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, err = v.Uint16(9)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, err = v.String(8, 3)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	// reads at the very end are still valid
	_, err = v.Uint16(8)
	assert.NoError(t, err)
}

func TestByteOrder(t *testing.T) {
	v := New([]byte{0x01, 0x02, 0x03, 0x04})

	le, err := v.Uint32(0)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x04030201), le)

	be, err := v.Inverted().Uint32(0)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), be)

	s, err := v.WithOrder(binary.BigEndian).Uint16(2)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0304), s)

	// order is inherited by sub views
	sub, err := v.Inverted().After(2)
	assert.NoError(t, err)
	s, err = sub.Uint16(0)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0304), s)
	assert.Equal(t, binary.ByteOrder(binary.LittleEndian), v.Inverted().Inverted().Order())
}

func TestStringAndStartsWith(t *testing.T) {
	v := New([]byte("NARC\xfe\xff"))

	s, err := v.String(0, 4)
	assert.NoError(t, err)
	assert.Equal(t, "NARC", s)

	assert.True(t, v.StartsWith([]byte("NAR")))
	assert.True(t, v.StartsWith(nil))
	assert.False(t, v.StartsWith([]byte("BTNF")))

	short, err := v.Until(2)
	assert.NoError(t, err)
	assert.False(t, short.StartsWith([]byte("NARC")))
}
