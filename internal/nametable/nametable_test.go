package nametable

import (
	"errors"
	"testing"

	"github.com/retroenv/ndsrom/internal/byteview"
	"github.com/retroenv/retrogolib/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  []Record
	}{
		{
			name:  "empty block",
			input: nil,
			want:  nil,
		},
		{
			name:  "single file",
			input: []byte{0x05, 'a', '.', 't', 'x', 't'},
			want:  []Record{{Name: "a.txt"}},
		},
		{
			name: "directory records from a real rom",
			input: []byte{
				0x81, 'a', 0x01, 0xf0,
				0x86, 'd', 'l', '_', 'r', 'o', 'm', 0x1d, 0xf0,
			},
			want: []Record{
				{Name: "a", IsDir: true, DirectoryID: 0xf001},
				{Name: "dl_rom", IsDir: true, DirectoryID: 0xf01d},
			},
		},
		{
			name: "mixed records stop at terminator",
			input: []byte{
				0x01, 'x',
				0x83, 's', 'u', 'b', 0x02, 0xf0,
				0x01, 'y',
				0x00,
				0x01, 'z',
			},
			want: []Record{
				{Name: "x"},
				{Name: "sub", IsDir: true, DirectoryID: 0xf002},
				{Name: "y"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(byteview.New(tt.input))
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTruncated(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "name cut short", input: []byte{0x05, 'a', 'b'}},
		{name: "directory id missing", input: []byte{0x81, 'a', 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(byteview.New(tt.input))
			assert.True(t, errors.Is(err, byteview.ErrOutOfRange))
		})
	}
}
