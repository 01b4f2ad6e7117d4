// Package nametable decodes the packed name records of ROM and NARC file name tables.
package nametable

import (
	"fmt"

	"github.com/retroenv/ndsrom/internal/byteview"
)

const (
	directoryFlag = 0x80
	lengthMask    = 0x7F
)

// Record is a single entry of a directory name block.
type Record struct {
	Name  string
	IsDir bool
	// DirectoryID is the id of the referenced directory, only set for directory records.
	DirectoryID uint16
}

// Parse decodes all records of one directory name block. Parsing stops at the
// end of the view or at a zero length byte.
//
// A length byte with the top bit set starts a directory record followed by
// the name and a 16 bit directory id, otherwise the byte is the length of a
// file name.
func Parse(block byteview.View) ([]Record, error) {
	var records []Record

	for block.Len() > 0 {
		length, err := block.Byte(0)
		if err != nil {
			return nil, err
		}
		if length == 0 {
			break
		}

		rec := Record{
			IsDir: length&directoryFlag != 0,
		}
		n := int(length & lengthMask)

		rec.Name, err = block.String(1, n)
		if err != nil {
			return nil, fmt.Errorf("reading name at offset 0x%x: %w", block.Offset(), err)
		}
		consumed := 1 + n

		if rec.IsDir {
			rec.DirectoryID, err = block.Uint16(consumed)
			if err != nil {
				return nil, fmt.Errorf("reading directory id of '%s': %w", rec.Name, err)
			}
			consumed += 2
		}

		records = append(records, rec)
		if block, err = block.After(consumed); err != nil {
			return nil, err
		}
	}

	return records, nil
}
