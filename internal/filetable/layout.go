package filetable

import (
	"fmt"

	"github.com/retroenv/ndsrom/internal/byteview"
)

// Layout selects how the directory records of a name table are located.
type Layout int

const (
	// RomLayout reads the directory table at offset 0 of the name table,
	// the directory count is stored in the root record.
	RomLayout Layout = iota
	// NarcLayout skips an optional embedded BTNF header and reads the
	// directory count at offset 6 of the directory table.
	NarcLayout
)

const directoryRecordSize = 8

var btnfMagic = []byte("BTNF")

// directoryRecord is the fixed size record of a directory in a name table.
type directoryRecord struct {
	index          int
	nameListOffset uint32
	firstFileIndex uint16
	// parent directory id, for the root record the total directory count
	parentOrCount uint16
}

func (l Layout) String() string {
	switch l {
	case RomLayout:
		return "rom"
	case NarcLayout:
		return "narc"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// readDirectories returns the name table view that name list offsets are
// relative to and all directory records in id order.
func (l Layout) readDirectories(nameTable byteview.View) (byteview.View, []directoryRecord, error) {
	var count uint16
	var err error

	switch l {
	case RomLayout:
		root, err := readDirectoryRecord(nameTable, 0)
		if err != nil {
			return byteview.View{}, nil, fmt.Errorf("reading root directory: %w", err)
		}
		count = root.parentOrCount

	case NarcLayout:
		if nameTable.StartsWith(btnfMagic) {
			if nameTable, err = nameTable.After(8); err != nil {
				return byteview.View{}, nil, fmt.Errorf("skipping BTNF header: %w", err)
			}
		}
		if count, err = nameTable.Uint16(6); err != nil {
			return byteview.View{}, nil, fmt.Errorf("reading directory count: %w", err)
		}

	default:
		return byteview.View{}, nil, fmt.Errorf("unsupported layout %s", l)
	}

	// a table always contains the root directory
	if count == 0 {
		count = 1
	}

	dirs := make([]directoryRecord, 0, count)
	for i := 0; i < int(count); i++ {
		dir, err := readDirectoryRecord(nameTable, i)
		if err != nil {
			return byteview.View{}, nil, fmt.Errorf("reading directory %d: %w", i, err)
		}
		dirs = append(dirs, dir)
	}
	return nameTable, dirs, nil
}

func readDirectoryRecord(nameTable byteview.View, index int) (directoryRecord, error) {
	rec, err := nameTable.Slice(index*directoryRecordSize, (index+1)*directoryRecordSize)
	if err != nil {
		return directoryRecord{}, err
	}

	dir := directoryRecord{index: index}
	if dir.nameListOffset, err = rec.Uint32(0); err != nil {
		return directoryRecord{}, err
	}
	if dir.firstFileIndex, err = rec.Uint16(4); err != nil {
		return directoryRecord{}, err
	}
	if dir.parentOrCount, err = rec.Uint16(6); err != nil {
		return directoryRecord{}, err
	}
	return dir, nil
}
