// Package ndstest assembles synthetic ROM images, containers and NARC
// archives for tests.
package ndstest

import (
	"encoding/binary"
	"sort"
)

// Dir describes one directory record of a file name table. Parent is
// ignored for the root record which stores the directory count instead.
type Dir struct {
	FirstFile uint16
	Parent    uint16
	Names     [][]byte
}

// Section is a container section with its content.
type Section struct {
	Magic string
	Body  []byte
}

// FileName encodes a file name record.
func FileName(name string) []byte {
	return append([]byte{byte(len(name))}, name...)
}

// DirName encodes a directory name record referencing the directory id.
func DirName(name string, id uint16) []byte {
	b := append([]byte{0x80 | byte(len(name))}, name...)
	return binary.LittleEndian.AppendUint16(b, id)
}

// NameTable encodes the directory records followed by the name blocks.
// Blocks are stored in ascending first file order.
func NameTable(dirs []Dir) []byte {
	order := make([]int, len(dirs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dirs[order[a]].FirstFile < dirs[order[b]].FirstFile
	})

	table := make([]byte, 8*len(dirs))
	for _, idx := range order {
		dir := dirs[idx]
		parent := dir.Parent
		if idx == 0 {
			parent = uint16(len(dirs))
		}

		binary.LittleEndian.PutUint32(table[idx*8:], uint32(len(table)))
		binary.LittleEndian.PutUint16(table[idx*8+4:], dir.FirstFile)
		binary.LittleEndian.PutUint16(table[idx*8+6:], parent)

		for _, name := range dir.Names {
			table = append(table, name...)
		}
		table = append(table, 0)
	}
	return table
}

// AllocRecords encodes allocation records from start and end offset pairs.
func AllocRecords(bounds ...uint32) []byte {
	alloc := make([]byte, 0, 4*len(bounds))
	for _, b := range bounds {
		alloc = binary.LittleEndian.AppendUint32(alloc, b)
	}
	return alloc
}

// AllocTable lays out the files back to back starting at base and returns
// the allocation table and the concatenated file data.
func AllocTable(base uint32, files [][]byte) ([]byte, []byte) {
	alloc := make([]byte, 8*len(files))
	var data []byte
	for i, file := range files {
		start := base + uint32(len(data))
		binary.LittleEndian.PutUint32(alloc[i*8:], start)
		binary.LittleEndian.PutUint32(alloc[i*8+4:], start+uint32(len(file)))
		data = append(data, file...)
	}
	return alloc, data
}

// Container encodes a container with a FF FE 00 01 marker. The remaining
// header fields and section lengths are little-endian.
func Container(magic string, sections ...Section) []byte {
	return container(magic, []byte{0xFF, 0xFE, 0x00, 0x01}, binary.LittleEndian, sections)
}

// ContainerBigEndian encodes a container with a 01 00 FE FF marker. The
// remaining header fields and section lengths are big-endian.
func ContainerBigEndian(magic string, sections ...Section) []byte {
	return container(magic, []byte{0x01, 0x00, 0xFE, 0xFF}, binary.BigEndian, sections)
}

// ArchiveContainer encodes a container with the FE FF 00 01 marker that
// NARC files carry. The remaining fields are little-endian.
func ArchiveContainer(magic string, sections ...Section) []byte {
	return container(magic, []byte{0xFE, 0xFF, 0x00, 0x01}, binary.LittleEndian, sections)
}

func container(magic string, marker []byte, order binary.AppendByteOrder, sections []Section) []byte {
	var body []byte
	for _, sec := range sections {
		body = append(body, sec.Magic...)
		body = order.AppendUint32(body, uint32(8+len(sec.Body)))
		body = append(body, sec.Body...)
	}

	buf := make([]byte, 0, 0x10+len(body))
	buf = append(buf, magic...)
	buf = append(buf, marker...)
	buf = order.AppendUint32(buf, uint32(0x10+len(body)))
	buf = order.AppendUint16(buf, 0x10)
	buf = order.AppendUint16(buf, uint16(len(sections)))
	return append(buf, body...)
}

// Narc encodes a NARC archive holding files in id order.
func Narc(dirs []Dir, files [][]byte) []byte {
	alloc, data := AllocTable(0, files)
	btaf := binary.LittleEndian.AppendUint32(nil, uint32(len(files)))
	btaf = append(btaf, alloc...)

	return ArchiveContainer("NARC",
		Section{Magic: "BTAF", Body: btaf},
		Section{Magic: "BTNF", Body: NameTable(dirs)},
		Section{Magic: "GMIF", Body: data},
	)
}

// ROM header layout.
const (
	romHeaderSize = 0x200
	fntOffset     = 0x40
)

// ROM encodes a ROM image with the given header fields, name table and
// files in id order. The name table follows the header, the allocation
// table and file data follow the name table.
func ROM(title, gameCode string, dirs []Dir, files [][]byte) []byte {
	buf := make([]byte, romHeaderSize)
	copy(buf[0:12], title)
	copy(buf[0x0C:0x10], gameCode)
	copy(buf[0x10:0x12], "01")

	fnt := NameTable(dirs)
	fntStart := uint32(len(buf))
	fatStart := fntStart + uint32(len(fnt))
	dataStart := fatStart + uint32(8*len(files))

	alloc, data := AllocTable(dataStart, files)

	binary.LittleEndian.PutUint32(buf[fntOffset:], fntStart)
	binary.LittleEndian.PutUint32(buf[fntOffset+4:], uint32(len(fnt)))
	binary.LittleEndian.PutUint32(buf[fntOffset+8:], fatStart)
	binary.LittleEndian.PutUint32(buf[fntOffset+12:], uint32(len(alloc)))

	buf = append(buf, fnt...)
	buf = append(buf, alloc...)
	return append(buf, data...)
}
