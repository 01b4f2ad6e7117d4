// Package rom decodes the header and the file system of Nintendo DS ROM images.
package rom

import (
	"bytes"
	"fmt"

	"github.com/retroenv/ndsrom/internal/byteview"
	"github.com/retroenv/ndsrom/internal/container"
	"github.com/retroenv/ndsrom/internal/filetable"
	"github.com/retroenv/ndsrom/internal/narc"
	"github.com/retroenv/ndsrom/internal/progress"
)

// Header field offsets.
const (
	titleOffset     = 0x00
	titleLength     = 12
	gameCodeOffset  = 0x0C
	makerCodeOffset = 0x10
	unitCodeOffset  = 0x12

	fntOffset       = 0x40
	fntLengthOffset = 0x44
	fatOffset       = 0x48
	fatLengthOffset = 0x4C

	headerSize = 0x50
)

// Region is an absolute byte range of the ROM.
type Region struct {
	Offset uint32
	Length uint32
}

// Header contains the decoded cartridge header fields.
type Header struct {
	Title     string
	GameCode  string
	MakerCode string
	UnitCode  uint8

	FNT Region // file name table
	FAT Region // file allocation table
}

// ROM is a decoded cartridge image.
type ROM struct {
	Header Header
	Table  *filetable.Table

	data     byteview.View
	obs      progress.Observer
	archives *narc.Index
}

// Decode decodes the header and the file tree of a ROM image. The allocation
// table ranges are absolute offsets into the image.
func Decode(buf []byte, obs progress.Observer) (*ROM, error) {
	r := &ROM{
		data: byteview.New(buf),
		obs:  progress.OrNop(obs),
	}

	var err error
	if r.Header, err = readHeader(r.data); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	fnt, err := r.region(r.Header.FNT)
	if err != nil {
		return nil, fmt.Errorf("file name table: %w", err)
	}
	fat, err := r.region(r.Header.FAT)
	if err != nil {
		return nil, fmt.Errorf("file allocation table: %w", err)
	}

	if r.Table, err = filetable.Build(filetable.RomLayout, fat, fnt, r.data, r.obs); err != nil {
		return nil, fmt.Errorf("building file table: %w", err)
	}
	return r, nil
}

// ExpandArchives decodes all NARC archives contained in the ROM files,
// including archives nested in other archives. Archives that fail to decode
// are reported in the returned error, all others remain available.
func (r *ROM) ExpandArchives() error {
	if r.archives == nil {
		r.archives = narc.NewIndex(r.obs)
	}
	return r.archives.Expand(r.Table)
}

// Archives returns the index of the archives decoded by ExpandArchives.
func (r *ROM) Archives() *narc.Index {
	return r.archives
}

// Archive returns the archive decoded from the given file.
func (r *ROM) Archive(file *filetable.Entry) (*narc.Narc, bool) {
	return r.archives.Lookup(file)
}

// Scan searches the complete image for embedded containers.
func (r *ROM) Scan() []*container.Segment {
	return container.Scan(r.data, r.obs)
}

// Size returns the size of the image in bytes.
func (r *ROM) Size() int {
	return r.data.Len()
}

func (r *ROM) region(reg Region) (byteview.View, error) {
	end := uint64(reg.Offset) + uint64(reg.Length)
	if end > uint64(r.data.Len()) {
		return byteview.View{}, fmt.Errorf("%w: region 0x%x-0x%x exceeds image size 0x%x",
			byteview.ErrOutOfRange, reg.Offset, end, r.data.Len())
	}
	return r.data.Slice(int(reg.Offset), int(end))
}

func readHeader(data byteview.View) (Header, error) {
	if data.Len() < headerSize {
		return Header{}, fmt.Errorf("%w: image has %d bytes, header needs %d",
			byteview.ErrOutOfRange, data.Len(), headerSize)
	}

	var h Header
	title, _ := data.Slice(titleOffset, titleOffset+titleLength)
	h.Title = string(bytes.TrimRight(title.Bytes(), "\x00"))
	h.GameCode, _ = data.String(gameCodeOffset, 4)
	h.MakerCode, _ = data.String(makerCodeOffset, 2)
	h.UnitCode, _ = data.Byte(unitCodeOffset)

	h.FNT.Offset, _ = data.Uint32(fntOffset)
	h.FNT.Length, _ = data.Uint32(fntLengthOffset)
	h.FAT.Offset, _ = data.Uint32(fatOffset)
	h.FAT.Length, _ = data.Uint32(fatLengthOffset)
	return h, nil
}
