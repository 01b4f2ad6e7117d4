// Package container parses the generic segment/section container format
// shared by NARC archives and the Nintendo DS graphics formats, and scans raw
// ROM bytes for embedded containers.
package container

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/retroenv/ndsrom/internal/byteview"
	"github.com/retroenv/ndsrom/internal/progress"
)

var (
	// ErrUnrecognizedContainer signals that the bytes do not start a known container.
	ErrUnrecognizedContainer = errors.New("unrecognized container")
	// ErrMalformedSection signals a section whose length exceeds the container.
	ErrMalformedSection = errors.New("malformed section")
)

const (
	headerSize        = 0x10
	sectionHeaderSize = 8

	soundDataMagic = "SDAT"
)

var (
	// byte order marker as stored by the DS graphics formats, FF FE 00 01
	orderMarker = []byte{0xFF, 0xFE, 0x00, 0x01}
	// byte order marker as stored by NARC archives, FE FF 00 01
	archiveOrderMarker = []byte{0xFE, 0xFF, 0x00, 0x01}
	// the graphics marker stored in opposite byte order
	reversedOrderMarker = []byte{0x01, 0x00, 0xFE, 0xFF}
)

// knownMagics lists the recognized container signatures. Some formats store
// their signature reversed, both orientations are accepted.
var knownMagics = map[string]string{
	"NARC": "NARC", "CRAN": "NARC",
	"NCLR": "NCLR", "RLCN": "NCLR",
	"NCGR": "NCGR", "RGCN": "NCGR",
	"NSCR": "NSCR", "RCSN": "NSCR",
	"NANR": "NANR", "RNAN": "NANR",
	"NCER": "NCER", "RECN": "NCER",
	"SDAT": "SDAT", "TADS": "SDAT",
}

// Section is a named part of a segment.
type Section struct {
	Magic  string
	Header byteview.View // magic and length
	Body   byteview.View // section content
}

// Segment is a self describing container with a list of sections.
type Segment struct {
	Magic  string
	Offset int // absolute offset of the segment in the scanned buffer
	Length int

	Header   byteview.View
	Data     byteview.View // everything after the header
	Sections []Section

	// Malformed is set when the section list ended early, it wraps ErrMalformedSection.
	Malformed error
}

// Canonical returns the forward spelling of the segment magic.
func (s *Segment) Canonical() string {
	return Canonical(s.Magic)
}

// SectionMagics returns the magics of all parsed sections in order.
func (s *Segment) SectionMagics() []string {
	magics := make([]string, len(s.Sections))
	for i, sec := range s.Sections {
		magics[i] = sec.Magic
	}
	return magics
}

// Canonical returns the forward spelling of a known magic or the magic itself.
func Canonical(magic string) string {
	if canonical, ok := knownMagics[magic]; ok {
		return canonical
	}
	return magic
}

// IsKnownMagic returns whether magic is a recognized container signature.
func IsKnownMagic(magic string) bool {
	_, ok := knownMagics[magic]
	return ok
}

// Parse decodes the container starting at the beginning of the view.
// It returns ErrUnrecognizedContainer if the view does not start with a known
// magic followed by a byte order marker.
func Parse(data byteview.View, obs progress.Observer) (*Segment, error) {
	obs = progress.OrNop(obs)

	magic, order, err := sniff(data)
	if err != nil {
		return nil, err
	}

	// The length and every field after it are read in the order opposite to
	// the one the marker is stored in.
	data = data.WithOrder(order)

	length, err := data.Uint32(8)
	if err != nil {
		return nil, fmt.Errorf("reading length: %w", err)
	}
	if uint64(length) > uint64(data.Len()) {
		return nil, fmt.Errorf("%w: container length 0x%x exceeds 0x%x available bytes",
			byteview.ErrOutOfRange, length, data.Len())
	}
	data, err = data.Until(int(length))
	if err != nil {
		return nil, err
	}

	headerLength, err := data.Uint16(0xC)
	if err != nil {
		return nil, fmt.Errorf("reading header length: %w", err)
	}
	sectionCount, err := data.Uint16(0xE)
	if err != nil {
		return nil, fmt.Errorf("reading section count: %w", err)
	}

	seg := &Segment{
		Magic:  magic,
		Offset: data.Offset(),
		Length: int(length),
	}
	if seg.Header, err = data.Until(int(headerLength)); err != nil {
		return nil, fmt.Errorf("header length 0x%x: %w", headerLength, err)
	}
	if seg.Data, err = data.After(int(headerLength)); err != nil {
		return nil, fmt.Errorf("header length 0x%x: %w", headerLength, err)
	}

	// sound data archives use an incompatible internal layout
	if seg.Canonical() != soundDataMagic {
		seg.Sections, seg.Malformed = parseSections(seg.Data, int(sectionCount))
		if seg.Malformed != nil {
			obs.SectionsTruncated(magic, seg.Offset, seg.Malformed)
		}
	}

	obs.ContainerFound(magic, seg.Offset, len(seg.Sections))
	return seg, nil
}

// parseSections reads up to count sections. It stops at the first section
// that does not fit and returns the sections parsed so far.
func parseSections(remainder byteview.View, count int) ([]Section, error) {
	sections := make([]Section, 0, count)

	for i := 0; i < count; i++ {
		if remainder.Len() < sectionHeaderSize {
			return sections, fmt.Errorf("%w: section %d header at 0x%x needs %d bytes, %d left",
				ErrMalformedSection, i, remainder.Offset(), sectionHeaderSize, remainder.Len())
		}

		magic, _ := remainder.String(0, 4)
		length, _ := remainder.Uint32(4)
		if uint64(length) > uint64(remainder.Len()) || length < sectionHeaderSize {
			return sections, fmt.Errorf("%w: section %d '%s' at 0x%x declares 0x%x bytes, 0x%x left",
				ErrMalformedSection, i, magic, remainder.Offset(), length, remainder.Len())
		}

		data, _ := remainder.Until(int(length))
		header, _ := data.Until(sectionHeaderSize)
		body, _ := data.After(sectionHeaderSize)
		sections = append(sections, Section{
			Magic:  magic,
			Header: header,
			Body:   body,
		})

		remainder, _ = remainder.After(int(length))
	}
	return sections, nil
}

// sniff checks the magic and the byte order marker and returns the byte
// order that the remaining header fields use.
func sniff(data byteview.View) (string, binary.ByteOrder, error) {
	if data.Len() < headerSize {
		return "", nil, fmt.Errorf("%w: %d bytes are too short for a header", ErrUnrecognizedContainer, data.Len())
	}

	magic, err := data.String(0, 4)
	if err != nil {
		return "", nil, err
	}
	if !IsKnownMagic(magic) {
		return "", nil, fmt.Errorf("%w: magic %q", ErrUnrecognizedContainer, magic)
	}

	marker, err := data.Slice(4, 8)
	if err != nil {
		return "", nil, err
	}
	switch {
	case marker.StartsWith(orderMarker), marker.StartsWith(archiveOrderMarker):
		return magic, binary.LittleEndian, nil
	case marker.StartsWith(reversedOrderMarker):
		return magic, binary.BigEndian, nil
	default:
		return "", nil, fmt.Errorf("%w: '%s' without byte order marker", ErrUnrecognizedContainer, magic)
	}
}
