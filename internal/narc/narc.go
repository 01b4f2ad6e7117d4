// Package narc decodes NARC archives, containers that carry their own file
// allocation table, file name table and data pool.
package narc

import (
	"errors"
	"fmt"

	"github.com/retroenv/ndsrom/internal/byteview"
	"github.com/retroenv/ndsrom/internal/container"
	"github.com/retroenv/ndsrom/internal/filetable"
	"github.com/retroenv/ndsrom/internal/progress"
)

// ErrNotNarc is returned by Decode when the input is not a NARC archive.
var ErrNotNarc = errors.New("not a NARC archive")

const (
	magic = "NARC"

	allocSection = "BTAF"
	nameSection  = "BTNF"
	dataSection  = "GMIF"

	allocRecordSize = 8
)

var sectionOrder = [...]string{allocSection, nameSection, dataSection}

// Narc is a decoded NARC archive.
type Narc struct {
	Segment *container.Segment
	Table   *filetable.Table
}

// TryParse decodes the file table of a parsed container. It returns false
// without an error if the container is not a NARC with exactly the sections
// BTAF, BTNF and GMIF in that order. An error is only returned for archives
// that match but are internally inconsistent.
func TryParse(seg *container.Segment, obs progress.Observer) (*Narc, bool, error) {
	if seg == nil || seg.Magic != magic || len(seg.Sections) != len(sectionOrder) {
		return nil, false, nil
	}
	for i, sec := range seg.Sections {
		if sec.Magic != sectionOrder[i] {
			return nil, false, nil
		}
	}

	alloc, err := allocTable(seg.Sections[0].Body)
	if err != nil {
		return nil, true, fmt.Errorf("reading %s section: %w", allocSection, err)
	}

	table, err := filetable.Build(filetable.NarcLayout, alloc, seg.Sections[1].Body, seg.Sections[2].Body, obs)
	if err != nil {
		return nil, true, fmt.Errorf("building NARC file table at offset 0x%x: %w", seg.Offset, err)
	}

	return &Narc{
		Segment: seg,
		Table:   table,
	}, true, nil
}

// DecodeView decodes the NARC archive that starts at the beginning of the view.
func DecodeView(data byteview.View, obs progress.Observer) (*Narc, error) {
	seg, err := container.Parse(data, obs)
	if err != nil {
		if errors.Is(err, container.ErrUnrecognizedContainer) {
			return nil, fmt.Errorf("%w: %w", ErrNotNarc, err)
		}
		return nil, fmt.Errorf("parsing container: %w", err)
	}

	n, ok, err := TryParse(seg, obs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: container '%s' with sections %v", ErrNotNarc, seg.Magic, seg.SectionMagics())
	}
	return n, nil
}

// Decode decodes a standalone NARC file.
func Decode(buf []byte, obs progress.Observer) (*Narc, error) {
	return DecodeView(byteview.New(buf), obs)
}

// allocTable skips the leading file count of the BTAF body and bounds the
// records to that count when the body holds enough bytes.
func allocTable(body byteview.View) (byteview.View, error) {
	count, err := body.Uint32(0)
	if err != nil {
		return byteview.View{}, err
	}
	records, err := body.After(4)
	if err != nil {
		return byteview.View{}, err
	}

	if size := uint64(count) * allocRecordSize; size <= uint64(records.Len()) {
		return records.Until(int(size))
	}
	return records, nil
}
