package container

import (
	"github.com/retroenv/ndsrom/internal/byteview"
	"github.com/retroenv/ndsrom/internal/progress"
)

// Scan searches the view for embedded containers. Every offset that is
// followed by a byte order marker 4 bytes later is tried as a container
// start. Parsed containers are skipped as a whole, after a failed attempt
// the search continues at the next byte.
func Scan(data byteview.View, obs progress.Observer) []*Segment {
	obs = progress.OrNop(obs)
	var segments []*Segment

	for i := 0; i+headerSize <= data.Len(); {
		candidate, _ := data.After(i)
		if !hasMarker(candidate) {
			i++
			continue
		}

		seg, err := Parse(candidate, obs)
		if err != nil {
			i++
			continue
		}

		segments = append(segments, seg)
		i += seg.Length
	}
	return segments
}

// ScanBytes is a convenience wrapper around Scan for a plain buffer.
func ScanBytes(buf []byte, obs progress.Observer) []*Segment {
	return Scan(byteview.New(buf), obs)
}

func hasMarker(v byteview.View) bool {
	marker, err := v.Slice(4, 8)
	if err != nil {
		return false
	}
	return marker.StartsWith(orderMarker) ||
		marker.StartsWith(archiveOrderMarker) ||
		marker.StartsWith(reversedOrderMarker)
}
