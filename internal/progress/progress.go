// Package progress defines the observer that decoders report their progress to.
package progress

import (
	"github.com/retroenv/retrogolib/log"
)

// Observer receives decode events. Implementations must not retain the
// passed values beyond the call.
type Observer interface {
	// DirectoryDecoded is called after the name block of a directory was bound.
	DirectoryDecoded(id uint16, path string, files int)
	// AnonymousFiles is called with the ids of all files not referenced by a name record.
	AnonymousFiles(ids []uint16)
	// ContainerFound is called for every container recognized by the scanner.
	ContainerFound(magic string, offset, sections int)
	// SectionsTruncated is called when a section list ended early.
	SectionsTruncated(magic string, offset int, err error)
}

// Nop is an observer that ignores all events.
type Nop struct{}

func (Nop) DirectoryDecoded(uint16, string, int) {}
func (Nop) AnonymousFiles([]uint16) {}
func (Nop) ContainerFound(string, int, int) {}
func (Nop) SectionsTruncated(string, int, error) {}

// LogObserver forwards decode events to a logger at debug level.
type LogObserver struct {
	logger *log.Logger
}

// NewLogObserver returns an observer that logs to the given logger.
func NewLogObserver(logger *log.Logger) *LogObserver {
	return &LogObserver{
		logger: logger,
	}
}

func (o *LogObserver) DirectoryDecoded(id uint16, path string, files int) {
	o.logger.Debug("Directory decoded",
		log.Hex("id", id),
		log.String("path", path),
		log.Int("files", files))
}

func (o *LogObserver) AnonymousFiles(ids []uint16) {
	if len(ids) == 0 {
		return
	}
	o.logger.Debug("Anonymous files recovered",
		log.Int("count", len(ids)),
		log.Hex("first", ids[0]),
		log.Hex("last", ids[len(ids)-1]))
}

func (o *LogObserver) ContainerFound(magic string, offset, sections int) {
	o.logger.Debug("Container found",
		log.String("magic", magic),
		log.Hex("offset", offset),
		log.Int("sections", sections))
}

func (o *LogObserver) SectionsTruncated(magic string, offset int, err error) {
	o.logger.Debug("Section list truncated",
		log.String("magic", magic),
		log.Hex("offset", offset),
		log.Err(err))
}

// OrNop returns obs or a Nop observer if obs is nil.
func OrNop(obs Observer) Observer {
	if obs == nil {
		return Nop{}
	}
	return obs
}
