// Package detector handles input format detection.
package detector

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/retroenv/ndsrom/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// Kind is the format of an input file.
type Kind string

const (
	ROM  Kind = "rom"
	NARC Kind = "narc"
)

var narcMagic = []byte("NARC")

// Detector handles input format detection from options, file extensions and content.
type Detector struct {
	logger *log.Logger
}

// New creates a new format detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the input format. An explicit option takes precedence,
// otherwise the file extension is checked and as last resort the content.
func (d *Detector) Detect(opts options.Program, data []byte) Kind {
	if opts.Narc {
		return NARC
	}

	kind, ok := d.detectFromFile(opts.Input)
	if !ok {
		kind = d.detectFromContent(data)
	}
	d.logger.Debug("Auto-detected input format",
		log.String("format", string(kind)),
		log.String("file", opts.Input))
	return kind
}

// detectFromFile determines the format based on file extension.
func (d *Detector) detectFromFile(filename string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".nds", ".srl":
		return ROM, true
	case ".narc", ".carc":
		return NARC, true
	default:
		return "", false
	}
}

// detectFromContent checks for the archive magic, everything else is
// treated as ROM image.
func (d *Detector) detectFromContent(data []byte) Kind {
	if bytes.HasPrefix(data, narcMagic) {
		return NARC
	}
	return ROM
}
