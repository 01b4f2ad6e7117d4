// Package loader handles input file loading operations.
package loader

import (
	"fmt"
	"os"

	"github.com/retroenv/ndsrom/internal/options"
)

// Loader handles loading input files from disk.
type Loader struct{}

// New creates a new input loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the complete input file into memory. All decoders work on this
// buffer without further I/O.
func (l *Loader) Load(opts options.Program) ([]byte, error) {
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", opts.Input, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file %s is empty", opts.Input)
	}
	return data, nil
}
