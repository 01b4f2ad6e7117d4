// Package options contains the program options.
package options

import "fmt"

// Parameters contains file path options.
type Parameters struct {
	Input  string `flag:"i" usage:"input ROM or NARC file"`
	Output string `flag:"o" usage:"output directory for extracted files (default: <input>_files)"`
	Config string `flag:"c" usage:"randomization rules file (.yaml)"`
	Seed   string `flag:"seed" usage:"random number seed, overrides the rules file"`
	Batch  string `flag:"batch" usage:"batch process files matching pattern (e.g. *.nds)"`
	Mount  string `flag:"mount" usage:"mount the decoded file system at the given directory"`
}

// Flags contains behavior options.
type Flags struct {
	Narc      bool `flag:"narc" usage:"treat input as standalone NARC archive"`
	List      bool `flag:"list" usage:"list files instead of extracting them"`
	Scan      bool `flag:"scan" usage:"scan the raw input for embedded containers"`
	Anonymous bool `flag:"anon" usage:"include files without a name record"`
	Expand    bool `flag:"expand" usage:"decode NARC archives contained in the input"`
	Verify    bool `flag:"verify" usage:"verify extracted files against the decoded content"`
	Debug     bool `flag:"debug" usage:"enable debug logging"`
	Quiet     bool `flag:"q" usage:"quiet mode"`
}

// Program options of the decoder.
type Program struct {
	Parameters
	Flags
}

// Mode is the operation the pipeline performs on a decoded input.
type Mode int

const (
	ModeExtract Mode = iota
	ModeList
	ModeScan
	ModeMount
)

func (m Mode) String() string {
	switch m {
	case ModeExtract:
		return "extract"
	case ModeList:
		return "list"
	case ModeScan:
		return "scan"
	case ModeMount:
		return "mount"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Mode returns the selected operation.
func (p Program) Mode() Mode {
	switch {
	case p.Mount != "":
		return ModeMount
	case p.Scan:
		return ModeScan
	case p.List:
		return ModeList
	default:
		return ModeExtract
	}
}
