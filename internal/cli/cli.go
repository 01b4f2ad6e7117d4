// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/ndsrom/internal/options"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "" && opts.Batch == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if err := validateOptionCombinations(opts); err != nil {
		return opts, err
	}

	if opts.Batch == "" && len(args) > 0 {
		opts.Input = args[0]
	}

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: ndsrom [options] <ROM or NARC file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after input file, please pass the input file as last argument", arg),
			}
		}
	}
	return nil
}

// validateOptionCombinations rejects options that exclude each other
func validateOptionCombinations(opts options.Program) error {
	var modes int
	for _, set := range []bool{opts.List, opts.Scan, opts.Mount != ""} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return errors.New("only one of -list, -scan and -mount can be used")
	}

	if opts.Verify && opts.Mode() != options.ModeExtract {
		return errors.New("-verify can only be used when extracting files")
	}
	if opts.Mount != "" && opts.Batch != "" {
		return errors.New("-mount can not be combined with -batch")
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM or NARC file")
	flags.StringVar(&opts.Output, "o", "", "name of the output directory, defaults to the input name with a _files suffix")
	flags.StringVar(&opts.Config, "c", "", "randomization rules file to load")
	flags.StringVar(&opts.Seed, "seed", "", "random number seed, integer or text (overrides the rules file)")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatically name the output directories, for example *.nds")
	flags.StringVar(&opts.Mount, "mount", "", "mount the decoded file system read-only at the given directory until interrupted")
	flags.BoolVar(&opts.Narc, "narc", false, "read input file as standalone NARC archive")
	flags.BoolVar(&opts.List, "list", false, "print all files with their detected format instead of extracting them")
	flags.BoolVar(&opts.Scan, "scan", false, "scan the raw input bytes for embedded containers")
	flags.BoolVar(&opts.Anonymous, "anon", false, "include files that are not referenced by a name record")
	flags.BoolVar(&opts.Expand, "expand", false, "decode NARC archives contained in the input and include their files")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the extracted files by reading them back and comparing checksums")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
