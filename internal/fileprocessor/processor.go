// Package fileprocessor handles file selection and processing operations
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/ndsrom/internal/options"
	"github.com/retroenv/ndsrom/internal/pipeline"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

const outputDirectorySuffix = "_files"

// ProcessFile runs the decoding pipeline for the input file of the options.
// Listings and scan results are printed on the console.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program) error {
	return processFile(ctx, logger, opts, os.Stdout)
}

func processFile(ctx context.Context, logger *log.Logger, opts options.Program, writer io.Writer) error {
	p := pipeline.New(logger)
	if _, err := p.Execute(ctx, opts, writer); err != nil {
		return fmt.Errorf("processing '%s': %w", opts.Input, err)
	}
	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch == "" {
		return []string{opts.Input}, nil
	}

	matches, err := filepath.Glob(opts.Batch)
	if err != nil {
		return nil, fmt.Errorf("globbing batch pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match batch pattern '%s'", opts.Batch)
	}
	return matches, nil
}

// GenerateOutputDirectory generates the extraction directory for a given input file
func GenerateOutputDirectory(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + outputDirectorySuffix
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("ndsrom", log.String("version", buildinfo.Version(version, commit, date)))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
