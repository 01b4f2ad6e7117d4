// Package main implements the main entry point for a Nintendo DS ROM and NARC archive decoder
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/ndsrom/internal/cli"
	"github.com/retroenv/ndsrom/internal/config"
	"github.com/retroenv/ndsrom/internal/fileprocessor"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	files, err := fileprocessor.GetFilesToProcess(&opts)
	if err != nil {
		logger.Fatal(err.Error())
	}

	output := opts.Output
	for _, file := range files {
		opts.Input = file
		if len(files) > 1 || output == "" {
			opts.Output = fileprocessor.GenerateOutputDirectory(file)
		}

		if err := fileprocessor.ProcessFile(ctx, logger, opts); err != nil {
			// Ctrl+C stops a mount or extraction
			if errors.Is(err, context.Canceled) {
				logger.Info("Operation cancelled")
				return
			}
			logger.Error("Decoding failed", log.Err(err))
		}
	}
}
