// Package app provides the main application helpers for the decoder.
package app

import (
	"strconv"

	"github.com/retroenv/ndsrom/internal/detector"
	"github.com/retroenv/ndsrom/internal/filetable"
	"github.com/retroenv/ndsrom/internal/options"
	"github.com/retroenv/ndsrom/internal/rom"
	"github.com/retroenv/ndsrom/internal/rules"
	"github.com/retroenv/retrogolib/log"
)

// Info describes a decoded input file.
type Info struct {
	Kind   detector.Kind
	Header *rom.Header // only set for ROM images
	Table  *filetable.Table
}

// PrintInfo prints the information about the input file and its file table.
func PrintInfo(logger *log.Logger, opts options.Program, info Info) {
	if opts.Quiet {
		return
	}

	switch info.Kind {
	case detector.ROM:
		logger.Info("Processing Nintendo DS ROM",
			log.String("file", opts.Input),
			log.String("title", info.Header.Title),
			log.String("game code", info.Header.GameCode),
			log.String("maker code", info.Header.MakerCode),
			log.Int("files", info.Table.FileCount()),
			log.Int("anonymous", len(info.Table.AnonymousFiles())),
		)
		if info.Header.UnitCode != 0 {
			logger.Warn("ROM targets a DSi unit, only the DS file system is decoded",
				log.Uint8("unit code", info.Header.UnitCode))
		}

	case detector.NARC:
		logger.Info("Processing NARC archive",
			log.String("file", opts.Input),
			log.Int("files", info.Table.FileCount()),
			log.Int("anonymous", len(info.Table.AnonymousFiles())),
		)
	}
}

// PrintRules logs the randomization rules and the seed of a run.
func PrintRules(logger *log.Logger, r rules.Rules, seed int64) {
	logger.Info("Randomization rules",
		log.String("seed", strconv.FormatInt(seed, 10)),
		log.Stringer("gyms", r.Trainers.Gyms),
		log.Stringer("wild", r.Wild.Randomization),
		log.Stringer("evolution", r.Evolution),
		log.String("randomize trainers", strconv.FormatBool(r.Trainers.RandomizeTrainers)),
		log.String("randomize palettes", strconv.FormatBool(r.Palette.Randomize)),
	)
}
