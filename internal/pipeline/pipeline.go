// Package pipeline orchestrates the decoding workflow stages.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/ndsrom/internal/app"
	"github.com/retroenv/ndsrom/internal/config"
	"github.com/retroenv/ndsrom/internal/container"
	"github.com/retroenv/ndsrom/internal/detector"
	"github.com/retroenv/ndsrom/internal/extract"
	"github.com/retroenv/ndsrom/internal/filetable"
	"github.com/retroenv/ndsrom/internal/listing"
	"github.com/retroenv/ndsrom/internal/loader"
	"github.com/retroenv/ndsrom/internal/mount"
	"github.com/retroenv/ndsrom/internal/narc"
	"github.com/retroenv/ndsrom/internal/options"
	"github.com/retroenv/ndsrom/internal/progress"
	"github.com/retroenv/ndsrom/internal/rom"
	"github.com/retroenv/ndsrom/internal/verification"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete decoding workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// Result of a pipeline run.
type Result struct {
	Kind     detector.Kind
	Table    *filetable.Table
	Archives *narc.Index // nil unless archives were expanded
	Files    []extract.File
	Segments []*container.Segment
}

// New creates a new decoding pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute runs the complete pipeline. Listings are written to writer.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, writer io.Writer) (*Result, error) {
	data, err := p.loader.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("loading input: %w", err)
	}
	return p.ExecuteWithData(ctx, data, opts, writer)
}

// ExecuteWithData runs the pipeline on an input that is already in memory.
func (p *Pipeline) ExecuteWithData(ctx context.Context, data []byte, opts options.Program,
	writer io.Writer) (*Result, error) {

	if err := p.printRules(opts); err != nil {
		return nil, err
	}

	obs := config.CreateObserver(p.logger, opts)
	result := &Result{
		Kind: p.detector.Detect(opts, data),
	}

	if opts.Mode() == options.ModeScan {
		result.Segments = container.ScanBytes(data, obs)
		if err := listing.New(writer, nil, listing.Options{}).Segments(result.Segments); err != nil {
			return nil, fmt.Errorf("writing scan result: %w", err)
		}
		return result, nil
	}

	if err := p.decode(data, opts, obs, result); err != nil {
		return nil, err
	}

	switch opts.Mode() {
	case options.ModeList:
		lw := listing.New(writer, result.Archives, listing.Options{Anonymous: opts.Anonymous})
		if err := lw.Table(result.Table); err != nil {
			return nil, fmt.Errorf("writing listing: %w", err)
		}

	case options.ModeMount:
		fsys := mount.New(p.logger, result.Table, mount.Options{
			Name:      opts.Input,
			Anonymous: opts.Anonymous,
			Archives:  opts.Expand,
			Debug:     opts.Debug,
			Observer:  obs,
		})
		p.logger.Info("Mounting file system", log.String("directory", opts.Mount))
		if err := fsys.Serve(ctx, opts.Mount); err != nil {
			return nil, fmt.Errorf("mounting: %w", err)
		}

	default:
		if err := p.extract(ctx, opts, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// decode parses the input into a file table and expands the contained
// archives if requested. Archives that fail to decode are reported but
// do not abort the run.
func (p *Pipeline) decode(data []byte, opts options.Program, obs progress.Observer, result *Result) error {
	info := app.Info{Kind: result.Kind}
	var expand func() (*narc.Index, error)

	switch result.Kind {
	case detector.NARC:
		n, err := narc.Decode(data, obs)
		if err != nil {
			return fmt.Errorf("decoding archive: %w", err)
		}
		result.Table = n.Table
		index := narc.NewIndex(obs)
		expand = func() (*narc.Index, error) { return index, index.Expand(n.Table) }

	default:
		r, err := rom.Decode(data, obs)
		if err != nil {
			return fmt.Errorf("decoding ROM: %w", err)
		}
		info.Header = &r.Header
		result.Table = r.Table
		expand = func() (*narc.Index, error) {
			err := r.ExpandArchives()
			return r.Archives(), err
		}
	}

	info.Table = result.Table
	app.PrintInfo(p.logger, opts, info)

	if !opts.Expand {
		return nil
	}
	archives, err := expand()
	if err != nil {
		p.logger.Warn("Not all archives could be expanded", log.Err(err))
	}
	result.Archives = archives
	p.logger.Debug("Expanded archives", log.Int("archives", archives.Len()))
	return nil
}

func (p *Pipeline) extract(ctx context.Context, opts options.Program, result *Result) error {
	x := extract.New(p.logger, extract.Options{Anonymous: opts.Anonymous})
	files, err := x.Write(ctx, opts.Output, result.Table, result.Archives)
	if err != nil {
		return fmt.Errorf("extracting: %w", err)
	}
	result.Files = files

	if opts.Verify {
		if err := verification.VerifyExtraction(ctx, p.logger, files); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}
	return nil
}

// printRules logs the randomization rules if a rules file or seed is set.
func (p *Pipeline) printRules(opts options.Program) error {
	if opts.Config == "" && opts.Seed == "" {
		return nil
	}

	r, err := config.LoadRules(opts)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	if !opts.Quiet {
		app.PrintRules(p.logger, r, r.Seed(opts.Seed))
	}
	return nil
}
