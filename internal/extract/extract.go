// Package extract writes the files of decoded tables to disk.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/ndsrom/internal/filetable"
	"github.com/retroenv/ndsrom/internal/listing"
	"github.com/retroenv/ndsrom/internal/narc"
	"github.com/retroenv/retrogolib/log"
)

// File is a table file and the disk path it is written to.
type File struct {
	Entry *filetable.Entry
	Path  string
}

// Options of the extractor.
type Options struct {
	Anonymous bool // write files without a name record to the top level directory
}

// Extractor writes table files to a directory tree.
type Extractor struct {
	logger  *log.Logger
	options Options
}

// New creates a new extractor.
func New(logger *log.Logger, options Options) *Extractor {
	return &Extractor{
		logger:  logger,
		options: options,
	}
}

// Plan returns the disk paths for all files of the table below dir. The
// contents of expanded archives are placed in a directory next to the
// archive file, named like the archive with the listing.ArchiveSuffix.
func (x *Extractor) Plan(dir string, table *filetable.Table, archives *narc.Index) []File {
	var files []File
	x.plan(&files, dir, table, archives)
	return files
}

func (x *Extractor) plan(files *[]File, dir string, table *filetable.Table, archives *narc.Index) {
	_ = table.Root().Walk(func(e *filetable.Entry) error {
		if e.IsFile {
			x.addFile(files, diskPath(dir, e.Path()), e, archives)
		}
		return nil
	})

	if !x.options.Anonymous {
		return
	}
	for _, e := range table.AnonymousFiles() {
		x.addFile(files, diskPath(dir, e.Name), e, archives)
	}
}

func (x *Extractor) addFile(files *[]File, path string, e *filetable.Entry, archives *narc.Index) {
	*files = append(*files, File{Entry: e, Path: path})
	if nested, ok := archives.Table(e); ok {
		x.plan(files, path+listing.ArchiveSuffix, nested, archives)
	}
}

// Write writes all files of the table below dir and returns them.
func (x *Extractor) Write(ctx context.Context, dir string, table *filetable.Table, archives *narc.Index) ([]File, error) {
	files := x.Plan(dir, table, archives)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extracting: %w", err)
		}

		if err := os.MkdirAll(filepath.Dir(file.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating directory for '%s': %w", file.Path, err)
		}
		if err := os.WriteFile(file.Path, file.Entry.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("writing file '%s': %w", file.Path, err)
		}

		x.logger.Debug("Extracted file",
			log.String("path", file.Path),
			log.Uint16("id", file.Entry.ID),
			log.Int("size", file.Entry.Range.Len()))
	}

	x.logger.Info("Extraction finished",
		log.String("directory", dir),
		log.Int("files", len(files)))
	return files, nil
}

// diskPath maps a slash separated table path below dir. Every path element
// is sanitized so that the result can not leave dir.
func diskPath(dir, tablePath string) string {
	parts := strings.Split(tablePath, "/")
	elems := make([]string, 0, len(parts)+1)
	elems = append(elems, dir)
	for _, part := range parts {
		if part == "" {
			continue
		}
		elems = append(elems, sanitize(part))
	}
	return filepath.Join(elems...)
}

func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/', r == '\\', r == ':', r < 0x20:
			return '_'
		default:
			return r
		}
	}, name)

	if name == "." || name == ".." {
		return strings.Repeat("_", len(name))
	}
	return name
}
