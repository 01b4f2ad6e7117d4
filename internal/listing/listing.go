// Package listing implements the text output of decoded file tables and
// scanned containers.
package listing

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/ndsrom/internal/container"
	"github.com/retroenv/ndsrom/internal/filetable"
	"github.com/retroenv/ndsrom/internal/narc"
)

const (
	unknownMagic = "unknown"
	// ArchiveSuffix is appended to the path of an archive file to form the
	// directory that its contents are listed under.
	ArchiveSuffix = ".d"
)

// Options of the writer.
type Options struct {
	Anonymous bool // list files without a name record
}

// Writer writes listings.
type Writer struct {
	archives *narc.Index
	options  Options
	writer   io.Writer
}

// New creates a new writer. archives can be nil if no archives were expanded.
func New(writer io.Writer, archives *narc.Index, options Options) *Writer {
	return &Writer{
		archives: archives,
		options:  options,
		writer:   writer,
	}
}

// Table writes one line per file of the table in the form "path: magic".
// Contents of expanded archives follow the archive file, prefixed by the
// archive path and ArchiveSuffix.
func (w Writer) Table(table *filetable.Table) error {
	return w.table(table, "")
}

func (w Writer) table(table *filetable.Table, prefix string) error {
	err := table.Root().Walk(func(e *filetable.Entry) error {
		if !e.IsFile {
			return nil
		}
		return w.file(e, prefix+e.Path())
	})
	if err != nil {
		return err
	}

	if !w.options.Anonymous {
		return nil
	}
	for _, e := range table.AnonymousFiles() {
		if err := w.file(e, prefix+"/"+e.Name); err != nil {
			return err
		}
	}
	return nil
}

func (w Writer) file(e *filetable.Entry, path string) error {
	magic, ok := e.Magic()
	if !ok {
		magic = unknownMagic
	}
	if _, err := fmt.Fprintf(w.writer, "%s: %s\n", path, magic); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}

	if nested, ok := w.archives.Table(e); ok {
		return w.table(nested, path+ArchiveSuffix)
	}
	return nil
}

// Segments writes one line per scanned container with its offset, magic and
// section magics. Containers with a truncated section list are marked.
func (w Writer) Segments(segments []*container.Segment) error {
	for _, seg := range segments {
		line := fmt.Sprintf("0x%08x %s length=0x%x", seg.Offset, seg.Magic, seg.Length)
		if magics := seg.SectionMagics(); len(magics) > 0 {
			line += " sections=" + strings.Join(magics, ",")
		}
		if seg.Malformed != nil {
			line += " (truncated)"
		}

		if _, err := fmt.Fprintln(w.writer, line); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}
	return nil
}
