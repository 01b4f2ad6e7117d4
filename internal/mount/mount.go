// Package mount exposes a decoded file table as a read-only FUSE file system.
package mount

import (
	"context"
	"fmt"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/retroenv/ndsrom/internal/filetable"
	"github.com/retroenv/ndsrom/internal/listing"
	"github.com/retroenv/ndsrom/internal/narc"
	"github.com/retroenv/ndsrom/internal/progress"
	"github.com/retroenv/retrogolib/log"
)

const archiveMagic = "NARC"

// Options of the file system.
type Options struct {
	Name      string // source name shown in the mount table
	Anonymous bool   // list files without a name record in the root directory
	Archives  bool   // expose NARC files additionally as directories
	Debug     bool   // log FUSE protocol messages

	Observer progress.Observer // receives decode events of lazily decoded archives, can be nil
}

// FS is a read-only view of a file table. NARC archives are decoded on
// first access and shared between all concurrent requests.
type FS struct {
	logger  *log.Logger
	table   *filetable.Table
	options Options
	obs     progress.Observer

	archives *xsync.Map[*filetable.Entry, *archive]
}

type archive struct {
	table *filetable.Table
	err   error
}

// New creates a new file system for the table.
func New(logger *log.Logger, table *filetable.Table, options Options) *FS {
	return &FS{
		logger:   logger,
		table:    table,
		options:  options,
		obs:      progress.OrNop(options.Observer),
		archives: xsync.NewMap[*filetable.Entry, *archive](),
	}
}

// Root returns the root node of the file system.
func (f *FS) Root() fs.InodeEmbedder {
	return &dirNode{
		fsys:  f,
		entry: f.table.Root(),
		table: f.table,
	}
}

// Serve mounts the file system at dir and serves requests until the context
// is cancelled or the file system is unmounted externally.
func (f *FS) Serve(ctx context.Context, dir string) error {
	server, err := fs.Mount(dir, f.Root(), &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:   "ndsrom",
			FsName: f.options.Name,
			Debug:  f.options.Debug,
		},
	})
	if err != nil {
		return fmt.Errorf("mounting '%s': %w", dir, err)
	}
	f.logger.Info("Mounted file system", log.String("directory", dir))

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			if err := server.Unmount(); err != nil {
				f.logger.Error("Unmounting failed", log.Err(err))
			}
		case <-done:
		}
	}()

	server.Wait()
	close(done)
	f.logger.Info("Unmounted file system", log.String("directory", dir))
	return nil
}

// child is a directory entry as seen through the file system.
type child struct {
	name  string
	entry *filetable.Entry
	// the entry is an archive file shown as directory
	archive bool
}

func (c child) isDir() bool {
	return c.archive || c.entry.IsDir()
}

// children returns the entries of a directory. table is set for the root
// directory of a table and adds its anonymous files.
func (f *FS) children(dir *filetable.Entry, table *filetable.Table) []child {
	var children []child
	for _, e := range dir.Children() {
		children = f.appendChild(children, e.Name, e)
	}

	if table != nil && f.options.Anonymous {
		for _, e := range table.AnonymousFiles() {
			children = f.appendChild(children, e.Name, e)
		}
	}
	return children
}

func (f *FS) appendChild(children []child, name string, e *filetable.Entry) []child {
	children = append(children, child{name: name, entry: e})
	if f.options.Archives && isArchive(e) {
		children = append(children, child{name: name + listing.ArchiveSuffix, entry: e, archive: true})
	}
	return children
}

func (f *FS) lookup(dir *filetable.Entry, table *filetable.Table, name string) (child, bool) {
	for _, c := range f.children(dir, table) {
		if c.name == name {
			return c, true
		}
	}
	return child{}, false
}

// archive returns the decoded table of an archive file. The first decode
// result is cached, also if decoding failed.
func (f *FS) archive(e *filetable.Entry) (*filetable.Table, error) {
	if a, ok := f.archives.Load(e); ok {
		return a.table, a.err
	}

	data, _ := e.Data()
	a := &archive{}
	n, err := narc.DecodeView(data, f.obs)
	if err != nil {
		a.err = fmt.Errorf("decoding archive '%s': %w", e.Path(), err)
	} else {
		a.table = n.Table
	}

	a, _ = f.archives.LoadOrStore(e, a)
	return a.table, a.err
}

func isArchive(e *filetable.Entry) bool {
	magic, ok := e.Magic()
	return ok && magic == archiveMagic
}
