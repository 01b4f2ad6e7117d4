package mount

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/retroenv/ndsrom/internal/filetable"
	"github.com/retroenv/retrogolib/log"
)

const (
	dirMode  = syscall.S_IFDIR | 0o555
	fileMode = syscall.S_IFREG | 0o444
)

type dirNode struct {
	fs.Inode

	fsys  *FS
	entry *filetable.Entry
	table *filetable.Table // only set for table roots
}

var (
	_ fs.NodeLookuper  = (*dirNode)(nil)
	_ fs.NodeReaddirer = (*dirNode)(nil)
	_ fs.NodeGetattrer = (*dirNode)(nil)
)

func (n *dirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	c, ok := n.fsys.lookup(n.entry, n.table, name)
	if !ok {
		return nil, syscall.ENOENT
	}

	node, errno := n.fsys.node(c)
	if errno != 0 {
		return nil, errno
	}

	if c.isDir() {
		out.Attr.Mode = dirMode
	} else {
		out.Attr.Mode = fileMode
		out.Attr.Size = uint64(c.entry.Range.Len())
	}
	return n.NewInode(ctx, node, fs.StableAttr{Mode: out.Attr.Mode & syscall.S_IFMT}), 0
}

func (n *dirNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	children := n.fsys.children(n.entry, n.table)
	entries := make([]fuse.DirEntry, 0, len(children))
	for _, c := range children {
		mode := uint32(syscall.S_IFREG)
		if c.isDir() {
			mode = syscall.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: c.name, Mode: mode})
	}
	return fs.NewListDirStream(entries), 0
}

func (n *dirNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = dirMode
	return 0
}

type fileNode struct {
	fs.Inode

	entry *filetable.Entry
}

var (
	_ fs.NodeOpener    = (*fileNode)(nil)
	_ fs.NodeReader    = (*fileNode)(nil)
	_ fs.NodeGetattrer = (*fileNode)(nil)
)

func (n *fileNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&uint32(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_TRUNC|syscall.O_APPEND) != 0 {
		return nil, 0, syscall.EROFS
	}
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (n *fileNode) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data := n.entry.Bytes()
	if off < 0 {
		return nil, syscall.EINVAL
	}
	if off >= int64(len(data)) {
		return fuse.ReadResultData(nil), 0
	}

	end := off + int64(len(dest))
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return fuse.ReadResultData(data[off:end]), 0
}

func (n *fileNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = fileMode
	out.Size = uint64(n.entry.Range.Len())
	return 0
}

// node creates the node for a directory entry.
func (f *FS) node(c child) (fs.InodeEmbedder, syscall.Errno) {
	switch {
	case c.archive:
		table, err := f.archive(c.entry)
		if err != nil {
			f.logger.Warn("Archive can not be opened", log.Err(err))
			return nil, syscall.EIO
		}
		return &dirNode{fsys: f, entry: table.Root(), table: table}, 0

	case c.entry.IsDir():
		return &dirNode{fsys: f, entry: c.entry}, 0

	default:
		return &fileNode{entry: c.entry}, 0
	}
}
