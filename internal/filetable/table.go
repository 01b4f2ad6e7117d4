// Package filetable reconstructs the named directory tree of a ROM or NARC
// archive from its file allocation table and file name table.
package filetable

import (
	"errors"
	"fmt"
	"sort"

	"github.com/retroenv/ndsrom/internal/byteview"
	"github.com/retroenv/ndsrom/internal/nametable"
	"github.com/retroenv/ndsrom/internal/progress"
	"github.com/retroenv/retrogolib/set"
)

var (
	// ErrInvalidFileID is returned when a file id exceeds the allocation table.
	ErrInvalidFileID = errors.New("invalid file id")
	// ErrInvalidFileRange is returned when an allocation range exceeds the data region.
	ErrInvalidFileRange = errors.New("invalid file range")
	// ErrMissingDirectory is returned when a name record references an unknown directory.
	ErrMissingDirectory = errors.New("missing directory")
	// ErrDirectoryCycle is returned when directories reference each other as children.
	ErrDirectoryCycle = errors.New("directory cycle")
)

const (
	allocRecordSize = 8
	maxDirectories  = 0x1000

	anonymousPrefix = "_anon_$"
)

// Table is a decoded file tree. It is immutable after Build returns.
type Table struct {
	entries   []Entry
	anonymous []int
	fileCount int
	layout    Layout
}

// Root returns the root directory.
func (t *Table) Root() *Entry {
	return &t.entries[0]
}

// AnonymousFiles returns the files that no name record references,
// in ascending id order.
func (t *Table) AnonymousFiles() []*Entry {
	files := make([]*Entry, len(t.anonymous))
	for i, idx := range t.anonymous {
		files[i] = &t.entries[idx]
	}
	return files
}

// FileCount returns the number of entries in the allocation table.
func (t *Table) FileCount() int {
	return t.fileCount
}

// Layout returns the directory record layout the table was decoded with.
func (t *Table) Layout() Layout {
	return t.layout
}

// Files returns all files of the tree in depth-first order followed by the
// anonymous files.
func (t *Table) Files() []*Entry {
	var files []*Entry
	_ = t.Root().Walk(func(e *Entry) error {
		if e.IsFile {
			files = append(files, e)
		}
		return nil
	})
	return append(files, t.AnonymousFiles()...)
}

// Walk calls fn for the entry and all of its descendants in depth-first order.
// Walking stops at the first error returned by fn.
func (e *Entry) Walk(fn func(*Entry) error) error {
	if err := fn(e); err != nil {
		return err
	}
	for _, child := range e.Children() {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

type builder struct {
	table *Table

	alloc byteview.View
	data  byteview.View
	obs   progress.Observer

	dirCount int
	attached set.Set[uint16]
	files    map[int]int // directory arena index -> number of bound files

	minID, maxID int
}

// Build decodes a file tree. alloc is the array of 8 byte {start, end}
// ranges per file id, nameTable holds the directory records and name blocks
// and data is the region the allocation ranges index into.
func Build(layout Layout, alloc, nameTable, data byteview.View, obs progress.Observer) (*Table, error) {
	nameTable, dirs, err := layout.readDirectories(nameTable)
	if err != nil {
		return nil, err
	}
	if len(dirs) > maxDirectories {
		return nil, fmt.Errorf("%d directories exceed the directory id space", len(dirs))
	}

	b := &builder{
		table: &Table{
			entries:   make([]Entry, 0, len(dirs)),
			fileCount: alloc.Len() / allocRecordSize,
			layout:    layout,
		},
		alloc:    alloc,
		data:     data,
		obs:      progress.OrNop(obs),
		dirCount: len(dirs),
		attached: set.New[uint16](),
		files:    map[int]int{},
		minID:    -1,
		maxID:    -1,
	}

	// directories occupy the first arena slots, slot index equals directory index
	for _, dir := range dirs {
		b.table.entries = append(b.table.entries, Entry{
			ID:     DirectoryIDMask | uint16(dir.index),
			parent: noParent,
		})
	}

	if dirs[0].nameListOffset != 0 {
		if err := b.bindNames(nameTable, dirs); err != nil {
			return nil, err
		}
	}
	if err := b.collectAnonymous(); err != nil {
		return nil, err
	}

	t := b.table
	for i := range t.entries {
		t.entries[i].arena = &t.entries
	}
	if err := checkAcyclic(t, len(dirs)); err != nil {
		return nil, err
	}

	b.report(dirs)
	return t, nil
}

// bindNames processes the name blocks in ascending first file index order,
// the order the blocks are stored in. A block ends where the next one starts.
func (b *builder) bindNames(nameTable byteview.View, dirs []directoryRecord) error {
	sorted := make([]directoryRecord, len(dirs))
	copy(sorted, dirs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].firstFileIndex < sorted[j].firstFileIndex
	})

	for i, dir := range sorted {
		end := uint32(nameTable.Len())
		if i < len(sorted)-1 {
			end = sorted[i+1].nameListOffset
		}
		id := DirectoryIDMask | uint16(dir.index)

		block, err := nameTable.Slice(int(dir.nameListOffset), int(end))
		if err != nil {
			return fmt.Errorf("name block of directory 0x%04x: %w", id, err)
		}
		records, err := nametable.Parse(block)
		if err != nil {
			return fmt.Errorf("parsing names of directory 0x%04x: %w", id, err)
		}

		if err := b.bindDirectory(dir, records); err != nil {
			return fmt.Errorf("binding directory 0x%04x: %w", id, err)
		}
	}
	return nil
}

func (b *builder) bindDirectory(dir directoryRecord, records []nametable.Record) error {
	fileID := int(dir.firstFileIndex)

	for _, rec := range records {
		if rec.IsDir {
			child, err := b.findDirectory(rec.DirectoryID)
			if err != nil {
				return err
			}
			b.table.entries[child].Name = rec.Name
			b.attach(dir.index, child)
			continue
		}

		idx, err := b.newFile(fileID, rec.Name)
		if err != nil {
			return err
		}
		b.attach(dir.index, idx)
		b.files[dir.index]++

		if b.minID < 0 || fileID < b.minID {
			b.minID = fileID
		}
		if fileID > b.maxID {
			b.maxID = fileID
		}
		fileID++
	}
	return nil
}

// findDirectory returns the arena index of the directory with the given id.
// Directory ids carry the 0xF000 tag, the low bits are the directory index.
func (b *builder) findDirectory(id uint16) (int, error) {
	index := int(id &^ DirectoryIDMask)
	if id&DirectoryIDMask != DirectoryIDMask || index >= b.dirCount {
		return 0, fmt.Errorf("%w: 0x%04x", ErrMissingDirectory, id)
	}
	if id == RootID || b.attached.Contains(id) {
		return 0, fmt.Errorf("%w: directory 0x%04x is referenced twice", ErrDirectoryCycle, id)
	}
	b.attached.Add(id)
	return index, nil
}

func (b *builder) newFile(id int, name string) (int, error) {
	r, view, err := b.resolve(id)
	if err != nil {
		return 0, err
	}

	b.table.entries = append(b.table.entries, Entry{
		ID:     uint16(id),
		Name:   name,
		IsFile: true,
		Range:  r,
		data:   view,
		parent: noParent,
	})
	return len(b.table.entries) - 1, nil
}

func (b *builder) resolve(id int) (RelativeRange, byteview.View, error) {
	if id < 0 || id >= b.table.fileCount || id >= DirectoryIDMask {
		return RelativeRange{}, byteview.View{}, fmt.Errorf("%w: %d, allocation table has %d entries",
			ErrInvalidFileID, id, b.table.fileCount)
	}

	var r RelativeRange
	var err error
	offset := id * allocRecordSize
	if r.Start, err = b.alloc.Uint32(offset); err != nil {
		return RelativeRange{}, byteview.View{}, err
	}
	if r.End, err = b.alloc.Uint32(offset + 4); err != nil {
		return RelativeRange{}, byteview.View{}, err
	}

	if r.Start > r.End || uint64(r.End) > uint64(b.data.Len()) {
		return RelativeRange{}, byteview.View{}, fmt.Errorf("%w: file %d range 0x%x-0x%x, data length 0x%x",
			ErrInvalidFileRange, id, r.Start, r.End, b.data.Len())
	}

	view, err := b.data.Slice(int(r.Start), int(r.End))
	if err != nil {
		return RelativeRange{}, byteview.View{}, err
	}
	return r, view, nil
}

func (b *builder) attach(parent, child int) {
	b.table.entries[child].parent = parent
	b.table.entries[parent].children = append(b.table.entries[parent].children, child)
}

// collectAnonymous creates entries for all file ids below the lowest or above
// the highest file id bound to a name. Without any bound name every file is anonymous.
func (b *builder) collectAnonymous() error {
	for id := 0; id < b.table.fileCount; id++ {
		if b.minID >= 0 && id >= b.minID && id <= b.maxID {
			continue
		}

		idx, err := b.newFile(id, fmt.Sprintf("%s%d", anonymousPrefix, id))
		if err != nil {
			return fmt.Errorf("anonymous file: %w", err)
		}
		b.table.anonymous = append(b.table.anonymous, idx)
	}
	return nil
}

func (b *builder) report(dirs []directoryRecord) {
	for _, dir := range dirs {
		e := &b.table.entries[dir.index]
		if dir.index != 0 && e.parent == noParent {
			continue
		}
		b.obs.DirectoryDecoded(e.ID, e.Path(), b.files[dir.index])
	}

	ids := make([]uint16, len(b.table.anonymous))
	for i, idx := range b.table.anonymous {
		ids[i] = b.table.entries[idx].ID
	}
	b.obs.AnonymousFiles(ids)
}

// checkAcyclic verifies that following parent links from any directory ends
// at the root or at a detached directory.
func checkAcyclic(t *Table, dirCount int) error {
	for i := 1; i < dirCount; i++ {
		current := i
		for steps := 0; current != noParent; steps++ {
			if steps > dirCount {
				return fmt.Errorf("%w: directory 0x%04x", ErrDirectoryCycle, t.entries[i].ID)
			}
			current = t.entries[current].parent
		}
	}
	return nil
}
