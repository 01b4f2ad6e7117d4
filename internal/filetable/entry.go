package filetable

import (
	"strings"

	"github.com/retroenv/ndsrom/internal/byteview"
)

const (
	// RootID is the id of the root directory of every table.
	RootID = 0xF000
	// DirectoryIDMask tags directory ids in the high nibble.
	DirectoryIDMask = 0xF000

	noParent = -1
)

// RelativeRange is a byte range relative to the data region of a table.
type RelativeRange struct {
	Start uint32
	End   uint32
}

// Len returns the number of bytes covered by the range.
func (r RelativeRange) Len() int {
	return int(r.End - r.Start)
}

// Entry is a file or directory node of a decoded table. Entries are stored in
// the arena of their table; parent and children are arena indices.
type Entry struct {
	arena *[]Entry

	ID     uint16
	Name   string
	IsFile bool
	Range  RelativeRange // only set for files

	data     byteview.View
	parent   int
	children []int
}

// IsDir returns whether the entry is a directory.
func (e *Entry) IsDir() bool {
	return !e.IsFile
}

// Parent returns the parent directory or nil for the root and anonymous files.
func (e *Entry) Parent() *Entry {
	if e.parent == noParent {
		return nil
	}
	return &(*e.arena)[e.parent]
}

// Children returns the child entries in name table order.
func (e *Entry) Children() []*Entry {
	children := make([]*Entry, len(e.children))
	for i, idx := range e.children {
		children[i] = &(*e.arena)[idx]
	}
	return children
}

// Path returns the slash separated path of the entry. The root has an empty
// path, so all other paths start with a separator.
func (e *Entry) Path() string {
	parent := e.Parent()
	if parent == nil {
		return e.Name
	}
	return parent.Path() + "/" + e.Name
}

// Data returns the content view of a file. The view aliases the input buffer.
func (e *Entry) Data() (byteview.View, bool) {
	if !e.IsFile {
		return byteview.View{}, false
	}
	return e.data, true
}

// Bytes returns the content of a file or nil for directories.
// The returned slice aliases the input buffer and must not be modified.
func (e *Entry) Bytes() []byte {
	if !e.IsFile {
		return nil
	}
	return e.data.Bytes()
}

// Magic returns the first 4 bytes of the file content if they are all ASCII letters.
func (e *Entry) Magic() (string, bool) {
	if !e.IsFile || e.data.Len() < 4 {
		return "", false
	}
	for i := 0; i < 4; i++ {
		c, _ := e.data.Byte(i)
		if !isLetter(c) {
			return "", false
		}
	}
	magic, _ := e.data.String(0, 4)
	return magic, true
}

// Lookup resolves a slash separated path relative to the entry. Empty path
// elements are ignored and names are matched case-sensitive.
func (e *Entry) Lookup(path string) (*Entry, bool) {
	current := e
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		if current.IsFile {
			return nil, false
		}

		next, ok := current.child(part)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func (e *Entry) child(name string) (*Entry, bool) {
	for _, idx := range e.children {
		child := &(*e.arena)[idx]
		if child.Name == name {
			return child, true
		}
	}
	return nil, false
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
