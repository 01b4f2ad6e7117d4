package filetable

import (
	"bytes"
	"errors"
	"testing"

	"github.com/retroenv/ndsrom/internal/byteview"
	"github.com/retroenv/ndsrom/internal/ndstest"
	"github.com/retroenv/retrogolib/assert"
)

func roundTripInput() ([]ndstest.Dir, []byte, []byte) {
	dirs := []ndstest.Dir{
		{FirstFile: 0, Names: [][]byte{ndstest.FileName("a.txt"), ndstest.DirName("sub", 0xF001)}},
		{FirstFile: 1, Parent: RootID, Names: [][]byte{ndstest.FileName("b.txt")}},
	}
	alloc := ndstest.AllocRecords(0, 4, 4, 10)
	return dirs, alloc, sequentialData(16)
}

func build(t *testing.T, layout Layout, alloc, names, data []byte) *Table {
	t.Helper()
	table, err := Build(layout, byteview.New(alloc), byteview.New(names), byteview.New(data), nil)
	assert.NoError(t, err)
	return table
}

func TestBuildRoundTrip(t *testing.T) {
	dirs, alloc, data := roundTripInput()
	obs := &recordingObserver{}

	table, err := Build(RomLayout, byteview.New(alloc), byteview.New(ndstest.NameTable(dirs)), byteview.New(data), obs)
	assert.NoError(t, err)

	root := table.Root()
	assert.Equal(t, uint16(RootID), root.ID)
	assert.True(t, root.IsDir())
	assert.True(t, root.Parent() == nil)
	assert.Equal(t, []string{"a.txt", "sub"}, childNames(root))

	sub, ok := root.Lookup("sub")
	assert.True(t, ok)
	assert.Equal(t, uint16(0xF001), sub.ID)
	assert.Equal(t, "/sub", sub.Path())

	b, ok := root.Lookup("sub/b.txt")
	assert.True(t, ok)
	assert.True(t, b.IsFile)
	assert.Equal(t, uint16(1), b.ID)
	assert.Equal(t, RelativeRange{Start: 4, End: 10}, b.Range)
	assert.True(t, bytes.Equal(data[4:10], b.Bytes()))
	assert.Equal(t, "/sub/b.txt", b.Path())
	assert.Equal(t, sub, b.Parent())

	assert.Empty(t, table.AnonymousFiles())
	assert.Equal(t, 2, table.FileCount())
	assert.Len(t, table.Files(), 2)
	assert.Equal(t, []string{"f000  1", "f001 /sub 1"}, obs.directories)
}

func TestBuildAnonymousFiles(t *testing.T) {
	t.Run("ids outside the named range", func(t *testing.T) {
		dirs := []ndstest.Dir{
			{FirstFile: 1, Names: [][]byte{ndstest.FileName("x"), ndstest.FileName("y"), ndstest.FileName("z")}},
		}
		alloc := ndstest.AllocRecords(0, 1, 1, 2, 2, 3, 3, 4, 4, 5)
		table := build(t, RomLayout, alloc, ndstest.NameTable(dirs), sequentialData(8))

		assert.Equal(t, []string{"x", "y", "z"}, childNames(table.Root()))
		anon := table.AnonymousFiles()
		assert.Len(t, anon, 2)
		assert.Equal(t, uint16(0), anon[0].ID)
		assert.Equal(t, "_anon_$0", anon[0].Name)
		assert.Equal(t, uint16(4), anon[1].ID)
		assert.Equal(t, "_anon_$4", anon[1].Name)
		assert.True(t, anon[1].Parent() == nil)
		assert.Equal(t, "_anon_$4", anon[1].Path())
		assert.True(t, bytes.Equal([]byte{4}, anon[1].Bytes()))
	})

	t.Run("gaps inside the named range are not recovered", func(t *testing.T) {
		dirs := []ndstest.Dir{
			{FirstFile: 0, Names: [][]byte{ndstest.FileName("a"), ndstest.DirName("d", 0xF001)}},
			{FirstFile: 3, Parent: RootID, Names: [][]byte{ndstest.FileName("b")}},
		}
		alloc := ndstest.AllocRecords(0, 1, 1, 2, 2, 3, 3, 4, 4, 5)
		table := build(t, RomLayout, alloc, ndstest.NameTable(dirs), sequentialData(8))

		anon := table.AnonymousFiles()
		assert.Len(t, anon, 1)
		assert.Equal(t, "_anon_$4", anon[0].Name)
	})

	t.Run("no name list", func(t *testing.T) {
		names := []byte{0, 0, 0, 0, 0, 0, 1, 0}
		alloc := ndstest.AllocRecords(0, 2, 2, 4, 4, 8)
		obs := &recordingObserver{}

		table, err := Build(RomLayout, byteview.New(alloc), byteview.New(names), byteview.New(sequentialData(8)), obs)
		assert.NoError(t, err)

		assert.Empty(t, table.Root().Children())
		assert.Len(t, table.AnonymousFiles(), 3)
		assert.Equal(t, []uint16{0, 1, 2}, obs.anonymous)
	})
}

func TestBuildDirectoryOrderIndependent(t *testing.T) {
	alloc := ndstest.AllocRecords(0, 1, 1, 3, 3, 6, 6, 10)
	data := sequentialData(10)

	inOrder := []ndstest.Dir{
		{FirstFile: 0, Names: [][]byte{ndstest.FileName("r0"), ndstest.DirName("a", 0xF001), ndstest.DirName("b", 0xF002)}},
		{FirstFile: 1, Parent: RootID, Names: [][]byte{ndstest.FileName("x1"), ndstest.FileName("x2")}},
		{FirstFile: 3, Parent: RootID, Names: [][]byte{ndstest.FileName("y")}},
	}
	permuted := []ndstest.Dir{
		{FirstFile: 0, Names: [][]byte{ndstest.FileName("r0"), ndstest.DirName("a", 0xF002), ndstest.DirName("b", 0xF001)}},
		{FirstFile: 3, Parent: RootID, Names: [][]byte{ndstest.FileName("y")}},
		{FirstFile: 1, Parent: RootID, Names: [][]byte{ndstest.FileName("x1"), ndstest.FileName("x2")}},
	}

	want := []string{
		"d ",
		"f /r0 id=0 0-1",
		"d /a",
		"f /a/x1 id=1 1-3",
		"f /a/x2 id=2 3-6",
		"d /b",
		"f /b/y id=3 6-10",
	}

	first := build(t, RomLayout, alloc, ndstest.NameTable(inOrder), data)
	second := build(t, RomLayout, alloc, ndstest.NameTable(permuted), data)
	assert.Equal(t, want, describe(first))
	assert.Equal(t, want, describe(second))
}

func TestBuildEmptyDirectory(t *testing.T) {
	dirs := []ndstest.Dir{
		{FirstFile: 0, Names: [][]byte{ndstest.DirName("empty", 0xF001), ndstest.FileName("f"), ndstest.DirName("z", 0xF002)}},
		{FirstFile: 1, Parent: RootID},
		{FirstFile: 1, Parent: RootID, Names: [][]byte{ndstest.FileName("g")}},
	}
	alloc := ndstest.AllocRecords(0, 2, 2, 4)
	table := build(t, RomLayout, alloc, ndstest.NameTable(dirs), sequentialData(4))

	assert.Equal(t, []string{
		"d ",
		"d /empty",
		"f /f id=0 0-2",
		"d /z",
		"f /z/g id=1 2-4",
	}, describe(table))
}

func TestBuildIdempotent(t *testing.T) {
	dirs, alloc, data := roundTripInput()
	names := ndstest.NameTable(dirs)

	first := build(t, RomLayout, alloc, names, data)
	second := build(t, RomLayout, alloc, names, data)
	assert.Equal(t, describe(first), describe(second))
	assert.Equal(t, first.Root().ID, second.Root().ID)

	sub1, _ := first.Root().Lookup("sub")
	sub2, _ := second.Root().Lookup("sub")
	assert.Equal(t, sub1.ID, sub2.ID)
}

func TestBuildNarcLayout(t *testing.T) {
	dirs, alloc, data := roundTripInput()
	names := ndstest.NameTable(dirs)

	tests := []struct {
		name  string
		names []byte
	}{
		{name: "plain directory table", names: names},
		{name: "embedded BTNF header", names: append([]byte{'B', 'T', 'N', 'F', 0, 0, 0, 0}, names...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := build(t, NarcLayout, alloc, tt.names, data)
			assert.Equal(t, NarcLayout, table.Layout())

			b, ok := table.Root().Lookup("/sub/b.txt")
			assert.True(t, ok)
			assert.Equal(t, RelativeRange{Start: 4, End: 10}, b.Range)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	data := sequentialData(16)

	tests := []struct {
		name  string
		dirs  []ndstest.Dir
		names []byte
		alloc []byte
		want  error
	}{
		{
			name:  "file id beyond allocation table",
			dirs:  []ndstest.Dir{{Names: [][]byte{ndstest.FileName("a"), ndstest.FileName("b")}}},
			alloc: ndstest.AllocRecords(0, 4),
			want:  ErrInvalidFileID,
		},
		{
			name:  "range beyond data",
			dirs:  []ndstest.Dir{{Names: [][]byte{ndstest.FileName("a")}}},
			alloc: ndstest.AllocRecords(0, 100),
			want:  ErrInvalidFileRange,
		},
		{
			name:  "inverted range",
			dirs:  []ndstest.Dir{{Names: [][]byte{ndstest.FileName("a")}}},
			alloc: ndstest.AllocRecords(8, 4),
			want:  ErrInvalidFileRange,
		},
		{
			name:  "anonymous range beyond data",
			dirs:  []ndstest.Dir{{FirstFile: 1, Names: [][]byte{ndstest.FileName("a")}}},
			alloc: ndstest.AllocRecords(0, 99, 0, 4),
			want:  ErrInvalidFileRange,
		},
		{
			name:  "unknown directory id",
			dirs:  []ndstest.Dir{{Names: [][]byte{ndstest.DirName("x", 0xF005)}}},
			alloc: ndstest.AllocRecords(),
			want:  ErrMissingDirectory,
		},
		{
			name:  "directory id without tag",
			dirs:  []ndstest.Dir{{Names: [][]byte{ndstest.DirName("x", 0x0001)}}, {Parent: RootID}},
			alloc: ndstest.AllocRecords(),
			want:  ErrMissingDirectory,
		},
		{
			name:  "directory referenced twice",
			dirs:  []ndstest.Dir{{Names: [][]byte{ndstest.DirName("a", 0xF001), ndstest.DirName("b", 0xF001)}}, {Parent: RootID}},
			alloc: ndstest.AllocRecords(),
			want:  ErrDirectoryCycle,
		},
		{
			name: "directories containing each other",
			dirs: []ndstest.Dir{
				{},
				{Parent: 0xF002, Names: [][]byte{ndstest.DirName("b", 0xF002)}},
				{Parent: 0xF001, Names: [][]byte{ndstest.DirName("a", 0xF001)}},
			},
			alloc: ndstest.AllocRecords(),
			want:  ErrDirectoryCycle,
		},
		{
			name:  "truncated directory table",
			names: []byte{8, 0, 0, 0},
			alloc: ndstest.AllocRecords(),
			want:  byteview.ErrOutOfRange,
		},
		{
			name:  "name list offset beyond table",
			names: []byte{0x40, 0, 0, 0, 0, 0, 1, 0},
			alloc: ndstest.AllocRecords(),
			want:  byteview.ErrOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := tt.names
			if names == nil {
				names = ndstest.NameTable(tt.dirs)
			}

			_, err := Build(RomLayout, byteview.New(tt.alloc), byteview.New(names), byteview.New(data), nil)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}
