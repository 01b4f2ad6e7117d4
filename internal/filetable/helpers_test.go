package filetable

import "fmt"

func sequentialData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

// describe flattens a table into comparable lines, directory ids are left
// out as they depend on the record order.
func describe(t *Table) []string {
	var lines []string
	_ = t.Root().Walk(func(e *Entry) error {
		if e.IsFile {
			lines = append(lines, fmt.Sprintf("f %s id=%d %d-%d", e.Path(), e.ID, e.Range.Start, e.Range.End))
		} else {
			lines = append(lines, fmt.Sprintf("d %s", e.Path()))
		}
		return nil
	})
	for _, e := range t.AnonymousFiles() {
		lines = append(lines, fmt.Sprintf("a %s id=%d %d-%d", e.Name, e.ID, e.Range.Start, e.Range.End))
	}
	return lines
}

func childNames(e *Entry) []string {
	var names []string
	for _, child := range e.Children() {
		names = append(names, child.Name)
	}
	return names
}

type recordingObserver struct {
	directories []string
	anonymous   []uint16
}

func (o *recordingObserver) DirectoryDecoded(id uint16, path string, files int) {
	o.directories = append(o.directories, fmt.Sprintf("%04x %s %d", id, path, files))
}

func (o *recordingObserver) AnonymousFiles(ids []uint16) {
	o.anonymous = append(o.anonymous, ids...)
}

func (o *recordingObserver) ContainerFound(string, int, int) {}
func (o *recordingObserver) SectionsTruncated(string, int, error) {}
