package narc

import (
	"errors"
	"fmt"

	"github.com/retroenv/ndsrom/internal/container"
	"github.com/retroenv/ndsrom/internal/filetable"
	"github.com/retroenv/ndsrom/internal/progress"
)

// Index holds the archives decoded from the files of a table. A nil index
// is empty.
type Index struct {
	obs      progress.Observer
	archives map[*filetable.Entry]*Narc
}

// NewIndex returns an empty index.
func NewIndex(obs progress.Observer) *Index {
	return &Index{
		obs:      progress.OrNop(obs),
		archives: map[*filetable.Entry]*Narc{},
	}
}

// Expand decodes every file of the table that starts with a NARC magic and
// recursively the files of the decoded archives. Archives that fail to
// decode are skipped, their errors are returned joined after all other
// archives were processed.
func (x *Index) Expand(table *filetable.Table) error {
	var errs []error

	for _, file := range table.Files() {
		if _, ok := x.archives[file]; ok {
			continue
		}
		if m, ok := file.Magic(); !ok || m != magic {
			continue
		}

		n, err := x.decode(file)
		if err != nil {
			errs = append(errs, fmt.Errorf("file '%s': %w", file.Path(), err))
			continue
		}
		if n == nil {
			continue
		}

		x.archives[file] = n
		if err := x.Expand(n.Table); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (x *Index) decode(file *filetable.Entry) (*Narc, error) {
	data, _ := file.Data()
	seg, err := container.Parse(data, x.obs)
	if errors.Is(err, container.ErrUnrecognizedContainer) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parsing container: %w", err)
	}
	n, _, err := TryParse(seg, x.obs)
	return n, err
}

// Lookup returns the archive decoded from the file.
func (x *Index) Lookup(file *filetable.Entry) (*Narc, bool) {
	if x == nil {
		return nil, false
	}
	n, ok := x.archives[file]
	return n, ok
}

// Table returns the file table of the archive decoded from the file.
func (x *Index) Table(file *filetable.Entry) (*filetable.Table, bool) {
	n, ok := x.Lookup(file)
	if !ok {
		return nil, false
	}
	return n.Table, true
}

// Len returns the number of decoded archives.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.archives)
}
