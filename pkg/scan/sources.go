package scan

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/scrybe/scrybe/pkg/entry"
	"github.com/scrybe/scrybe/pkg/symbols"
)

// Docs adapts a scan result plus the symbol index to what the menu engine
// consumes.
type Docs struct {
	log *logrus.Logger
	res *Result
	idx *symbols.Index
}

// NewDocs wraps a scan result for the menu engine.
func NewDocs(log *logrus.Logger, res *Result, idx *symbols.Index) *Docs {
	return &Docs{log: log, res: res, idx: idx}
}

// HasContent reports whether a file currently produces documentation.
func (d *Docs) HasContent(file string) bool {
	_, ok := d.res.Files[file]
	return ok
}

// ContentFiles lists every file that produces documentation, sorted.
func (d *Docs) ContentFiles() []string {
	out := make([]string, 0, len(d.res.Files))
	for f := range d.res.Files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// DefaultTitleOf returns the externally computed default title of a file,
// which may be the file path itself when nothing better was found.
func (d *Docs) DefaultTitleOf(file string) string {
	if doc, ok := d.res.Files[file]; ok {
		return doc.Title
	}
	return file
}

// CategoriesWithSymbols filters the candidates to the categories that have
// at least one indexable symbol right now.
func (d *Docs) CategoriesWithSymbols(candidates []entry.Category) []entry.Category {
	out, err := d.idx.CategoriesWithSymbols(candidates)
	if err != nil {
		d.log.WithError(err).Warn("could not query symbol index")
		return nil
	}
	return out
}
