package menu

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/scrybe/scrybe/pkg/entry"
)

// comparator orders entries by title under a locale-aware case-insensitive
// collation. A file and a group with equal titles order the file first.
type comparator struct {
	col *collate.Collator
}

func newComparator() *comparator {
	return &comparator{col: collate.New(language.English, collate.IgnoreCase)}
}

func (c *comparator) Compare(a, b *entry.Entry) int {
	if r := c.col.CompareString(a.SortKey(), b.SortKey()); r != 0 {
		return r
	}
	if a.Kind != b.Kind {
		if a.Kind == entry.KindFile {
			return -1
		}
		if b.Kind == entry.KindFile {
			return 1
		}
	}
	return 0
}

// participates reports whether an entry is part of the comparison at a
// given sort granularity. Text and link entries only participate at the
// everything level; groups drop out below files-and-groups. Index entries
// count as leaf titled entries, like files.
func participates(e *entry.Entry, kind entry.SortKind) bool {
	switch kind {
	case entry.EverythingSorted:
		return true
	case entry.FilesAndGroupsSorted:
		return e.Kind == entry.KindFile || e.Kind == entry.KindGroup || e.Kind == entry.KindIndex
	case entry.FilesSorted:
		return e.Kind == entry.KindFile || e.Kind == entry.KindIndex
	default:
		return false
	}
}

// classifyOrder determines how a group's original entries were sorted. It
// scans once, degrading exactly one granularity level on each out-of-order
// adjacent pair: the pair that caused a degradation is forgiven at the
// lower level and scanning continues.
func (e *Engine) classifyOrder(entries []*entry.Entry) entry.SortKind {
	level := entry.EverythingSorted
	var lastAll, lastFG, lastFile *entry.Entry

	for _, c := range entries {
		switch level {
		case entry.EverythingSorted:
			if lastAll != nil && e.cmp.Compare(lastAll, c) > 0 {
				level = entry.FilesAndGroupsSorted
			}
		case entry.FilesAndGroupsSorted:
			if participates(c, level) && lastFG != nil && e.cmp.Compare(lastFG, c) > 0 {
				level = entry.FilesSorted
			}
		case entry.FilesSorted:
			if participates(c, level) && lastFile != nil && e.cmp.Compare(lastFile, c) > 0 {
				return entry.Unsorted
			}
		}
		lastAll = c
		if participates(c, entry.FilesAndGroupsSorted) {
			lastFG = c
		}
		if participates(c, entry.FilesSorted) {
			lastFile = c
		}
	}
	return level
}

// isSortedAt reports whether the participating entries of the list are in
// order at the given granularity.
func (e *Engine) isSortedAt(entries []*entry.Entry, kind entry.SortKind) bool {
	var last *entry.Entry
	for _, c := range entries {
		if !participates(c, kind) {
			continue
		}
		if last != nil && e.cmp.Compare(last, c) > 0 {
			return false
		}
		last = c
	}
	return true
}
