package menu

import (
	"sort"

	"github.com/scrybe/scrybe/pkg/entry"
)

// detectOrder classifies the original ordering of every flagged group (or
// every group when forced). Only entries present before the end-of-original
// marker count: entries appended this run must not influence whether the
// user kept the group sorted. In an index group the leading general index
// and a single trailing nested index group are pinned, not sorted data, and
// are excluded from the classification.
func (e *Engine) detectOrder(force bool) {
	for _, g := range e.doc.Root.Groups() {
		if !force && !g.Flags.Has(entry.UpdateOrder) {
			continue
		}
		if force {
			g.Flags |= entry.UpdateOrder
		}
		end := g.EndMarkerIndex()
		if end < 0 {
			end = len(g.Children)
		}
		originals := g.Children[:end]
		if g.Flags.Has(entry.IsIndexGroup) {
			originals = trimIndexExceptions(originals)
		}
		g.Sort = e.classifyOrder(originals)
	}
}

// trimIndexExceptions drops the pinned entries of an index group from a
// slice of originals: a leading all-symbols index and a trailing nested
// index group. A trailing group holding anything else is ordinary content
// and stays in the classification.
func trimIndexExceptions(originals []*entry.Entry) []*entry.Entry {
	if len(originals) > 0 && originals[0].Kind == entry.KindIndex &&
		originals[0].Category == entry.CategoryGeneral {
		originals = originals[1:]
	}
	if len(originals) > 0 {
		last := originals[len(originals)-1]
		if last.Kind == entry.KindGroup && indexContentOnly(last) {
			originals = originals[:len(originals)-1]
		}
	}
	return originals
}

// resortGroups re-establishes each flagged group's detected order now that
// titles are final. Entries appended this run are merge-inserted instead of
// naively left at the end; if an auto-title change broke the original
// order, the originals are repaired first. Pinned index-group exceptions
// never move.
func (e *Engine) resortGroups() {
	for _, g := range e.doc.Root.Groups() {
		if !g.Flags.Has(entry.UpdateOrder) {
			// Even unflagged groups must not leak the run-scoped cursor.
			g.StripEndMarker()
			continue
		}
		e.resortGroup(g)
		g.Flags &^= entry.UpdateOrder
	}
}

func (e *Engine) resortGroup(g *entry.Entry) {
	origCount := g.StripEndMarker()

	// Detach the pinned index-group exceptions before sorting.
	var lead, trail *entry.Entry
	if g.Flags.Has(entry.IsIndexGroup) {
		if origCount > 0 && len(g.Children) > 0 &&
			g.Children[0].Kind == entry.KindIndex &&
			g.Children[0].Category == entry.CategoryGeneral {
			lead = g.RemoveAt(0)
			origCount--
		}
		if origCount > 0 && g.Children[origCount-1].Kind == entry.KindGroup &&
			indexContentOnly(g.Children[origCount-1]) {
			trail = g.RemoveAt(origCount - 1)
			origCount--
		}
	}

	if g.Sort != entry.Unsorted {
		appended := append([]*entry.Entry{}, g.Children[origCount:]...)
		g.Children = g.Children[:origCount]

		if !e.isSortedAt(g.Children, g.Sort) {
			// An auto-title change invalidated the original order.
			e.repairOrder(g, g.Sort)
		}
		for _, a := range appended {
			e.insertSorted(g, a)
		}
	}

	if lead != nil {
		g.InsertAt(0, lead)
	}
	if trail != nil {
		g.Add(trail)
	}
}

// insertSorted merge-inserts an appended entry into its ordered position at
// the group's sort granularity, leaving unsortable interstitial entries
// where they are. Entries that do not participate at this granularity are
// appended at the end.
func (e *Engine) insertSorted(g *entry.Entry, a *entry.Entry) {
	if !participates(a, g.Sort) {
		g.Add(a)
		return
	}
	pos := len(g.Children)
	for i, c := range g.Children {
		if participates(c, g.Sort) && e.cmp.Compare(a, c) < 0 {
			pos = i
			break
		}
	}
	g.InsertAt(pos, a)
}

// repairOrder restores sortedness of a group's original entries. It first
// re-sorts each contiguous run of sortable entries in place; if unsortable
// entries pinned between runs still leave the sequence globally unsorted,
// it falls back to sorting (unsortable-prefix, following-sortable-entry)
// tuples as atomic units so unsortable entries keep their context. A
// trailing unsortable tail with no following sortable entry stays put; this
// last resort is best-effort, not guaranteed fully sorted.
func (e *Engine) repairOrder(g *entry.Entry, kind entry.SortKind) {
	// Sort each contiguous sortable run.
	i := 0
	for i < len(g.Children) {
		if !participates(g.Children[i], kind) {
			i++
			continue
		}
		j := i
		for j < len(g.Children) && participates(g.Children[j], kind) {
			j++
		}
		run := g.Children[i:j]
		sort.SliceStable(run, func(a, b int) bool {
			return e.cmp.Compare(run[a], run[b]) < 0
		})
		i = j
	}
	if e.isSortedAt(g.Children, kind) {
		return
	}

	// Fallback: lock every unsortable prefix to the sortable entry that
	// follows it and sort those locked tuples as units.
	type lockedTuple struct {
		prefix []*entry.Entry
		key    *entry.Entry
	}
	var tuples []lockedTuple
	var prefix []*entry.Entry
	for _, c := range g.Children {
		if participates(c, kind) {
			tuples = append(tuples, lockedTuple{prefix: prefix, key: c})
			prefix = nil
		} else {
			prefix = append(prefix, c)
		}
	}
	sort.SliceStable(tuples, func(a, b int) bool {
		return e.cmp.Compare(tuples[a].key, tuples[b].key) < 0
	})

	out := g.Children[:0]
	for _, t := range tuples {
		out = append(out, t.prefix...)
		out = append(out, t.key)
	}
	out = append(out, prefix...)
	g.Children = out
}
