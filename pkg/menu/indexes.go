package menu

import (
	"github.com/scrybe/scrybe/pkg/entry"
)

// indexGroupTitle names the group created when indexes have no home yet.
const indexGroupTitle = "Indexes"

// adjustBannedCategories reconciles the banned set with what the user did
// to the menu file: an index category present last run but deleted from the
// file gets banned, and a banned category the user added back gets unbanned.
func (e *Engine) adjustBannedCategories() {
	if e.prev == nil {
		return
	}
	current := make(map[entry.Category]bool)
	e.doc.Root.Walk(func(n *entry.Entry) bool {
		if n.Kind == entry.KindIndex {
			current[n.Category] = true
		}
		return true
	})
	for c := range e.prev.Categories {
		if !current[c] && !e.doc.Banned[c] {
			e.doc.Banned[c] = true
			e.log.WithField("category", c.String()).Debug("user removed index, banning category")
		}
	}
	for c := range current {
		if e.doc.Banned[c] {
			delete(e.doc.Banned, c)
			e.log.WithField("category", c.String()).Debug("user re-added index, unbanning category")
		}
	}
}

// detectIndexGroups marks groups whose content is index entries: at least
// one index child, and nothing but indexes, free text and nested groups of
// the same shape.
func (e *Engine) detectIndexGroups() {
	for _, g := range e.doc.Root.Groups() {
		if g == e.doc.Root {
			continue
		}
		if indexContentOnly(g) {
			g.Flags |= entry.IsIndexGroup
		} else {
			g.Flags &^= entry.IsIndexGroup
		}
	}
}

// indexContentOnly reports whether a group holds nothing but index entries,
// free text and nested groups of the same shape, with at least one index
// present somewhere below.
func indexContentOnly(g *entry.Entry) bool {
	hasIndex := false
	for _, c := range g.Children {
		switch c.Kind {
		case entry.KindIndex:
			hasIndex = true
		case entry.KindText, entry.KindEndOriginal:
			// ignored
		case entry.KindGroup:
			if !indexContentOnly(c) {
				return false
			}
			hasIndex = true
		default:
			return false
		}
	}
	return hasIndex
}

// updateIndexes removes index entries whose category has no indexable
// symbols left or is banned, then adds an entry for every category that has
// symbols, is not banned and is not yet in the menu. New indexes join the
// group holding the most index entries already, pre-order position breaking
// ties; if no group has any, a fresh "Indexes" group is created at the top
// level.
func (e *Engine) updateIndexes() {
	want := make(map[entry.Category]bool)
	for _, c := range e.src.CategoriesWithSymbols(entry.AllCategories) {
		want[c] = true
	}

	present := make(map[entry.Category]bool)
	for _, g := range e.doc.Root.Groups() {
		for i := len(g.Children) - 1; i >= 0; i-- {
			c := g.Children[i]
			if c.Kind != entry.KindIndex {
				continue
			}
			if !want[c.Category] || e.doc.Banned[c.Category] {
				g.RemoveAt(i)
				g.Flags |= entry.UpdateStructure
				e.log.WithField("category", c.Category.String()).Debug("removed index entry")
				continue
			}
			present[c.Category] = true
		}
	}

	for _, c := range entry.AllCategories {
		if !want[c] || e.doc.Banned[c] || present[c] {
			continue
		}
		g := e.bestIndexGroup()
		if g == nil {
			g = entry.NewGroup(indexGroupTitle)
			g.Flags |= entry.IsIndexGroup | entry.UpdateOrder
			g.EnsureEndMarker()
			e.doc.Root.Add(g)
		}
		g.EnsureEndMarker()
		g.Add(entry.NewIndex(c.DefaultIndexTitle(), c))
		g.Flags |= entry.UpdateOrder
		present[c] = true
		e.log.WithField("category", c.String()).Debug("added index entry")
	}
}

// bestIndexGroup returns the group with the most direct index entries, the
// earliest in pre-order on a tie, or nil if no group holds any index.
func (e *Engine) bestIndexGroup() *entry.Entry {
	var best *entry.Entry
	bestCount := 0
	for _, g := range e.doc.Root.Groups() {
		count := 0
		for _, c := range g.Children {
			if c.Kind == entry.KindIndex {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = g, count
		}
	}
	return best
}
