package menu

import (
	"os"
	"path"
	"sort"

	"github.com/scrybe/scrybe/pkg/entry"
)

// Trashed-menu guard thresholds: the backup-and-warn path triggers when all
// files are gone and at least this many were removed, when a menu of at
// least guardMinCount lost guardPercent percent of its files, or when the
// removal count alone reaches guardAbsolute.
const (
	guardAllRemoved = 6
	guardMinCount   = 12
	guardPercent    = 40
	guardAbsolute   = 15
)

// lockUserTitleChanges is the first pass: an unlocked file whose title
// differs from the previous snapshot's title for the same target was
// hand-edited by the user, so the title is frozen from now on.
func (e *Engine) lockUserTitleChanges() {
	if e.prevFiles == nil {
		return
	}
	for _, f := range e.doc.Root.Files() {
		if f.Locked {
			continue
		}
		prev, ok := e.prevFiles[f.Target]
		if ok && !prev.Locked && prev.Title != f.Title {
			e.log.WithFields(map[string]interface{}{
				"file":  f.Target,
				"title": f.Title,
			}).Debug("locking user-edited title")
			f.Locked = true
		}
	}
}

// flagTitleChanges marks groups whose generated titles have drifted from
// the titles on record, so the titling and resorting passes revisit them.
// When the menu file was edited (or a rebuild was forced) a per-group diff
// is not safe, and every group is marked instead.
func (e *Engine) flagTitleChanges(all bool) {
	for _, g := range e.doc.Root.Groups() {
		if all {
			g.Flags |= entry.UpdateTitles | entry.UpdateOrder
			continue
		}
		var gen map[string]string
		for _, c := range g.Children {
			if c.Kind != entry.KindFile || c.Locked {
				continue
			}
			if gen == nil {
				gen = e.autoTitlesFor(g)
			}
			if t, ok := gen[c.Target]; ok && t != c.Title {
				g.Flags |= entry.UpdateTitles | entry.UpdateOrder
				break
			}
		}
	}
}

// autoPlaceNewFiles adds a file entry for every documented file the menu
// does not mention yet. The target group is chosen by matching the file's
// directory against the directories of each group's existing file entries,
// walking up parent directories until something matches; the root group is
// the final fallback. Ties between equally matched groups go to the group
// encountered first in a pre-order walk. New entries land after the
// end-of-original marker so later passes can treat them specially.
func (e *Engine) autoPlaceNewFiles() {
	files := e.src.ContentFiles()
	sort.Strings(files)
	for _, f := range files {
		if _, ok := e.fileIndex[f]; ok {
			continue
		}
		g := e.placementGroup(f)
		g.EnsureEndMarker()
		nf := entry.NewFile(e.defaultTitle(f), f, false)
		g.Add(nf)
		g.Flags |= entry.UpdateTitles | entry.UpdateStructure | entry.UpdateOrder
		e.fileIndex[f] = nf
		e.log.WithFields(map[string]interface{}{
			"file":  f,
			"group": g.Title,
		}).Debug("placed new file")
	}
}

func (e *Engine) placementGroup(file string) *entry.Entry {
	groups := e.doc.Root.Groups()
	for dir := path.Dir(file); ; dir = path.Dir(dir) {
		var best *entry.Entry
		bestCount := 0
		for _, g := range groups {
			count := 0
			for _, c := range g.Children {
				if c.Kind == entry.KindFile && path.Dir(c.Target) == dir {
					count++
				}
			}
			// Strictly greater keeps the pre-order-earliest group on ties.
			if count > bestCount {
				best, bestCount = g, count
			}
		}
		if best != nil {
			return best
		}
		if dir == "." || dir == "/" {
			return e.doc.Root
		}
	}
}

func (e *Engine) defaultTitle(file string) string {
	if t := e.src.DefaultTitleOf(file); t != "" {
		return t
	}
	return file
}

// removeDeadFiles deletes file entries whose target no longer produces
// documentation. It runs after placement on purpose: dead entries still
// count as directory evidence while new files are being placed.
func (e *Engine) removeDeadFiles() int {
	removed := 0
	for _, g := range append([]*entry.Entry{}, e.doc.Root.Groups()...) {
		for i := len(g.Children) - 1; i >= 0; i-- {
			c := g.Children[i]
			if c.Kind != entry.KindFile || e.src.HasContent(c.Target) {
				continue
			}
			g.RemoveAt(i)
			delete(e.fileIndex, c.Target)
			g.Flags |= entry.UpdateTitles | entry.UpdateStructure
			removed++
			e.log.WithField("file", c.Target).Debug("removed dead file entry")
		}
	}
	return removed
}

// guardTrashedMenu backs up the menu file and warns when the removal count
// looks less like housekeeping and more like a misconfigured source root
// wiping the menu out.
func (e *Engine) guardTrashedMenu(removed int) {
	orig := e.originalFileCount
	trashed := removed >= guardAbsolute ||
		(orig >= guardMinCount && removed*100 >= orig*guardPercent) ||
		(removed >= guardAllRemoved && removed == orig)
	if !trashed || len(e.menuData) == 0 {
		return
	}
	backup := e.opts.MenuPath + ".bak"
	if err := os.WriteFile(backup, e.menuData, 0644); err != nil {
		e.log.WithError(err).Error("could not back up menu file")
	}
	e.log.WithFields(map[string]interface{}{
		"removed":  removed,
		"original": orig,
		"backup":   backup,
	}).Warn("removed a large share of the menu; backed up the previous menu file")
}
