package menu

import (
	"path"
	"sort"
	"strings"

	"github.com/scrybe/scrybe/pkg/entry"
)

// Directory sub-grouping thresholds: a flagged group with more than
// subGroupThreshold direct file entries gets split, and a directory bucket
// must reach subGroupMin files to become a group of its own.
const (
	subGroupThreshold = 6
	subGroupMin       = 3
)

// removeDeadGroups prunes groups that became empty and collapses groups
// that shrank to a single entry: a group flagged for structural update with
// exactly one child is replaced by that child at the same position in its
// parent. The root is exempt.
func (e *Engine) removeDeadGroups() {
	e.pruneGroups(e.doc.Root)
}

func (e *Engine) pruneGroups(g *entry.Entry) {
	for i := len(g.Children) - 1; i >= 0; i-- {
		c := g.Children[i]
		if c.Kind != entry.KindGroup {
			continue
		}
		e.pruneGroups(c)
		kept := realChildren(c)
		switch {
		case len(kept) == 0:
			g.RemoveAt(i)
			e.log.WithField("group", c.Title).Debug("removed empty group")
		case len(kept) == 1 && c.Flags.Has(entry.UpdateStructure):
			g.Children[i] = kept[0]
			e.log.WithField("group", c.Title).Debug("collapsed singleton group")
		}
	}
}

// realChildren returns a group's children minus the end-of-original marker.
func realChildren(g *entry.Entry) []*entry.Entry {
	out := make([]*entry.Entry, 0, len(g.Children))
	for _, c := range g.Children {
		if c.Kind != entry.KindEndOriginal {
			out = append(out, c)
		}
	}
	return out
}

// createDirectorySubGroups splits oversized flagged groups along directory
// lines: files sharing their next directory segment below the group's
// common path are bucketed, buckets big enough become sub-groups, and
// sub-groups are subdivided again if they are still oversized. Sibling
// groups living two or more directory levels below a new bucket move into
// it. Groups that end up at or below the size threshold have their
// structure flag cleared.
func (e *Engine) createDirectorySubGroups() {
	for _, g := range append([]*entry.Entry{}, e.doc.Root.Groups()...) {
		if g.Flags.Has(entry.UpdateStructure) {
			e.subGroup(g)
		}
	}
}

func (e *Engine) subGroup(g *entry.Entry) {
	files := directFiles(g)
	if len(files) <= subGroupThreshold {
		g.Flags &^= entry.UpdateStructure
		return
	}

	shared := commonDir(files)
	buckets := make(map[string][]*entry.Entry)
	for _, f := range files {
		seg := nextSegment(path.Dir(f.Target), shared)
		if seg == "" {
			continue // file sits directly in the shared directory
		}
		buckets[seg] = append(buckets[seg], f)
	}

	segs := make([]string, 0, len(buckets))
	for seg, b := range buckets {
		if len(b) >= subGroupMin {
			segs = append(segs, seg)
		}
	}
	sort.Strings(segs)

	for _, seg := range segs {
		bucket := buckets[seg]
		ng := entry.NewGroup(seg)
		ng.Flags |= entry.UpdateTitles | entry.UpdateOrder
		ng.EnsureEndMarker()

		// The new group takes the position of its first member file.
		pos := indexOf(g, bucket[0])
		g.InsertAt(pos, ng)
		for _, f := range bucket {
			g.RemoveAt(indexOf(g, f))
			ng.Add(f)
		}
		bucketDir := joinDir(shared, seg)
		e.relocateDeepSiblings(g, ng, shared, bucketDir)
		if len(directFiles(ng)) > subGroupThreshold {
			e.subGroup(ng)
		}
		g.Flags |= entry.UpdateTitles | entry.UpdateOrder
		e.log.WithFields(map[string]interface{}{
			"group": g.Title,
			"sub":   seg,
			"files": len(bucket),
		}).Debug("created directory sub-group")
	}

	if len(directFiles(g)) <= subGroupThreshold {
		g.Flags &^= entry.UpdateStructure
	}
}

// relocateDeepSiblings moves sibling sub-groups whose files all live two or
// more directory levels below the group's shared path, and inside the new
// bucket's directory, into the bucket group.
func (e *Engine) relocateDeepSiblings(g, bucket *entry.Entry, shared, bucketDir string) {
	for i := len(g.Children) - 1; i >= 0; i-- {
		c := g.Children[i]
		if c.Kind != entry.KindGroup || c == bucket {
			continue
		}
		dir := groupDir(c)
		if dir == "" || !underDir(dir, bucketDir) {
			continue
		}
		if dirDepth(dir) < dirDepth(shared)+2 {
			continue
		}
		g.RemoveAt(i)
		bucket.Add(c)
		e.log.WithFields(map[string]interface{}{
			"group":  c.Title,
			"bucket": bucket.Title,
		}).Debug("relocated sub-group into directory bucket")
	}
}

func directFiles(g *entry.Entry) []*entry.Entry {
	var out []*entry.Entry
	for _, c := range g.Children {
		if c.Kind == entry.KindFile {
			out = append(out, c)
		}
	}
	return out
}

func indexOf(g *entry.Entry, child *entry.Entry) int {
	for i, c := range g.Children {
		if c == child {
			return i
		}
	}
	panic("menu: entry vanished from its group")
}

// commonDir returns the directory path segments shared by every file's
// directory, or "." when nothing is shared.
func commonDir(files []*entry.Entry) string {
	var shared []string
	for i, f := range files {
		segs := splitDir(path.Dir(f.Target))
		if i == 0 {
			shared = segs
			continue
		}
		n := 0
		for n < len(shared) && n < len(segs) && shared[n] == segs[n] {
			n++
		}
		shared = shared[:n]
	}
	if len(shared) == 0 {
		return "."
	}
	return strings.Join(shared, "/")
}

// groupDir returns the directory shared by every file anywhere under the
// group, or "" if the group holds no files.
func groupDir(g *entry.Entry) string {
	files := g.Files()
	if len(files) == 0 {
		return ""
	}
	return commonDir(files)
}

func splitDir(dir string) []string {
	if dir == "." || dir == "" || dir == "/" {
		return nil
	}
	return strings.Split(strings.Trim(dir, "/"), "/")
}

func dirDepth(dir string) int {
	return len(splitDir(dir))
}

// nextSegment returns the first directory segment of dir below base, or ""
// if dir does not extend past base.
func nextSegment(dir, base string) string {
	segs := splitDir(dir)
	base = strings.TrimSuffix(base, "/")
	n := dirDepth(base)
	if len(segs) <= n {
		return ""
	}
	return segs[n]
}

func joinDir(base, seg string) string {
	if base == "." || base == "" {
		return seg
	}
	return base + "/" + seg
}

func underDir(dir, base string) bool {
	return dir == base || strings.HasPrefix(dir, base+"/")
}
