package menu

import (
	"strings"

	"github.com/scrybe/scrybe/pkg/entry"
)

// Ellipsis marks the collapsed middle of an over-long generated title.
const titleEllipsis = "..."

// maxTitleSegments is how many segments a generated title may keep before
// its middle is collapsed.
const maxTitleSegments = 3

// generateTitles recomputes titles for every unlocked file in groups
// flagged for title updates: the leading path segments shared by the
// group's files are stripped from each default title, over-long remainders
// are collapsed with an ellipsis, and the flag is cleared. Locked titles
// are never touched.
func (e *Engine) generateTitles() {
	for _, g := range e.doc.Root.Groups() {
		if !g.Flags.Has(entry.UpdateTitles) {
			continue
		}
		gen := e.autoTitlesFor(g)
		for _, c := range g.Children {
			if c.Kind != entry.KindFile || c.Locked {
				continue
			}
			if t, ok := gen[c.Target]; ok && t != c.Title {
				c.Title = t
			}
		}
		g.Flags &^= entry.UpdateTitles
	}
}

// autoTitlesFor computes the generated title for each unlocked file child
// of a group from the externally supplied default titles. The shared
// leading segments are only stripped when the group has at least two
// eligible files; a lone file keeps its full default title.
func (e *Engine) autoTitlesFor(g *entry.Entry) map[string]string {
	type split struct {
		target string
		segs   []string
		seps   []string
	}
	var files []split
	for _, c := range g.Children {
		if c.Kind != entry.KindFile || c.Locked {
			continue
		}
		segs, seps := splitTitle(e.defaultTitle(c.Target))
		files = append(files, split{target: c.Target, segs: segs, seps: seps})
	}
	if len(files) == 0 {
		return nil
	}

	common := 0
	if len(files) > 1 {
		// The shared prefix may never swallow the final segment of any
		// title.
		common = len(files[0].segs) - 1
		for _, f := range files {
			n := 0
			for n < common && n < len(f.segs)-1 && f.segs[n] == files[0].segs[n] {
				n++
			}
			if n < common {
				common = n
			}
		}
	}

	gen := make(map[string]string, len(files))
	for _, f := range files {
		gen[f.target] = joinTitle(f.segs[common:], f.seps[common:])
	}
	return gen
}

// splitTitle breaks a default title into segments. Path-like titles split
// on directory separators; symbol-like titles split on ".", "::" and "->",
// keeping each separator so the remainder can be rejoined faithfully.
func splitTitle(title string) (segs, seps []string) {
	if strings.ContainsRune(title, '/') {
		parts := strings.Split(title, "/")
		for range parts[1:] {
			seps = append(seps, "/")
		}
		return parts, seps
	}
	start := 0
	for i := 0; i < len(title); {
		switch {
		case strings.HasPrefix(title[i:], "::"):
			segs = append(segs, title[start:i])
			seps = append(seps, "::")
			i += 2
			start = i
		case strings.HasPrefix(title[i:], "->"):
			segs = append(segs, title[start:i])
			seps = append(seps, "->")
			i += 2
			start = i
		case title[i] == '.':
			segs = append(segs, title[start:i])
			seps = append(seps, ".")
			i++
			start = i
		default:
			i++
		}
	}
	segs = append(segs, title[start:])
	return segs, seps
}

// joinTitle reassembles the remaining segments with their original
// separators, collapsing a long middle with an ellipsis.
func joinTitle(segs, seps []string) string {
	if len(segs) == 0 {
		return ""
	}
	if len(segs) > maxTitleSegments {
		first, last := segs[0], segs[len(segs)-1]
		return first + seps[0] + titleEllipsis + seps[len(seps)-1] + last
	}
	var b strings.Builder
	for i, s := range segs {
		if i > 0 {
			b.WriteString(seps[i-1])
		}
		b.WriteString(s)
	}
	return b.String()
}
