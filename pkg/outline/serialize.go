package outline

import (
	"fmt"
	"strings"

	"github.com/scrybe/scrybe/pkg/entry"
)

// indentUnit is the indentation added per group nesting level.
const indentUnit = "   "

var headerComment = []string{
	"# This is the menu for your documentation. It is rebuilt on every run,",
	"# but your edits are kept: you can retitle entries, move them between",
	"# groups, reorder them, add Text and Link lines, and create groups of",
	"# your own. Comments and bracing are regenerated each time.",
}

// Serialize writes the document back out in the current format version,
// regardless of the version it was parsed from. Output is stable: the same
// document always serializes to the same bytes.
func Serialize(doc *Document) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "Format: %s\n\n", CurrentFormatVersion)
	for _, line := range headerComment {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if doc.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", doc.Title)
	}
	if doc.SubTitle != "" {
		fmt.Fprintf(&b, "SubTitle: %s\n", doc.SubTitle)
	}
	if doc.Title != "" || doc.SubTitle != "" {
		b.WriteByte('\n')
	}
	if doc.Footer != "" {
		fmt.Fprintf(&b, "Footer: %s\n\n", doc.Footer)
	}
	if banned := bannedList(doc.Banned); banned != "" {
		fmt.Fprintf(&b, "Don't Index: %s\n\n", banned)
	}

	for _, c := range doc.Root.Children {
		writeEntry(&b, c, 0)
	}
	return []byte(b.String())
}

// bannedList renders the banned-category set in a fixed category order so
// serialization stays stable.
func bannedList(banned map[entry.Category]bool) string {
	var names []string
	for _, c := range entry.AllCategories {
		if banned[c] {
			names = append(names, c.String())
		}
	}
	return strings.Join(names, ", ")
}

func writeEntry(b *strings.Builder, e *entry.Entry, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	switch e.Kind {
	case entry.KindGroup:
		fmt.Fprintf(b, "%sGroup: %s  {\n\n", indent, e.Title)
		for _, c := range e.Children {
			writeEntry(b, c, depth+1)
		}
		fmt.Fprintf(b, "%s%s}  # Group: %s\n\n", indent, indentUnit, e.Title)
	case entry.KindFile:
		if e.Locked {
			fmt.Fprintf(b, "%sFile: %s  (no auto-title, %s)\n", indent, e.Title, e.Target)
		} else {
			fmt.Fprintf(b, "%sFile: %s  (%s)\n", indent, e.Title, e.Target)
		}
	case entry.KindText:
		fmt.Fprintf(b, "%sText: %s\n", indent, e.Body)
	case entry.KindLink:
		if e.Title == e.Target {
			fmt.Fprintf(b, "%sLink: %s\n", indent, e.Target)
		} else {
			fmt.Fprintf(b, "%sLink: %s  (%s)\n", indent, e.Title, e.Target)
		}
	case entry.KindIndex:
		if e.Category == entry.CategoryGeneral {
			fmt.Fprintf(b, "%sIndex: %s\n", indent, e.Title)
		} else {
			fmt.Fprintf(b, "%s%s Index: %s\n", indent, e.Category, e.Title)
		}
	case entry.KindEndOriginal:
		// The run-scoped cursor leaking into serialization means a pass
		// failed to clean up after itself.
		panic("outline: end-of-original marker reached the serializer")
	default:
		panic(fmt.Sprintf("outline: unknown entry kind %d", e.Kind))
	}
}
