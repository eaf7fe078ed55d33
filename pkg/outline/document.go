// Package outline reads and writes the human-editable menu file. The format
// is line-oriented and forgiving: parsing collects line-addressed errors and
// keeps going, so a whole file's worth of mistakes can be reported at once.
package outline

import (
	"strconv"
	"strings"

	"github.com/scrybe/scrybe/pkg/entry"
)

const (
	// CurrentFormatVersion is written by Serialize and is the newest format
	// Parse fully understands.
	CurrentFormatVersion = "1.4"

	// LegacyFormatVersion is assumed for files without a leading Format
	// line. Legacy files invert the auto-title default: every file title is
	// treated as hand-written unless marked otherwise.
	LegacyFormatVersion = "0.95"
)

// Document is a parsed menu file: the entry tree plus the scalar header
// fields and the set of categories the user told us never to index.
type Document struct {
	FormatVersion string
	Title         string
	SubTitle      string
	Footer        string
	Banned        map[entry.Category]bool
	Root          *entry.Entry
}

// NewDocument creates an empty document at the current format version.
func NewDocument() *Document {
	return &Document{
		FormatVersion: CurrentFormatVersion,
		Banned:        make(map[entry.Category]bool),
		Root:          entry.NewGroup(""),
	}
}

// Legacy reports whether the document predates the 1.0 format.
func (d *Document) Legacy() bool {
	return versionLess(d.FormatVersion, "1.0")
}

// FromFuture reports whether the document declares a format newer than this
// build understands. Such files parse permissively: unrecognized lines are
// skipped instead of reported as errors, since user data cannot simply be
// rejected and regenerated.
func (d *Document) FromFuture() bool {
	return versionLess(CurrentFormatVersion, d.FormatVersion)
}

// versionLess compares dotted numeric version strings segment by segment.
// Non-numeric segments compare as zero, which errs on the permissive side.
func versionLess(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av != bv {
			return av < bv
		}
	}
	return false
}
