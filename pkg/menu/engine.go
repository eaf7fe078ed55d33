// Package menu maintains the user-editable documentation outline. Every run
// it re-derives the menu from the current set of documented files without
// discarding manual edits, by comparing against a binary snapshot of the
// previous run and applying a fixed sequence of tree-rewriting passes.
package menu

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/scrybe/scrybe/pkg/entry"
	"github.com/scrybe/scrybe/pkg/outline"
	"github.com/scrybe/scrybe/pkg/snapshot"
)

// ErrMenuErrors means the menu file had syntax errors. The file has been
// rewritten with inline annotations and the run must stop without output.
var ErrMenuErrors = errors.New("menu file has errors")

// Sources is what the engine consumes from the rest of the pipeline: which
// files currently produce documentation, their externally computed default
// titles, and which index categories currently have symbols.
type Sources interface {
	HasContent(file string) bool
	ContentFiles() []string
	DefaultTitleOf(file string) string
	CategoriesWithSymbols(candidates []entry.Category) []entry.Category
}

// Options configures one reconciliation run.
type Options struct {
	MenuPath     string
	SnapshotPath string
	AppVersion   string
	// DefaultTitle seeds the menu title when no menu file exists yet.
	DefaultTitle string
	// Rebuild forces full re-derivation of titles and ordering. It does not
	// skip loading the snapshot: user-edit detection must still work.
	Rebuild bool
}

// Engine owns the menu tree, the banned-category set and the per-group
// dirty flags for one run. It is single-use: create one, call Run, read the
// results.
type Engine struct {
	log  *logrus.Logger
	src  Sources
	opts Options
	diag io.Writer

	doc       *outline.Document
	menuData  []byte
	fileIndex map[string]*entry.Entry

	prev      *snapshot.Snapshot
	prevFiles map[string]*entry.Entry

	originalFileCount int
	categories        map[entry.Category]bool
	changed           bool
	cmp               *comparator
}

// New creates an engine. log may be nil for a silent engine.
func New(log *logrus.Logger, src Sources, opts Options) *Engine {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Engine{
		log:        log,
		src:        src,
		opts:       opts,
		diag:       os.Stderr,
		categories: make(map[entry.Category]bool),
		cmp:        newComparator(),
	}
}

// SetDiagnostics redirects the "file:line: message" error stream, which
// defaults to stderr.
func (e *Engine) SetDiagnostics(w io.Writer) {
	e.diag = w
}

// Tree returns the top-level menu entries in order. Read-only.
func (e *Engine) Tree() []*entry.Entry { return e.doc.Root.Children }

// Title returns the menu title, or "" if none was set.
func (e *Engine) Title() string { return e.doc.Title }

// SubTitle returns the menu sub-title, or "" if none was set.
func (e *Engine) SubTitle() string { return e.doc.SubTitle }

// Footer returns the page footer, or "" if none was set.
func (e *Engine) Footer() string { return e.doc.Footer }

// Categories returns the index categories present in the menu after
// reconciliation.
func (e *Engine) Categories() map[entry.Category]bool { return e.categories }

// PreviousCategories returns the index categories of the previous run, or
// nil on a first run.
func (e *Engine) PreviousCategories() map[entry.Category]bool {
	if e.prev == nil {
		return nil
	}
	return e.prev.Categories
}

// Changed reports whether the reconciled menu differs from the last
// persisted snapshot.
func (e *Engine) Changed() bool { return e.changed }

// Run loads the menu file and snapshot, runs the reconciliation passes in
// their fixed order, and writes both files back if anything changed. A menu
// file with syntax errors aborts with ErrMenuErrors after the file has been
// annotated in place.
func (e *Engine) Run() error {
	if err := e.load(); err != nil {
		return err
	}
	e.reconcile()
	return e.finish()
}

func (e *Engine) load() error {
	data, err := os.ReadFile(e.opts.MenuPath)
	switch {
	case os.IsNotExist(err):
		e.log.WithField("path", e.opts.MenuPath).Debug("no menu file, starting fresh")
		e.doc = outline.NewDocument()
		e.doc.Title = e.opts.DefaultTitle
		e.fileIndex = make(map[string]*entry.Entry)
	case err != nil:
		return fmt.Errorf("read menu file: %w", err)
	default:
		e.menuData = data
		res := outline.Parse(bytes.NewReader(data))
		if len(res.Errors) > 0 {
			return e.reportErrors(res.Errors)
		}
		e.doc = res.Doc
		e.fileIndex = res.FileIndex
		e.applyLegacyLocks(res.LegacyLockedTitles)
	}
	e.originalFileCount = len(e.fileIndex)

	snap, err := snapshot.Load(e.opts.SnapshotPath)
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		e.log.Debug("no previous snapshot")
	case err != nil:
		e.log.WithError(err).Warn("previous snapshot unreadable, treating as first run")
	default:
		e.prev = snap
		e.prevFiles = snap.Root.FileIndex()
	}
	return nil
}

// reportErrors rewrites the menu file with inline annotations, echoes the
// errors to the diagnostic stream and aborts the run.
func (e *Engine) reportErrors(errs []outline.ParseError) error {
	annotated := outline.Annotate(e.menuData, errs)
	if werr := os.WriteFile(e.opts.MenuPath, annotated, 0644); werr != nil {
		e.log.WithError(werr).Error("could not annotate menu file")
	}
	outline.Report(e.diag, e.opts.MenuPath, errs)
	return fmt.Errorf("%w: %d error(s) in %s", ErrMenuErrors, len(errs), e.opts.MenuPath)
}

// applyLegacyLocks resolves the deferred locked titles of a pre-1.0 menu
// file. A legacy title is locked only if it differs from what the title
// generator would produce today; manual titles that happen to match the
// generated form are silently released to automation.
func (e *Engine) applyLegacyLocks(legacy map[string]string) {
	if len(legacy) == 0 {
		return
	}
	for _, g := range e.doc.Root.Groups() {
		var gen map[string]string
		for _, c := range g.Children {
			if c.Kind != entry.KindFile {
				continue
			}
			title, ok := legacy[c.Target]
			if !ok {
				continue
			}
			if gen == nil {
				gen = e.autoTitlesFor(g)
			}
			if gen[c.Target] != title {
				c.Locked = true
			}
		}
	}
}

// reconcile runs the passes. The order is load-bearing: placement must see
// dead entries so their positions don't distort its heuristics, grouping
// must settle before order detection, and titles must be final before
// resorting because the sort comparator reads them.
func (e *Engine) reconcile() {
	menuEdited := e.prev == nil || !entry.Equal(e.doc.Root, e.prev.Root)

	e.lockUserTitleChanges()
	e.flagTitleChanges(menuEdited || e.opts.Rebuild)
	e.autoPlaceNewFiles()
	removed := e.removeDeadFiles()
	e.guardTrashedMenu(removed)
	e.adjustBannedCategories()
	e.detectIndexGroups()
	e.updateIndexes()
	e.removeDeadGroups()
	e.createDirectorySubGroups()
	e.detectOrder(e.opts.Rebuild)
	e.generateTitles()
	e.resortGroups()
}

func (e *Engine) finish() error {
	e.categories = make(map[entry.Category]bool)
	e.doc.Root.Walk(func(n *entry.Entry) bool {
		if n.Kind == entry.KindIndex {
			e.categories[n.Category] = true
		}
		return true
	})

	e.changed = e.prev == nil ||
		!entry.Equal(e.doc.Root, e.prev.Root) ||
		!categoriesEqual(e.categories, e.prev.Categories)
	if !e.changed {
		e.log.Debug("menu unchanged")
		return nil
	}

	if err := os.WriteFile(e.opts.MenuPath, outline.Serialize(e.doc), 0644); err != nil {
		return fmt.Errorf("write menu file: %w", err)
	}
	snap := &snapshot.Snapshot{
		AppVersion: e.opts.AppVersion,
		Categories: e.categories,
		Root:       e.doc.Root,
	}
	if err := snapshot.Save(e.opts.SnapshotPath, snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	e.log.WithFields(logrus.Fields{
		"menu":     e.opts.MenuPath,
		"snapshot": e.opts.SnapshotPath,
	}).Debug("menu updated")
	return nil
}

func categoriesEqual(a, b map[entry.Category]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for c := range a {
		if !b[c] {
			return false
		}
	}
	return true
}
