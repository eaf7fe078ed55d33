package entry

// Kind categorizes the different kinds of entries in the menu tree.
type Kind int

const (
	KindGroup Kind = iota
	KindFile
	KindText
	KindLink
	KindIndex

	// KindEndOriginal is a run-scoped cursor separating entries that were
	// present when the menu was loaded from entries appended during the
	// current run. It must never survive into a serialized form.
	KindEndOriginal
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindFile:
		return "file"
	case KindText:
		return "text"
	case KindLink:
		return "link"
	case KindIndex:
		return "index"
	case KindEndOriginal:
		return "end-original"
	default:
		return "unknown"
	}
}

// Entry represents a single node in the menu tree. Which fields are
// meaningful depends on Kind: groups carry Flags, Sort and Children, files
// carry Target and Locked, text entries carry Body, links carry Target as a
// URL, and indexes carry Category.
type Entry struct {
	Kind     Kind
	Title    string
	Target   string // file path for files, URL for links
	Body     string // text entries only
	Locked   bool   // files only: title pinned by the user
	Flags    GroupFlags
	Sort     SortKind
	Category Category // indexes only
	Children []*Entry // groups only
}

// NewGroup creates an empty group. The root of the tree is a group with an
// empty title.
func NewGroup(title string) *Entry {
	return &Entry{Kind: KindGroup, Title: title}
}

// NewFile creates a file entry pointing at target.
func NewFile(title, target string, locked bool) *Entry {
	return &Entry{Kind: KindFile, Title: title, Target: target, Locked: locked}
}

// NewText creates a free text entry.
func NewText(body string) *Entry {
	return &Entry{Kind: KindText, Body: body}
}

// NewLink creates a link entry. An empty title defaults to the URL itself.
func NewLink(title, url string) *Entry {
	if title == "" {
		title = url
	}
	return &Entry{Kind: KindLink, Title: title, Target: url}
}

// NewIndex creates an index entry for the given category. Use
// CategoryGeneral for the all-symbols index.
func NewIndex(title string, cat Category) *Entry {
	return &Entry{Kind: KindIndex, Title: title, Category: cat}
}

// NewEndMarker creates the run-scoped end-of-original cursor entry.
func NewEndMarker() *Entry {
	return &Entry{Kind: KindEndOriginal}
}

// SortKey returns the string an entry is compared by when sorting. Text
// entries compare by their body, everything else by title.
func (e *Entry) SortKey() string {
	if e.Kind == KindText {
		return e.Body
	}
	return e.Title
}

// Add appends a child to a group.
func (e *Entry) Add(children ...*Entry) {
	e.Children = append(e.Children, children...)
}

// InsertAt inserts a child at position i of a group.
func (e *Entry) InsertAt(i int, child *Entry) {
	e.Children = append(e.Children, nil)
	copy(e.Children[i+1:], e.Children[i:])
	e.Children[i] = child
}

// RemoveAt removes and returns the child at position i.
func (e *Entry) RemoveAt(i int) *Entry {
	c := e.Children[i]
	e.Children = append(e.Children[:i], e.Children[i+1:]...)
	return c
}

// EndMarkerIndex returns the position of the end-of-original marker among a
// group's children, or -1 if there is none.
func (e *Entry) EndMarkerIndex() int {
	for i, c := range e.Children {
		if c.Kind == KindEndOriginal {
			return i
		}
	}
	return -1
}

// StripEndMarker removes the end-of-original marker from a group's direct
// children, clearing HasEndMarker. It returns the number of entries that
// preceded the marker, or the child count if there was no marker.
func (e *Entry) StripEndMarker() int {
	i := e.EndMarkerIndex()
	e.Flags &^= HasEndMarker
	if i < 0 {
		return len(e.Children)
	}
	e.RemoveAt(i)
	return i
}

// EnsureEndMarker appends an end-of-original marker if the group does not
// already carry one, so that entries added afterward are recognizable as
// new this run.
func (e *Entry) EnsureEndMarker() {
	if e.Flags.Has(HasEndMarker) {
		return
	}
	e.Add(NewEndMarker())
	e.Flags |= HasEndMarker
}

// Walk visits e and every descendant in pre-order, children in document
// order. fn returning false prunes the subtree below the visited entry.
func (e *Entry) Walk(fn func(*Entry) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// Groups returns every group in the subtree rooted at e, in pre-order,
// including e itself if it is a group. Tie-breaking between equally good
// candidate groups elsewhere relies on this order being stable.
func (e *Entry) Groups() []*Entry {
	var out []*Entry
	e.Walk(func(n *Entry) bool {
		if n.Kind == KindGroup {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Files returns every file entry in the subtree rooted at e, in pre-order.
func (e *Entry) Files() []*Entry {
	var out []*Entry
	e.Walk(func(n *Entry) bool {
		if n.Kind == KindFile {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FileIndex builds a target-path index of every file entry in the subtree.
func (e *Entry) FileIndex() map[string]*Entry {
	idx := make(map[string]*Entry)
	e.Walk(func(n *Entry) bool {
		if n.Kind == KindFile {
			idx[n.Target] = n
		}
		return true
	})
	return idx
}

// Equal reports whether two trees carry the same user-visible content:
// kinds, titles, targets, bodies, lock state, categories and child order.
// Group flags and detected sort kinds are working state and are ignored.
// End-of-original markers are skipped on both sides.
func Equal(a, b *Entry) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Title != b.Title || a.Target != b.Target ||
		a.Body != b.Body || a.Locked != b.Locked || a.Category != b.Category {
		return false
	}
	ac := withoutMarkers(a.Children)
	bc := withoutMarkers(b.Children)
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

func withoutMarkers(children []*Entry) []*Entry {
	out := make([]*Entry, 0, len(children))
	for _, c := range children {
		if c.Kind != KindEndOriginal {
			out = append(out, c)
		}
	}
	return out
}
