package entry

// GroupFlags records pending work on a group. The bits are independent and
// combinable; each reconciliation pass clears only the flag it services.
// Flags apply to groups only and are deliberately a distinct type from the
// per-file lock state so the two can never be mixed up.
type GroupFlags uint8

const (
	// UpdateTitles marks a group whose file titles must be regenerated.
	UpdateTitles GroupFlags = 1 << iota
	// UpdateStructure marks a group whose shape may need rework: collapsing
	// after removals, or splitting into directory sub-groups.
	UpdateStructure
	// UpdateOrder marks a group whose ordering must be re-detected and
	// re-established.
	UpdateOrder
	// HasEndMarker notes that an end-of-original cursor entry is present
	// among the group's children.
	HasEndMarker
	// IsIndexGroup marks a group whose content is index entries.
	IsIndexGroup
)

// Has reports whether every bit of f2 is set in f.
func (f GroupFlags) Has(f2 GroupFlags) bool {
	return f&f2 == f2
}

// SortKind classifies how a group's original entries were ordered, from
// strongest to weakest. Detection degrades one level at a time on the first
// out-of-order adjacent pair found at each granularity.
type SortKind int

const (
	Unsorted SortKind = iota
	FilesSorted
	FilesAndGroupsSorted
	EverythingSorted
)

func (s SortKind) String() string {
	switch s {
	case EverythingSorted:
		return "everything"
	case FilesAndGroupsSorted:
		return "files-and-groups"
	case FilesSorted:
		return "files"
	default:
		return "unsorted"
	}
}
