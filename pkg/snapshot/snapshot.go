// Package snapshot persists a compact binary image of the previous run's
// menu tree and index categories. It exists purely so the next run can tell
// user edits apart from its own output; it is never read by humans and is
// exempt from forced-rebuild cache invalidation.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scrybe/scrybe/pkg/entry"
)

var (
	// ErrNotFound means no snapshot exists yet, i.e. a first run.
	ErrNotFound = errors.New("snapshot not found")
	// ErrUnreadable means a snapshot exists but could not be decoded. The
	// caller should proceed as if there were none and rewrite it.
	ErrUnreadable = errors.New("snapshot unreadable")
)

// binaryMarker is the first byte of the binary format. Legacy pre-1.0
// snapshots were a single plain-text line of tab-separated category names
// and can never start with this byte.
const binaryMarker = 0x01

// Entry type tags. Zero is the end-of-group sentinel that pops the current
// group context.
const (
	tagEnd   = 0
	tagGroup = 1
	tagFile  = 2
	tagText  = 3
	tagLink  = 4
	tagIndex = 5
)

const fileFlagLocked = 0x01

// Snapshot is the persisted state of one run.
type Snapshot struct {
	AppVersion string
	Categories map[entry.Category]bool
	Root       *entry.Entry
}

// Load reads the snapshot at path. It returns ErrNotFound if the file does
// not exist and ErrUnreadable if it exists but cannot be decoded. A
// snapshot written by a newer application version decodes permissively:
// entries with unknown tags end the tree instead of failing the load.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if len(data) == 0 {
		return nil, ErrUnreadable
	}
	if data[0] != binaryMarker {
		return loadLegacy(data), nil
	}

	r := bufio.NewReader(bytes.NewReader(data[1:]))
	snap := &Snapshot{
		Categories: make(map[entry.Category]bool),
		Root:       entry.NewGroup(""),
	}
	if snap.AppVersion, err = readString(r); err != nil {
		return nil, ErrUnreadable
	}
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, ErrUnreadable
	}
	for i := uint64(0); i < n; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, ErrUnreadable
		}
		snap.Categories[entry.Category(b)] = true
	}
	if err := readGroup(r, snap.Root); err != nil {
		return nil, ErrUnreadable
	}
	return snap, nil
}

// loadLegacy decodes the pre-1.0 plain-text format: one line of
// tab-separated category names and no tree.
func loadLegacy(data []byte) *Snapshot {
	snap := &Snapshot{
		Categories: make(map[entry.Category]bool),
		Root:       entry.NewGroup(""),
	}
	line := string(data)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	for _, name := range strings.Split(line, "\t") {
		if cat, ok := entry.ParseCategory(name); ok {
			snap.Categories[cat] = true
		}
	}
	return snap
}

// readGroup decodes children into g until the end-of-group sentinel. An
// unknown tag terminates the group permissively so snapshots from future
// versions still yield their decodable prefix.
func readGroup(r *bufio.Reader, g *entry.Entry) error {
	for {
		tag, err := r.ReadByte()
		if err == io.EOF {
			return nil // tolerate a truncated trailer
		}
		if err != nil {
			return err
		}
		switch tag {
		case tagEnd:
			return nil
		case tagGroup:
			title, err := readString(r)
			if err != nil {
				return err
			}
			child := entry.NewGroup(title)
			if err := readGroup(r, child); err != nil {
				return err
			}
			g.Add(child)
		case tagFile:
			title, err := readString(r)
			if err != nil {
				return err
			}
			target, err := readString(r)
			if err != nil {
				return err
			}
			flags, err := r.ReadByte()
			if err != nil {
				return err
			}
			g.Add(entry.NewFile(title, target, flags&fileFlagLocked != 0))
		case tagText:
			body, err := readString(r)
			if err != nil {
				return err
			}
			g.Add(entry.NewText(body))
		case tagLink:
			title, err := readString(r)
			if err != nil {
				return err
			}
			target, err := readString(r)
			if err != nil {
				return err
			}
			g.Add(entry.NewLink(title, target))
		case tagIndex:
			title, err := readString(r)
			if err != nil {
				return err
			}
			cat, err := r.ReadByte()
			if err != nil {
				return err
			}
			g.Add(entry.NewIndex(title, entry.Category(cat)))
		default:
			return nil
		}
	}
}

// Save writes the snapshot atomically, replacing any previous one.
func Save(path string, snap *Snapshot) error {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	w.WriteByte(binaryMarker)
	writeString(w, snap.AppVersion)

	var cats []entry.Category
	for _, c := range entry.AllCategories {
		if snap.Categories[c] {
			cats = append(cats, c)
		}
	}
	writeUvarint(w, uint64(len(cats)))
	for _, c := range cats {
		w.WriteByte(byte(c))
	}

	for _, c := range snap.Root.Children {
		writeEntry(w, c)
	}
	w.WriteByte(tagEnd)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return writeFileAtomic(path, buf.Bytes(), 0644)
}

func writeEntry(w *bufio.Writer, e *entry.Entry) {
	switch e.Kind {
	case entry.KindGroup:
		w.WriteByte(tagGroup)
		writeString(w, e.Title)
		for _, c := range e.Children {
			writeEntry(w, c)
		}
		w.WriteByte(tagEnd)
	case entry.KindFile:
		w.WriteByte(tagFile)
		writeString(w, e.Title)
		writeString(w, e.Target)
		var flags byte
		if e.Locked {
			flags |= fileFlagLocked
		}
		w.WriteByte(flags)
	case entry.KindText:
		w.WriteByte(tagText)
		writeString(w, e.Body)
	case entry.KindLink:
		w.WriteByte(tagLink)
		writeString(w, e.Title)
		writeString(w, e.Target)
	case entry.KindIndex:
		w.WriteByte(tagIndex)
		writeString(w, e.Title)
		w.WriteByte(byte(e.Category))
	case entry.KindEndOriginal:
		panic("snapshot: end-of-original marker must not be persisted")
	default:
		panic(fmt.Sprintf("snapshot: unknown entry kind %d", e.Kind))
	}
}

func writeUvarint(w *bufio.Writer, v uint64) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	w.Write(buf[:n])
}

func writeString(w *bufio.Writer, s string) {
	writeUvarint(w, uint64(len(s)))
	w.WriteString(s)
}

func readString(r *bufio.Reader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	if n > 1<<24 {
		return "", fmt.Errorf("implausible string length %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// writeFileAtomic writes data through a temporary file and renames it into
// place so a crash mid-write cannot leave a torn snapshot behind.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
