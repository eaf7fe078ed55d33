package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrybe/scrybe/pkg/entry"
)

func testTree() *entry.Entry {
	root := entry.NewGroup("")
	g := entry.NewGroup("Utilities")
	g.Add(
		entry.NewFile("Strings", "src/util/strings.go", false),
		entry.NewFile("Paths", "src/util/paths.go", true),
	)
	root.Add(
		entry.NewFile("Parser", "src/parser.go", false),
		g,
		entry.NewText("a note"),
		entry.NewLink("Site", "https://example.com"),
		entry.NewIndex("Everything", entry.CategoryGeneral),
		entry.NewIndex("Functions", entry.CategoryFunction),
	)
	return root
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.snapshot")

	in := &Snapshot{
		AppVersion: "1.2.3",
		Categories: map[entry.Category]bool{
			entry.CategoryGeneral:  true,
			entry.CategoryFunction: true,
		},
		Root: testTree(),
	}
	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", out.AppVersion)
	assert.Equal(t, in.Categories, out.Categories)
	assert.True(t, entry.Equal(in.Root, out.Root))

	// Lock state must survive: it drives user-edit detection.
	f := out.Root.FileIndex()["src/util/paths.go"]
	require.NotNil(t, f)
	assert.True(t, f.Locked)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap")
	require.NoError(t, os.WriteFile(path, []byte{binaryMarker, 0xFF, 0xFF}, 0644))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestLoadLegacyTextFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap")
	require.NoError(t, os.WriteFile(path, []byte("Functions\tVariables\n"), 0644))

	snap, err := Load(path)
	require.NoError(t, err)
	assert.True(t, snap.Categories[entry.CategoryFunction])
	assert.True(t, snap.Categories[entry.CategoryVariable])
	assert.Empty(t, snap.Root.Children, "the legacy format carries no tree")
}

func TestSaveRejectsEndMarker(t *testing.T) {
	root := entry.NewGroup("")
	root.Add(entry.NewEndMarker())
	snap := &Snapshot{Root: root, Categories: map[entry.Category]bool{}}
	assert.Panics(t, func() {
		Save(filepath.Join(t.TempDir(), "snap"), snap)
	})
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap")

	first := &Snapshot{AppVersion: "1", Categories: map[entry.Category]bool{}, Root: testTree()}
	require.NoError(t, Save(path, first))

	second := &Snapshot{AppVersion: "2", Categories: map[entry.Category]bool{}, Root: entry.NewGroup("")}
	require.NoError(t, Save(path, second))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2", out.AppVersion)
	assert.Empty(t, out.Root.Children)
}
