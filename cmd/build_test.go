package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrybe/scrybe/pkg/models"
)

func testProject(t *testing.T, files map[string]string) (string, *models.ProjectConfig) {
	t.Helper()
	root := t.TempDir()
	for p, content := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	cfg := models.DefaultProjectConfig()
	cfg.Title = "Test Project"
	cfg.SourceDirs = []string{"src"}
	return root, &cfg
}

func TestBuildCreatesMenu(t *testing.T) {
	root, cfg := testProject(t, map[string]string{
		"src/widget.go": "// Title: Widgets\n// Function: NewWidget\npackage widget\n",
		"src/readme.md": "# About Widgets\n",
	})
	log := logrus.New()
	log.SetOutput(io.Discard)

	c := NewBuildCmd(&cfg, &root, log)
	var out bytes.Buffer
	c.SetOut(&out)
	require.NoError(t, c.Execute())
	assert.Contains(t, out.String(), "Updated")

	menuData, err := os.ReadFile(cfg.MenuPath(root))
	require.NoError(t, err)
	menuText := string(menuData)
	assert.Contains(t, menuText, "Format:")
	assert.Contains(t, menuText, "Title: Test Project")
	assert.Contains(t, menuText, "(src/widget.go)")
	assert.Contains(t, menuText, "(src/readme.md)")

	_, err = os.Stat(cfg.SnapshotPath(root))
	assert.NoError(t, err, "a snapshot must exist after the first build")

	// A second build with unchanged sources is a no-op.
	before := menuText
	c = NewBuildCmd(&cfg, &root, log)
	out.Reset()
	c.SetOut(&out)
	require.NoError(t, c.Execute())
	assert.Contains(t, out.String(), "up to date")

	after, err := os.ReadFile(cfg.MenuPath(root))
	require.NoError(t, err)
	assert.Equal(t, before, string(after))
}

func TestBuildReportsMenuErrors(t *testing.T) {
	root, cfg := testProject(t, map[string]string{
		"src/a.go": "// Title: A\npackage a\n",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(root, cfg.OutputDir), 0755))
	require.NoError(t, os.WriteFile(cfg.MenuPath(root),
		[]byte("Format: 1.4\nFile: missing target\n"), 0644))
	log := logrus.New()
	log.SetOutput(io.Discard)

	c := NewBuildCmd(&cfg, &root, log)
	c.SetOut(io.Discard)
	c.SetErr(io.Discard)
	err := c.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fix the menu file")

	annotated, rerr := os.ReadFile(cfg.MenuPath(root))
	require.NoError(t, rerr)
	assert.Contains(t, string(annotated), "ERROR:")
}

func TestCheckCommand(t *testing.T) {
	root, cfg := testProject(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Join(root, cfg.OutputDir), 0755))
	require.NoError(t, os.WriteFile(cfg.MenuPath(root),
		[]byte("Format: 1.4\nFile: Widgets  (src/widget.go)\n"), 0644))
	log := logrus.New()
	log.SetOutput(io.Discard)

	c := NewCheckCmd(&cfg, &root, log)
	var out bytes.Buffer
	c.SetOut(&out)
	require.NoError(t, c.Execute())
	assert.Contains(t, out.String(), "ok")
	assert.Contains(t, out.String(), "1 file entries")
}

func TestCheckReportsErrors(t *testing.T) {
	root, cfg := testProject(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Join(root, cfg.OutputDir), 0755))
	require.NoError(t, os.WriteFile(cfg.MenuPath(root),
		[]byte("Format: 1.4\nGroup: Unclosed  {\n"), 0644))
	log := logrus.New()
	log.SetOutput(io.Discard)

	c := NewCheckCmd(&cfg, &root, log)
	var errOut bytes.Buffer
	c.SetOut(io.Discard)
	c.SetErr(&errOut)
	err := c.Execute()
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "unclosed")
}
