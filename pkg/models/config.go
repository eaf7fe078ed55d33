package models

import (
	"fmt"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
)

// ProjectConfig is the per-project configuration, read from scrybe.yaml in
// the project root.
type ProjectConfig struct {
	// Title seeds the menu title of a brand-new project.
	Title string `mapstructure:"title"`

	// SourceDirs are the directories scanned for documentable files,
	// relative to the project root.
	SourceDirs []string `mapstructure:"source_dirs"`

	// OutputDir is where the menu and generated state live, relative to
	// the project root.
	OutputDir string `mapstructure:"output_dir"`

	// MenuFile overrides the menu file name inside OutputDir.
	MenuFile string `mapstructure:"menu_file"`
}

// DefaultProjectConfig provides sensible defaults for a project without a
// configuration file.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		SourceDirs: []string{"."},
		OutputDir:  "docs",
		MenuFile:   "menu.txt",
	}
}

// DecodeProjectConfig merges raw settings over the defaults.
func DecodeProjectConfig(settings map[string]interface{}) (*ProjectConfig, error) {
	cfg := DefaultProjectConfig()
	if err := mapstructure.Decode(settings, &cfg); err != nil {
		return nil, fmt.Errorf("decode project config: %w", err)
	}
	if len(cfg.SourceDirs) == 0 {
		cfg.SourceDirs = []string{"."}
	}
	return &cfg, nil
}

// MenuPath returns the path of the editable menu file.
func (c *ProjectConfig) MenuPath(root string) string {
	return filepath.Join(root, c.OutputDir, c.MenuFile)
}

// SnapshotPath returns the path of the binary menu snapshot.
func (c *ProjectConfig) SnapshotPath(root string) string {
	return filepath.Join(root, c.OutputDir, ".menu.snapshot")
}

// SymbolDBPath returns the path of the symbol index database.
func (c *ProjectConfig) SymbolDBPath(root string) string {
	return filepath.Join(root, c.OutputDir, ".symbols.db")
}
