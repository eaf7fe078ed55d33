package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scrybe/scrybe/pkg/menu"
	"github.com/scrybe/scrybe/pkg/models"
	"github.com/scrybe/scrybe/pkg/scan"
	"github.com/scrybe/scrybe/pkg/symbols"
)

// NewBuildCmd runs the full pipeline: scan the sources, reconcile the menu,
// and write the updated menu file and snapshot.
func NewBuildCmd(cfg **models.ProjectConfig, projectRoot *string, log *logrus.Logger) *cobra.Command {
	var rebuild bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Scan sources and update the documentation menu",
		Long: `Scan the configured source directories, extract documented symbols,
and bring the menu file up to date without discarding your edits.

If the menu file has syntax errors it is rewritten with inline ERROR:
annotations and the run stops.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			root := *projectRoot

			outDir := filepath.Join(root, c.OutputDir)
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			idx, err := symbols.Open(c.SymbolDBPath(root))
			if err != nil {
				return fmt.Errorf("open symbol index: %w", err)
			}
			defer idx.Close()

			scanner := scan.New(log, idx)
			result, err := scanner.Scan(root, c.SourceDirs)
			if err != nil {
				return err
			}
			log.WithField("files", len(result.Files)).Debug("scan complete")

			eng := menu.New(log, scan.NewDocs(log, result, idx), menu.Options{
				MenuPath:     c.MenuPath(root),
				SnapshotPath: c.SnapshotPath(root),
				AppVersion:   Version,
				DefaultTitle: c.Title,
				Rebuild:      rebuild,
			})
			if err := eng.Run(); err != nil {
				if errors.Is(err, menu.ErrMenuErrors) {
					return fmt.Errorf("fix the menu file and run again: %w", err)
				}
				return err
			}

			if eng.Changed() {
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", c.MenuPath(root))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Menu is up to date")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Force full re-derivation of titles and ordering")

	return cmd
}
