package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scrybe/scrybe/pkg/models"
	"github.com/scrybe/scrybe/pkg/outline"
)

// NewCheckCmd validates the menu file without touching anything.
func NewCheckCmd(cfg **models.ProjectConfig, projectRoot *string, log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the menu file syntax",
		Long:  "Parse the menu file and report syntax errors without modifying any files.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			path := c.MenuPath(*projectRoot)

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open menu file: %w", err)
			}
			defer f.Close()

			res := outline.Parse(f)
			if len(res.Errors) > 0 {
				outline.Report(cmd.ErrOrStderr(), path, res.Errors)
				return fmt.Errorf("%d error(s) in %s", len(res.Errors), path)
			}

			files := len(res.FileIndex)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (format %s, %d file entries)\n",
				path, res.Doc.FormatVersion, files)
			return nil
		},
	}
}
