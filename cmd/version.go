package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information, set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

// NewVersionCmd prints version information.
func NewVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput {
				data, err := json.MarshalIndent(map[string]string{
					"version": Version,
					"commit":  Commit,
					"go":      runtime.Version(),
				}, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal version info: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scrybe %s (%s, %s)\n", Version, Commit, runtime.Version())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version information in JSON format")

	return cmd
}
