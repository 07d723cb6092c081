package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show healthd version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "healthd version %s\n", Version)
			if Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", Commit)
			}
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			return nil
		},
	}
}
