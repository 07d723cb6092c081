// Package cli implements the healthd command line.
package cli

import (
	"github.com/spf13/cobra"
)

// Build metadata, set with -ldflags.
var (
	Version = "dev"
	Commit  = ""
)

// DefaultConfigPath is read when --config is not given.
const DefaultConfigPath = "healthd.yaml"

type rootOptions struct {
	configPath string
	envFiles   []string
}

// NewRootCmd wires the cobra root command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "healthd",
		Short: "healthd - health probe orchestration",
		Long: "healthd runs health probes against a service's dependencies, exposes " +
			"status, readiness and liveness endpoints, and publishes reports to sinks.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", DefaultConfigPath, "path to the YAML configuration")
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "env files loaded before the configuration (default .env, .env.local)")

	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newCheckCommand(opts))
	root.AddCommand(newVersionCommand())
	return root
}
