package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthops/health"
)

// ErrUnhealthy is returned by check when the aggregate status is Unhealthy.
var ErrUnhealthy = errors.New("healthd: service is unhealthy")

func newCheckCommand(opts *rootOptions) *cobra.Command {
	var ready bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the probes once and print the status document",
		Long: "check runs the configured probes once, prints the JSON status document " +
			"and exits non-zero when the aggregate status is unhealthy. The startup " +
			"gate is treated as complete.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(ctx, opts)
			if err != nil {
				return err
			}
			cfg.Publisher.Enabled = false

			a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.close(ctx) }()

			return a.check(cmd, ready)
		},
	}
	cmd.Flags().BoolVar(&ready, "ready", false, "run only the readiness probes")
	return cmd
}

func (a *app) check(cmd *cobra.Command, ready bool) error {
	if a.comps.Gate != nil {
		a.comps.Gate.Complete()
	}

	pred, timeout := a.comps.Handlers.Status.Predicate, a.cfg.Status.Timeout
	if ready {
		pred, timeout = a.comps.Handlers.ReadyPredicate, a.cfg.Readiness.Timeout
	}
	report := a.comps.Executor.RunSelected(cmd.Context(), a.comps.Registry, pred, timeout)

	if err := writeDocument(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if report.Status == health.StatusUnhealthy {
		return fmt.Errorf("%w: %d of %d probes unhealthy", ErrUnhealthy, countUnhealthy(report), len(report.Entries))
	}
	return nil
}

func writeDocument(w io.Writer, report health.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(health.NewDocument(report))
}

func countUnhealthy(report health.Report) int {
	n := 0
	for _, e := range report.Entries {
		if e.Outcome.Status == health.StatusUnhealthy {
			n++
		}
	}
	return n
}
