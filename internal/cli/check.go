package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thushan/redis-watcher/internal/app/services"
	"github.com/thushan/redis-watcher/internal/config"
	"github.com/thushan/redis-watcher/pkg/format"
)

var ErrProbeFailed = errors.New("probe failed")

func newCheckCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe Redis once and print the result",
		Long:  "Connects, authenticates if configured and sends PING once. Exits non-zero if the probe fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			probe := services.NewProbe(cfg)
			result := probe.Probe(cmd.Context())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s (%s)\n", probe.Target(), result.Status, format.Latency(result.Latency))
			if result.Detail != "" {
				fmt.Fprintf(out, "  %s\n", result.Detail)
			}

			if result.Status.IsFailure() {
				return fmt.Errorf("%w: %s", ErrProbeFailed, result.Status)
			}
			return nil
		},
	}
}
