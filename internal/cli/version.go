package cli

import (
	"github.com/spf13/cobra"

	"github.com/thushan/redis-watcher/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			version.PrintVersionInfo(true, cmd.OutOrStdout())
			return nil
		},
	}
}
