package cli

import (
	"github.com/spf13/cobra"

	"github.com/thushan/redis-watcher/internal/config"
	"github.com/thushan/redis-watcher/internal/version"
)

// Options holds flags shared by every command
type Options struct {
	ConfigFile string
}

// NewRootCmd runs the watcher when invoked without a subcommand
func NewRootCmd() *cobra.Command {
	opts := &Options{}

	root := &cobra.Command{
		Use:     version.Name,
		Short:   "Watch Redis, alert on outages and restart dependent swarm services on recovery",
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatcher(cmd.Context(), opts, cmd.OutOrStdout())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.ConfigFile, "config_file", "c", "",
		"Path to the config file (default: $"+config.EnvConfigFile+" or ./config.yaml)")

	root.AddCommand(newCheckCommand(opts))
	root.AddCommand(newConfigCommand(opts))
	root.AddCommand(newVersionCommand())
	return root
}
