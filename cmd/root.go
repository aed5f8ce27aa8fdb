package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/triggerd/internal/cli"
)

// NewRootCmd creates and returns the root command. Subcommands run after the
// container has loaded the configuration file named by --config.
func NewRootCmd(container *cli.Container) *cobra.Command {
	opts := cli.InitOptions{}

	rootCmd := &cobra.Command{
		Version: container.App.Version.VersionText(),
		Use:     container.App.Name,
		Short:   "Loopback HTTP trigger server",
		Long: `triggerd runs a small HTTP server on 127.0.0.1 that turns
GET /trigger?cmd=... and POST /trigger requests into named commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return container.Load(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default is $HOME/.triggerd/config.yaml)")
	flags.StringVar(&opts.EnvFile, "env-file", "", "dotenv file with TRIGGERD_* overrides")
	flags.StringVar(&opts.LogLevel, "log-level", "", "override the configured log level")

	return rootCmd
}

// Execute runs rootCmd and flushes the container's logger afterwards, also
// when the command failed.
func Execute(ctx context.Context, rootCmd *cobra.Command, container *cli.Container) error {
	defer container.Close()
	return rootCmd.ExecuteContext(ctx)
}
