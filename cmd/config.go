package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shaharia-lab/triggerd/internal/cli"
)

// NewConfigCmd creates a config command
func NewConfigCmd(container *cli.Container) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage triggerd configuration",
		Long:  `Commands to manage and view your triggerd configuration.`,
	}

	cfgCmd.AddCommand(NewConfigPreviewCmd(container))
	return cfgCmd
}

// NewConfigPreviewCmd creates a command to preview the effective configuration
func NewConfigPreviewCmd(container *cli.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Preview the effective configuration",
		Long:  `Display the configuration after file, dotenv and environment overrides are applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(container.Config)
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}

			out := cmd.OutOrStdout()
			color.New(color.FgHiCyan, color.Bold).Fprintln(out, "\n📄 Configuration")
			color.New(color.FgHiWhite).Fprintf(out, "Located at: %s\n\n", container.Manager.Path())
			fmt.Fprintln(out, string(data))
			return nil
		},
	}
}
