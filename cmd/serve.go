package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/triggerd/internal/banner"
	"github.com/shaharia-lab/triggerd/internal/cli"
	"github.com/shaharia-lab/triggerd/internal/commands"
	"github.com/shaharia-lab/triggerd/internal/trigger"
)

// NewServeCmd creates the command that runs the trigger server in the foreground
func NewServeCmd(container *cli.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the trigger server",
		Long: `Start the HTTP trigger server on 127.0.0.1 and block until
interrupted. Built-in commands: ping, echo and log.`,
		Example: `  triggerd serve
  triggerd serve --port 9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			port := serverPort(cmd, container)
			log := container.Logger

			registry := commands.NewRegistry(log)
			commands.RegisterDefaults(registry, log)

			srv := trigger.NewServer(trigger.Config{
				ShutdownTimeout: container.Config.Server.ShutdownTimeout,
				MaxBodyBytes:    container.Config.Server.MaxBodyBytes,
			}, log)

			if !srv.Start(port, registry.Handle) {
				return fmt.Errorf("failed to start trigger server on port %d", port)
			}

			out := cmd.OutOrStdout()
			banner.New(
				fmt.Sprintf("%s %s", container.App.Name, container.App.Version.Version),
				"Listening on "+srv.Addr(),
				"Commands: "+strings.Join(registry.Names(), ", "),
			).Display(out)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			log.Info("Shutting down trigger server", nil)
			srv.Stop()
			color.New(color.FgYellow).Fprintln(out, "Trigger server stopped")
			return nil
		},
	}

	addPortFlag(cmd)
	return cmd
}

func addPortFlag(cmd *cobra.Command) {
	cmd.Flags().IntP("port", "p", 0, "trigger server port (default from config)")
}

// serverPort returns the --port flag when set and the configured port otherwise
func serverPort(cmd *cobra.Command, container *cli.Container) int {
	if cmd.Flags().Changed("port") {
		p, _ := cmd.Flags().GetInt("port")
		return p
	}
	return container.Config.Server.Port
}
