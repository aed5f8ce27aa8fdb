package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/triggerd/internal/cli"
	"github.com/shaharia-lab/triggerd/internal/trigger"
)

const defaultClientTimeout = 5 * time.Second

// NewSendCmd creates the command that posts a trigger to a running server
func NewSendCmd(container *cli.Container) *cobra.Command {
	var (
		params  trigger.Params
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send <cmd>",
		Short: "Send a command to a running trigger server",
		Example: `  triggerd send ping
  triggerd send echo --text "hello"
  triggerd send log --action warn --text "disk almost full"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port := serverPort(cmd, container)
			client := trigger.NewClient(trigger.LocalURL(port), timeout)

			res, err := client.Trigger(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !res.Success {
				color.New(color.FgRed).Fprintf(out, "✗ %s failed (HTTP %d)\n", displayCmd(res), res.StatusCode)
				if res.Error != "" {
					return fmt.Errorf("trigger server rejected request: %s", res.Error)
				}
				return fmt.Errorf("command %q failed", args[0])
			}

			color.New(color.FgGreen).Fprintf(out, "✓ %s\n", res.Cmd)
			return nil
		},
	}

	addPortFlag(cmd)
	cmd.Flags().StringVarP(&params.Text, "text", "t", "", "text parameter")
	cmd.Flags().StringVarP(&params.Action, "action", "a", "", "action parameter")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultClientTimeout, "request timeout")
	return cmd
}

func displayCmd(res trigger.Result) string {
	if res.Cmd == "" {
		return "request"
	}
	return res.Cmd
}

// NewHealthCmd creates the command that checks GET /health
func NewHealthCmd(container *cli.Container) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check whether a trigger server is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			port := serverPort(cmd, container)
			addr := trigger.LocalURL(port)

			ok, err := trigger.NewClient(addr, timeout).Health(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("trigger server at %s is not healthy", addr)
			}

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ trigger server at %s is healthy\n", addr)
			return nil
		},
	}

	addPortFlag(cmd)
	cmd.Flags().DurationVar(&timeout, "timeout", defaultClientTimeout, "request timeout")
	return cmd
}
