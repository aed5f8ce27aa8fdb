package cmd

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/triggerd/internal/cli"
	"github.com/shaharia-lab/triggerd/internal/trigger"
)

var endpoints = [][]string{
	{"GET", "/health", "200 {\"ok\":true}"},
	{"GET", "/trigger?cmd=&text=&action=", "200 on success, 400 on failure or missing cmd"},
	{"POST", "/trigger", "JSON body {cmd,text,action}; 400 INVALID_JSON; over 1MB drops the connection"},
	{"*", "anything else", "404 NOT_FOUND"},
}

// NewRoutesCmd lists the endpoints served on the configured port
func NewRoutesCmd(container *cli.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the trigger server endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			port := serverPort(cmd, container)

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Method", "Path", "Response"})
			table.SetBorder(false)
			table.SetAutoWrapText(false)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetCaption(true, "Base URL: "+trigger.LocalURL(port))
			table.AppendBulk(endpoints)
			table.Render()
			return nil
		},
	}

	addPortFlag(cmd)
	return cmd
}
