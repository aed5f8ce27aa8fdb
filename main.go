package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shaharia-lab/triggerd/cmd"
	"github.com/shaharia-lab/triggerd/internal/cli"
	"github.com/shaharia-lab/triggerd/internal/config"
)

var version = "0.0.1"
var commit = "none"
var date = "unknown"

func main() {
	app := config.NewAppConfig(config.WithVersion(config.Version{
		Version: version,
		Commit:  commit,
		Date:    date,
	}))
	container := cli.NewContainer(app)

	rootCmd := cmd.NewRootCmd(container)
	rootCmd.AddCommand(
		cmd.NewServeCmd(container),
		cmd.NewSendCmd(container),
		cmd.NewHealthCmd(container),
		cmd.NewRoutesCmd(container),
		cmd.NewInitCmd(container),
		cmd.NewConfigCmd(container),
	)

	if err := cmd.Execute(context.Background(), rootCmd, container); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
