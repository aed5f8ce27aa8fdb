package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/triggerd/internal/cli"
	"github.com/shaharia-lab/triggerd/internal/config"
	"github.com/shaharia-lab/triggerd/internal/logger"
)

// askFunc matches survey.AskOne
type askFunc func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error

var logLevels = []string{
	string(logger.DebugLevel),
	string(logger.InfoLevel),
	string(logger.WarnLevel),
	string(logger.ErrorLevel),
}

// NewInitCmd creates the interactive setup command
func NewInitCmd(container *cli.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or update the configuration file interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			color.New(color.FgHiCyan, color.Bold).Fprintf(cmd.OutOrStdout(), "%s setup\n\n", container.App.Name)

			cfg, err := promptConfig(container.Config, survey.AskOne)
			if err != nil {
				return err
			}

			if err := container.Manager.Save(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			container.Config = cfg

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Configuration saved to %s\n", container.Manager.Path())
			return nil
		},
	}
}

// promptConfig asks for each editable setting, starting from current
func promptConfig(current config.Config, ask askFunc) (config.Config, error) {
	cfg := current

	portText := strconv.Itoa(cfg.Server.Port)
	if err := ask(&survey.Input{
		Message: "Trigger server port:",
		Default: portText,
		Help:    "The server always binds 127.0.0.1. Use 0 to pick a free port.",
	}, &portText, survey.WithValidator(validatePort)); err != nil {
		return current, err
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		return current, fmt.Errorf("%w: %q", config.ErrInvalidPort, portText)
	}
	cfg.Server.Port = port

	level := cfg.Log.Level
	if !contains(logLevels, level) {
		level = string(logger.DefaultLogLevel)
	}
	if err := ask(&survey.Select{
		Message: "Log level:",
		Options: logLevels,
		Default: level,
	}, &level); err != nil {
		return current, err
	}
	cfg.Log.Level = level

	file := cfg.Log.File
	if err := ask(&survey.Input{
		Message: "Log file (empty to disable):",
		Default: file,
	}, &file); err != nil {
		return current, err
	}
	cfg.Log.File = file

	console := cfg.Log.Console
	if err := ask(&survey.Confirm{
		Message: "Also log to the console?",
		Default: console,
	}, &console); err != nil {
		return current, err
	}
	cfg.Log.Console = console

	if err := cfg.Validate(); err != nil {
		return current, err
	}
	return cfg, nil
}

func validatePort(ans interface{}) error {
	s, ok := ans.(string)
	if !ok {
		return errors.New("port must be text")
	}
	p, err := strconv.Atoi(s)
	if err != nil || p < 0 || p > 65535 {
		return config.ErrInvalidPort
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
