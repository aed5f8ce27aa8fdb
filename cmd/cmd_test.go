package cmd

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/triggerd/internal/cli"
	"github.com/shaharia-lab/triggerd/internal/commands"
	"github.com/shaharia-lab/triggerd/internal/config"
	"github.com/shaharia-lab/triggerd/internal/logger"
	"github.com/shaharia-lab/triggerd/internal/trigger"
)

func runningServer(t *testing.T) *cli.Container {
	t.Helper()
	registry := commands.NewRegistry(logger.Discard)
	commands.RegisterDefaults(registry, logger.Discard)

	srv := trigger.NewServer(trigger.Config{}, logger.Discard)
	require.True(t, srv.Start(0, registry.Handle))
	t.Cleanup(srv.Stop)

	container := cli.NewContainer(config.NewAppConfig())
	container.Config.Server.Port = srv.Port()
	return container
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSendCmd(t *testing.T) {
	container := runningServer(t)

	t.Run("success", func(t *testing.T) {
		out, err := execute(t, NewSendCmd(container), "echo", "--text", "hello")
		require.NoError(t, err)
		assert.Contains(t, out, "echo")
	})

	t.Run("unknown command fails", func(t *testing.T) {
		out, err := execute(t, NewSendCmd(container), "nope")
		assert.Error(t, err)
		assert.Contains(t, out, "HTTP 400")
	})

	t.Run("requires a command", func(t *testing.T) {
		_, err := execute(t, NewSendCmd(container))
		assert.Error(t, err)
	})
}

func TestHealthCmd(t *testing.T) {
	container := runningServer(t)

	out, err := execute(t, NewHealthCmd(container))
	require.NoError(t, err)
	assert.Contains(t, out, "healthy")
}

func TestHealthCmd_NoServer(t *testing.T) {
	container := cli.NewContainer(config.NewAppConfig())
	container.Config.Server.Port = freePort(t)

	_, err := execute(t, NewHealthCmd(container), "--timeout", "1s")
	assert.Error(t, err)
}

func TestRoutesCmd(t *testing.T) {
	container := cli.NewContainer(config.NewAppConfig())

	out, err := execute(t, NewRoutesCmd(container), "--port", "9999")
	require.NoError(t, err)
	assert.Contains(t, out, "/health")
	assert.Contains(t, out, "/trigger")
	assert.Contains(t, out, "NOT_FOUND")
	assert.Contains(t, out, "http://127.0.0.1:9999")
}

func TestConfigPreviewCmd(t *testing.T) {
	container := cli.NewContainer(config.NewAppConfig())
	require.NoError(t, container.Load(cli.InitOptions{ConfigPath: filepath.Join(t.TempDir(), "config.yaml")}))
	defer container.Close()

	out, err := execute(t, NewConfigCmd(container), "preview")
	require.NoError(t, err)
	assert.Contains(t, out, "max_body_bytes: 1000000")
	assert.Contains(t, out, container.Manager.Path())
}

// scriptedAsk answers prompts by type, in order.
func scriptedAsk(port, level, file string, console bool) askFunc {
	return func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
		switch prompt := p.(type) {
		case *survey.Input:
			if prompt.Message == "Trigger server port:" {
				*(response.(*string)) = port
			} else {
				*(response.(*string)) = file
			}
		case *survey.Select:
			*(response.(*string)) = level
		case *survey.Confirm:
			*(response.(*bool)) = console
		}
		return nil
	}
}

func TestPromptConfig(t *testing.T) {
	t.Run("applies answers", func(t *testing.T) {
		cfg, err := promptConfig(config.Default(), scriptedAsk("9100", "debug", "/tmp/triggerd.log", false))
		require.NoError(t, err)

		assert.Equal(t, 9100, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "/tmp/triggerd.log", cfg.Log.File)
		assert.False(t, cfg.Log.Console)
		assert.Equal(t, config.DefaultMaxBodyBytes, cfg.Server.MaxBodyBytes)
	})

	t.Run("non numeric port", func(t *testing.T) {
		current := config.Default()
		cfg, err := promptConfig(current, scriptedAsk("abc", "info", "", true))
		assert.ErrorIs(t, err, config.ErrInvalidPort)
		assert.Equal(t, current, cfg)
	})

	t.Run("interrupted prompt", func(t *testing.T) {
		interrupted := errors.New("interrupt")
		ask := func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
			return interrupted
		}
		_, err := promptConfig(config.Default(), ask)
		assert.ErrorIs(t, err, interrupted)
	})
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, validatePort("0"))
	assert.NoError(t, validatePort("8765"))
	assert.ErrorIs(t, validatePort("65536"), config.ErrInvalidPort)
	assert.ErrorIs(t, validatePort("-1"), config.ErrInvalidPort)
	assert.Error(t, validatePort(42))
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestServeCmd_RunsUntilCancelled(t *testing.T) {
	port := freePort(t)
	container := cli.NewContainer(config.NewAppConfig())

	cmd := NewServeCmd(container)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--port", strconv.Itoa(port)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	client := trigger.NewClient(trigger.LocalURL(port), time.Second)
	assert.Eventually(t, func() bool {
		ok, err := client.Health(context.Background())
		return err == nil && ok
	}, 5*time.Second, 20*time.Millisecond)

	res, err := client.Trigger(context.Background(), "PING", trigger.Params{})
	require.NoError(t, err)
	assert.True(t, res.Success)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}

	assert.Contains(t, out.String(), trigger.LocalURL(port))
	assert.Contains(t, out.String(), "echo, log, ping")
	assert.Contains(t, out.String(), "stopped")
}

func TestServeCmd_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	container := cli.NewContainer(config.NewAppConfig())
	container.Config.Server.Port = port

	_, err = execute(t, NewServeCmd(container))
	assert.ErrorContains(t, err, "failed to start trigger server")
}

func TestExecute_FlushesLoggerOnError(t *testing.T) {
	ml := &logger.MockLogger{}
	ml.On("Sync").Return(nil).Once()

	container := cli.NewContainer(config.NewAppConfig())
	container.Logger = ml

	failing := &cobra.Command{
		Use:           "fail",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("bind failed")
		},
	}
	failing.SetArgs([]string{})

	err := Execute(context.Background(), failing, container)
	assert.EqualError(t, err, "bind failed")
	ml.AssertExpectations(t)
}

func TestExecute_ServeBindFailureIsLogged(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	dir := t.TempDir()
	logFile := filepath.Join(dir, "triggerd.log")
	t.Setenv(config.EnvLogFile, logFile)

	container := cli.NewContainer(config.NewAppConfig())
	rootCmd := NewRootCmd(container)
	rootCmd.AddCommand(NewServeCmd(container))
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--config", filepath.Join(dir, "config.yaml"), "serve", "--port", strconv.Itoa(port)})

	err = Execute(context.Background(), rootCmd, container)
	assert.ErrorContains(t, err, "failed to start trigger server")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Failed to start HTTP trigger server")
}
