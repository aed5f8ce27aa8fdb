package commands

import (
	"context"
	"fmt"

	"github.com/shaharia-lab/triggerd/internal/logger"
	"github.com/shaharia-lab/triggerd/internal/trigger"
)

// RegisterDefaults installs the built-in commands: ping, echo and log.
func RegisterDefaults(r *Registry, log logger.Logger) {
	if log == nil {
		log = logger.Discard
	}
	r.Register("ping", Ping)
	r.Register("echo", Echo(log))
	r.Register("log", Log(log))
}

// Ping always succeeds unless ctx is already done.
func Ping(ctx context.Context, params trigger.Params) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("ping cancelled: %w", ctx.Err())
	default:
		return nil
	}
}

// Echo logs the text parameter. It fails when text is empty.
func Echo(log logger.Logger) CommandFunc {
	return func(ctx context.Context, params trigger.Params) error {
		if params.Text == "" {
			return fmt.Errorf("%w: echo requires text", ErrInvalidParams)
		}
		log.Info(params.Text, map[string]interface{}{"command": "echo"})
		return nil
	}
}

// Log writes text at the level named by action (info when empty).
func Log(log logger.Logger) CommandFunc {
	return func(ctx context.Context, params trigger.Params) error {
		if params.Text == "" {
			return fmt.Errorf("%w: log requires text", ErrInvalidParams)
		}

		level := logger.InfoLevel
		if params.Action != "" {
			parsed, ok := logger.ParseLevel(params.Action)
			if !ok || parsed == logger.FatalLevel {
				return fmt.Errorf("%w: unsupported level %q", ErrInvalidParams, params.Action)
			}
			level = parsed
		}

		fields := map[string]interface{}{"command": "log"}
		switch level {
		case logger.DebugLevel:
			log.Debug(params.Text, fields)
		case logger.WarnLevel:
			log.Warn(params.Text, fields)
		case logger.ErrorLevel:
			log.Error(params.Text, fields)
		default:
			log.Info(params.Text, fields)
		}
		return nil
	}
}
