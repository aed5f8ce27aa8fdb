// Package commands provides the command table that backs the bundled trigger server.
package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shaharia-lab/triggerd/internal/logger"
	"github.com/shaharia-lab/triggerd/internal/trigger"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidParams  = errors.New("invalid parameters")
)

// CommandFunc runs one named command.
type CommandFunc func(ctx context.Context, params trigger.Params) error

// Registry maps case-insensitive command names to functions.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]CommandFunc
	log      logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	if log == nil {
		log = logger.Discard
	}
	return &Registry{
		commands: make(map[string]CommandFunc),
		log:      log.WithField("component", "commands"),
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds or replaces the command called name.
func (r *Registry) Register(name string, fn CommandFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalize(name)
	if _, exists := r.commands[key]; exists {
		r.log.Warn("Overwriting existing command handler", map[string]interface{}{"command": key})
	}
	r.commands[key] = fn
	r.log.Debug("Registered command", map[string]interface{}{"command": key})
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handle satisfies trigger.Handler.
func (r *Registry) Handle(ctx context.Context, cmd string, params trigger.Params) (bool, error) {
	key := normalize(cmd)

	r.mu.RLock()
	fn, found := r.commands[key]
	r.mu.RUnlock()

	if !found {
		return false, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}

	if err := fn(ctx, params); err != nil {
		r.log.Warn("Command execution failed", map[string]interface{}{
			"command":       key,
			logger.ErrorKey: err,
		})
		return false, fmt.Errorf("command %q failed: %w", key, err)
	}

	r.log.Info("Command executed", map[string]interface{}{
		"command": key,
		"action":  params.Action,
	})
	return true, nil
}

var _ trigger.Handler = (*Registry)(nil).Handle
