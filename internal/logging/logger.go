// Package logging builds the process-wide zap logger the server binary
// constructs once at startup and hands down to subsystems by
// constructor injection (resource.Load, internal/server.New) rather
// than through a package-level global mutated from deep call stacks.
// The client binary does not use it.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the root logger.
type Options struct {
	// Verbose enables debug-level output. Mirrors cmd/nerd's --verbose flag.
	Verbose bool
	// Development switches to zap's development encoder config (human-
	// readable, colorized level names) instead of the production JSON
	// encoder, for interactive use at a terminal.
	Development bool
}

// New builds a *zap.Logger from opts. Callers that only need structured
// logging, not the richer *zap.Logger API, should call .Sugar() on the
// result (cmd/server does this before passing the logger to
// internal/server.New).
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	if opts.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}

// NewNop returns a logger that discards everything, for tests that need
// to satisfy a *zap.SugaredLogger parameter without asserting on output.
func NewNop() *zap.Logger {
	return zap.NewNop()
}
