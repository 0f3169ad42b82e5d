package app

import (
	"errors"
	"io"
	"log/slog"

	"github.com/schemactl/schemactl/internal/catalog"
	"github.com/schemactl/schemactl/internal/definitions"
	"github.com/schemactl/schemactl/internal/exec"
	"github.com/schemactl/schemactl/internal/state"
)

// Config holds everything an App instance needs for one run.
type Config struct {
	DefinitionsPath string
	TargetsPath     string
	TargetName      string

	// Workers overrides the target's fetch_workers when positive.
	Workers int

	// DryRun renders statements without issuing them (apply and destroy).
	DryRun bool

	// KeepGoing continues reconciling independent objects past per-object
	// provider errors instead of aborting the run.
	KeepGoing bool

	LogFormat string
	LogLevel  string

	// Color enables colored plan/report rendering.
	Color bool
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DefinitionsPath == "" {
		return nil, errors.New("definitions path is required")
	}
	if cfg.TargetsPath == "" {
		return nil, errors.New("targets file path is required")
	}
	if cfg.TargetName == "" {
		return nil, errors.New("target name is required")
	}
	return &cfg, nil
}

// App encapsulates the application's dependencies, configuration, and
// lifecycle. Each App has its own isolated logger; nothing global mutates.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	cfg    *Config

	catalog *catalog.Catalog
	loader  *definitions.Loader

	// Optional overrides, used by tests to run the pipeline against fakes
	// instead of a real database handle.
	provider state.Provider
	conn     exec.Conn
}

// Option customizes an App.
type Option func(*App)

// WithProvider substitutes the live-state provider. Mainly for tests.
func WithProvider(p state.Provider) Option {
	return func(a *App) { a.provider = p }
}

// WithConn substitutes the executor connection. Mainly for tests.
func WithConn(c exec.Conn) Option {
	return func(a *App) { a.conn = c }
}

// New constructs an App with its own logger and the built-in object catalog.
func New(outW io.Writer, cfg *Config, opts ...Option) *App {
	a := &App{
		outW:    outW,
		logger:  newLogger(cfg.LogLevel, cfg.LogFormat, outW),
		cfg:     cfg,
		catalog: catalog.New(),
		loader:  definitions.NewLoader(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger.Debug("Application constructed.", "definitions", cfg.DefinitionsPath, "target", cfg.TargetName)
	return a
}
