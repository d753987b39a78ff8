package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/launchgrid/internal/config"
	"github.com/specialistvlad/launchgrid/internal/ctxlog"
	"github.com/specialistvlad/launchgrid/internal/launch"
	"github.com/specialistvlad/launchgrid/internal/pkgindex"
	"github.com/specialistvlad/launchgrid/internal/supervisor"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	packages   *pkgindex.Index
	descriptor *launch.Descriptor
	supervisor *supervisor.Supervisor
	httpServer *http.Server
}

// LoaderFunc builds the descriptor loader for a package index.
type LoaderFunc func(packages *pkgindex.Index) config.Loader

// NewApp is the constructor for the main application. It configures an
// isolated logger writing to logW, and loads and validates the descriptor.
// Plans and screen output are written to outW.
func NewApp(outW, logW io.Writer, cfg *Config, newLoader LoaderFunc) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	packages := pkgindex.FromPathList(cfg.PrefixPath)
	logger.Debug("Package index configured.", "prefixes", packages.Prefixes)

	descriptor, err := newLoader(packages).Load(ctx, cfg.DescriptorPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load launch descriptor: %w", err)
	}
	logger.Debug("Launch descriptor loaded.", "arguments", len(descriptor.Arguments()), "processes", len(descriptor.Processes()))

	return &App{
		ctx:        ctx,
		outW:       outW,
		logger:     logger,
		config:     cfg,
		packages:   packages,
		descriptor: descriptor,
		supervisor: supervisor.New(supervisor.Config{
			Packages: packages,
			LogDir:   cfg.LogDir,
			Stdout:   outW,
		}),
	}, nil
}

// Descriptor returns the loaded launch descriptor.
func (a *App) Descriptor() *launch.Descriptor {
	return a.descriptor
}

// Supervisor returns the application's supervisor. This is primarily for testing.
func (a *App) Supervisor() *supervisor.Supervisor {
	return a.supervisor
}
