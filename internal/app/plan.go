package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/launchgrid/internal/ctxlog"
	"github.com/specialistvlad/launchgrid/internal/launch"
)

// Plan builds the launch plan for the configured overrides.
func (a *App) Plan(ctx context.Context) (*launch.Plan, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	var opts []launch.BuildOption
	if a.config.Partial {
		opts = append(opts, launch.WithParameterIsolation())
	}
	plan, err := a.descriptor.Build(ctx, a.config.Overrides, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build launch plan: %w", err)
	}
	for _, f := range plan.Failures {
		a.logger.Warn("Process excluded from partial plan.", "process", f.Name, "error", f.Error)
	}
	a.logger.Info("Launch plan built.", "plan_id", plan.ID, "processes", len(plan.Requests))
	return plan, nil
}
