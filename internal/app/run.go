package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/launchgrid/internal/ctxlog"
)

// Run builds the plan and supervises its processes until they exit or ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	plan, err := a.Plan(ctx)
	if err != nil {
		return err
	}
	if len(plan.Requests) == 0 {
		a.logger.Warn("No processes selected, nothing to launch.")
		return nil
	}

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	a.logger.Info("🚀 Starting processes...", "count", len(plan.Requests))
	if err := a.supervisor.Run(ctx, plan); err != nil {
		return fmt.Errorf("launch failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
