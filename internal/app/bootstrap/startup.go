// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/ideahub/internal/app/system/timeouts"
	"github.com/dalemusser/ideahub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It applies
// timeout overrides and starts the counter reconciler.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment", zap.Int("count", n))
	}

	if appCfg.ReconcileInterval <= 0 {
		logger.Info("reconciler worker disabled")
		return nil
	}
	svc := newServices(appCfg, deps, logger)
	w := workers.NewReconciler(svc.Aggregates, logger, appCfg.ReconcileInterval)

	deps.bg.mu.Lock()
	deps.bg.reconciler = w
	deps.bg.mu.Unlock()

	w.Start()
	return nil
}
