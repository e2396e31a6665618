// internal/app/system/workers/reconciler.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/ideahub/internal/app/services/aggregates"
	"github.com/dalemusser/ideahub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Pass is one repair sweep. *aggregates.Service satisfies it.
type Pass interface {
	ReconcileAll(ctx context.Context) (aggregates.Summary, error)
}

// Reconciler is a background worker that periodically recomputes the
// denormalized group and idea counters from their rows.
type Reconciler struct {
	pass     Pass
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewReconciler creates a new reconciler worker.
//
// Parameters:
//   - pass: the repair sweep to run
//   - logger: zap logger for logging
//   - interval: how often to run a sweep (e.g., 15 minutes)
func NewReconciler(pass Pass, logger *zap.Logger, interval time.Duration) *Reconciler {
	return &Reconciler{
		pass:     pass,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background loop.
func (w *Reconciler) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("reconciler worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for an in-flight sweep to end.
func (w *Reconciler) Stop() {
	w.once.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("reconciler worker stopped")
}

func (w *Reconciler) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *Reconciler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
	defer cancel()

	// Abort the sweep promptly on Stop.
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	sum, err := w.pass.ReconcileAll(ctx)
	if err != nil {
		w.log.Error("reconcile sweep failed", zap.Error(err))
		return
	}
	if sum.GroupsFixed > 0 || sum.IdeasFixed > 0 || sum.Failures > 0 || sum.OverCapacity > 0 {
		w.log.Info("reconcile sweep repaired counters",
			zap.Int("groups", sum.Groups),
			zap.Int("groups_fixed", sum.GroupsFixed),
			zap.Int("ideas", sum.Ideas),
			zap.Int("ideas_fixed", sum.IdeasFixed),
			zap.Int("over_capacity", sum.OverCapacity),
			zap.Int("failures", sum.Failures))
	}
}
