// internal/workers/fulfillment/dining-suggestions/runner.go
package suggestions

import (
	"context"
	"fmt"
	"time"

	"dining-concierge/internal/common/logger"

	"golang.org/x/sync/errgroup"
)

// Runner drives a Worker on a ticker. Each of Concurrency loops runs the
// worker up to MaxPerTick times per tick, stopping early when the queue is
// empty or a run fails.
type Runner struct {
	worker *Worker
	config *Config
	logger logger.Logger
}

func NewRunner(worker *Worker, cfg *Config, log logger.Logger) *Runner {
	return &Runner{
		worker: worker,
		config: cfg,
		logger: log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	loops := r.config.Concurrency
	if loops < 1 {
		loops = 1
	}
	if r.config.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", r.config.PollInterval)
	}

	r.logger.Info("fulfillment runner started", map[string]interface{}{
		"loops":        loops,
		"pollInterval": r.config.PollInterval.String(),
		"maxPerTick":   r.config.MaxPerTick,
	})

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < loops; i++ {
		g.Go(func() error {
			r.loop(ctx)
			return nil
		})
	}
	err := g.Wait()
	r.logger.Info("fulfillment runner stopped", nil)
	return err
}

func (r *Runner) loop(ctx context.Context) {
	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		r.Tick(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Tick performs one drain pass and returns the number of requests that
// reached a terminal outcome.
func (r *Runner) Tick(ctx context.Context) int {
	limit := r.config.MaxPerTick
	if limit < 1 {
		limit = 1
	}

	done := 0
	for i := 0; i < limit; i++ {
		if ctx.Err() != nil {
			return done
		}
		out := r.worker.RunOnce(ctx)
		if out.Status != StatusSucceeded {
			return done
		}
		done++
	}
	return done
}

// JobFunc adapts the worker to a Zeebe job: each activated job performs one
// run. Failed runs fail the job; the queue message is redelivered on its own.
func (w *Worker) JobFunc() func(ctx context.Context) (map[string]interface{}, error) {
	return func(ctx context.Context) (map[string]interface{}, error) {
		out := w.RunOnce(ctx)
		if out.Status == StatusFailed {
			return nil, fmt.Errorf("fulfillment %s: %w", out.Reason, out.Err)
		}
		return out.Variables(), nil
	}
}
