package workers

import (
	"context"
	"time"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/metrics"
	"github.com/robfig/cron/v3"
)

// Sweeper defines the interface for the dispatch sweep
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (*models.SweepResult, error)
}

// DispatcherWorker invokes the dispatch sweep on a cron cadence. The sweep is
// idempotent, so an external trigger firing alongside this worker is safe.
type DispatcherWorker struct {
	sweeper  Sweeper
	logger   *logger.Logger
	metrics  *metrics.Metrics
	schedule cron.Schedule
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewDispatcherWorker creates a dispatcher worker from a standard 5-field
// cron expression
func NewDispatcherWorker(sweeper Sweeper, log *logger.Logger, m *metrics.Metrics, cronExpr string) (*DispatcherWorker, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil, err
	}

	return &DispatcherWorker{
		sweeper:  sweeper,
		logger:   log,
		metrics:  m,
		schedule: schedule,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start starts the dispatcher worker in the background
func (w *DispatcherWorker) Start(ctx context.Context) {
	w.logger.Info("Starting dispatcher worker")
	go w.run(ctx)
}

// Stop stops the dispatcher worker gracefully
func (w *DispatcherWorker) Stop() {
	w.logger.Info("Stopping dispatcher worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info("Dispatcher worker stopped")
}

// run is the main worker loop
func (w *DispatcherWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		next := w.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case now := <-timer.C:
			w.sweep(ctx, now)
		case <-w.stopCh:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (w *DispatcherWorker) sweep(ctx context.Context, now time.Time) {
	start := time.Now()

	result, err := w.sweeper.Sweep(ctx, now)
	if err != nil {
		w.logger.Errorf("Dispatch sweep failed: %v", err)
		w.metrics.WorkerErrors.WithLabelValues("dispatcher").Inc()
		return
	}

	w.metrics.WorkerJobsProcessed.WithLabelValues("dispatcher", "ok").Inc()
	w.metrics.WorkerJobDuration.WithLabelValues("dispatcher").Observe(time.Since(start).Seconds())

	if result.Due > 0 {
		w.logger.Infof("Dispatch sweep processed %d/%d due runs", result.Processed, result.Due)
	}
}
