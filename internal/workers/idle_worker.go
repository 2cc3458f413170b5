package workers

import (
	"context"
	"time"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/metrics"
)

// IdleSweeper defines the interface for the idle timeout sweep
type IdleSweeper interface {
	SweepIdle(ctx context.Context, now time.Time) (int, error)
}

// IdleWorker periodically flags customers who have gone quiet
type IdleWorker struct {
	sweeper       IdleSweeper
	logger        *logger.Logger
	metrics       *metrics.Metrics
	checkInterval time.Duration
	stopCh        chan struct{}
	doneCh        chan struct{}
}

// NewIdleWorker creates a new idle sweep worker
func NewIdleWorker(sweeper IdleSweeper, log *logger.Logger, m *metrics.Metrics, checkInterval time.Duration) *IdleWorker {
	if checkInterval == 0 {
		checkInterval = 1 * time.Hour
	}

	return &IdleWorker{
		sweeper:       sweeper,
		logger:        log,
		metrics:       m,
		checkInterval: checkInterval,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start starts the idle worker in the background
func (w *IdleWorker) Start(ctx context.Context) {
	w.logger.Info("Starting idle worker",
		logger.String("interval", w.checkInterval.String()),
	)
	go w.run(ctx)
}

// Stop stops the idle worker gracefully
func (w *IdleWorker) Stop() {
	w.logger.Info("Stopping idle worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info("Idle worker stopped")
}

// run is the main worker loop
func (w *IdleWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *IdleWorker) sweep(ctx context.Context) {
	start := time.Now()

	flagged, err := w.sweeper.SweepIdle(ctx, time.Now())
	if err != nil {
		w.logger.Errorf("Idle sweep failed: %v", err)
		w.metrics.WorkerErrors.WithLabelValues("idle").Inc()
		return
	}

	w.metrics.WorkerJobsProcessed.WithLabelValues("idle", "ok").Inc()
	w.metrics.WorkerJobDuration.WithLabelValues("idle").Observe(time.Since(start).Seconds())

	if flagged > 0 {
		w.logger.Infof("Idle sweep flagged %d customers", flagged)
	}
}
