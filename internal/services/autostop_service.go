package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/metrics"
)

// AutoStopService reacts to inbound customer events by stopping any running
// workflow run for that customer. It races against the dispatcher sweep; the
// repository's conditional updates decide the winner.
type AutoStopService struct {
	runRepo      RunRepository
	customerRepo CustomerRepository
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

// NewAutoStopService creates a new auto-stop service
func NewAutoStopService(runRepo RunRepository, customerRepo CustomerRepository, log *logger.Logger, m *metrics.Metrics) *AutoStopService {
	return &AutoStopService{
		runRepo:      runRepo,
		customerRepo: customerRepo,
		logger:       log,
		metrics:      m,
	}
}

// OnTrigger stops every running run of the customer with the trigger-specific
// terminal status, cancelling their pending step runs. A customer with no
// running run is a no-op, not an error. Returns the number of runs stopped.
func (s *AutoStopService) OnTrigger(ctx context.Context, customerID uuid.UUID, trigger models.StopTrigger) (int, error) {
	runs, err := s.runRepo.GetRunningByCustomer(ctx, customerID)
	if err != nil {
		return 0, err
	}

	status := models.StatusForTrigger(trigger)
	now := time.Now()
	stopped := 0

	for _, run := range runs {
		ok, err := s.runRepo.Stop(ctx, run.ID, status, string(trigger), now)
		if err != nil {
			s.logger.Error("Failed to auto-stop run",
				logger.String("run_id", run.ID.String()),
				logger.String("trigger", string(trigger)),
				logger.Err(err),
			)
			continue
		}
		if ok {
			stopped++
			s.metrics.RunsStoppedTotal.WithLabelValues(string(status)).Inc()
		}
	}

	// Reply and LINE follow are customer activity: refresh the activity
	// timestamp so the idle sweeper does not flag a customer who just
	// responded.
	if trigger == models.TriggerReply || trigger == models.TriggerLineAdd {
		if err := s.customerRepo.MarkActivity(ctx, customerID, now); err != nil {
			s.logger.Warnf("Failed to mark customer %s activity: %v", customerID, err)
		}
	}

	if stopped > 0 {
		s.logger.Info("Auto-stop applied",
			logger.String("customer_id", customerID.String()),
			logger.String("trigger", string(trigger)),
			logger.Int("runs_stopped", stopped),
		)
	}

	return stopped, nil
}
