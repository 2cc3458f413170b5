package services

import (
	"context"
	"time"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/metrics"
)

// DefaultOpenStatuses are the pipeline statuses still considered "in play";
// only customers in one of these can go idle.
var DefaultOpenStatuses = []models.PipelineStatus{
	models.PipelineStatusNewInquiry,
	models.PipelineStatusInProgress,
	models.PipelineStatusVisitScheduled,
}

// IdleService flags customers who have gone quiet past a threshold so a human
// follows up. It shares the due-time sweep pattern with the dispatcher but
// never touches workflow runs.
type IdleService struct {
	customerRepo CustomerRepository
	logger       *logger.Logger
	metrics      *metrics.Metrics
	threshold    time.Duration
	openStatuses []models.PipelineStatus
	batchSize    int
}

// NewIdleService creates a new idle timeout sweeper
func NewIdleService(customerRepo CustomerRepository, log *logger.Logger, m *metrics.Metrics, threshold time.Duration, batchSize int) *IdleService {
	return &IdleService{
		customerRepo: customerRepo,
		logger:       log,
		metrics:      m,
		threshold:    threshold,
		openStatuses: DefaultOpenStatuses,
		batchSize:    batchSize,
	}
}

// SweepIdle moves customers inactive since now minus the threshold to the
// no-response status and raises their needs-action flag. The transition is
// conditional on the pipeline status observed at read time, so a concurrent
// status change wins silently. Returns the number of customers flagged.
func (s *IdleService) SweepIdle(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.threshold)

	customers, err := s.customerRepo.GetIdleCustomers(ctx, cutoff, s.openStatuses, s.batchSize)
	if err != nil {
		return 0, err
	}

	flagged := 0
	for _, customer := range customers {
		ok, err := s.customerRepo.TransitionPipelineStatus(ctx, customer.ID, customer.PipelineStatus, models.PipelineStatusNoResponse, true)
		if err != nil {
			s.logger.Error("Failed to flag idle customer",
				logger.String("customer_id", customer.ID.String()),
				logger.Err(err),
			)
			continue
		}
		if ok {
			flagged++
			s.metrics.IdleCustomersFlagged.Inc()
		}
	}

	if flagged > 0 {
		s.logger.Info("Idle sweep finished",
			logger.Int("candidates", len(customers)),
			logger.Int("flagged", flagged),
		)
	}

	return flagged, nil
}
