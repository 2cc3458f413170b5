package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/channels"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/templates"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/metrics"
)

// SweepLocker takes a best-effort lock so overlapping sweep triggers do not
// scan the same batch. Correctness does not depend on it; the per-run
// conditional advance does.
type SweepLocker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

const dispatchLockKey = "outreach:dispatch:lock"

// DispatchService is the scheduler sweep: it finds due runs and performs one
// step-advancement per run, sending the step's message and scheduling the next.
type DispatchService struct {
	runRepo      RunRepository
	workflowRepo WorkflowRepository
	customerRepo CustomerRepository
	orgRepo      OrganizationRepository
	templateRepo TemplateRepository
	senders      *channels.Registry
	locker       SweepLocker
	logger       *logger.Logger
	metrics      *metrics.Metrics
	batchSize    int
	lockTTL      time.Duration
}

// NewDispatchService creates a new dispatch service
func NewDispatchService(
	runRepo RunRepository,
	workflowRepo WorkflowRepository,
	customerRepo CustomerRepository,
	orgRepo OrganizationRepository,
	templateRepo TemplateRepository,
	senders *channels.Registry,
	locker SweepLocker,
	log *logger.Logger,
	m *metrics.Metrics,
	batchSize int,
	lockTTL time.Duration,
) *DispatchService {
	return &DispatchService{
		runRepo:      runRepo,
		workflowRepo: workflowRepo,
		customerRepo: customerRepo,
		orgRepo:      orgRepo,
		templateRepo: templateRepo,
		senders:      senders,
		locker:       locker,
		logger:       log,
		metrics:      m,
		batchSize:    batchSize,
		lockTTL:      lockTTL,
	}
}

// Sweep finds every running run whose next-due time has passed and advances
// each by exactly one step. Safe to invoke repeatedly and concurrently; a run
// is never advanced twice for the same step. One run's failure does not abort
// the rest of the batch.
func (s *DispatchService) Sweep(ctx context.Context, now time.Time) (*models.SweepResult, error) {
	start := time.Now()

	acquired, err := s.locker.AcquireLock(ctx, dispatchLockKey, s.lockTTL)
	if err != nil {
		s.logger.Warnf("Failed to acquire sweep lock, proceeding unlocked: %v", err)
	} else if !acquired {
		s.logger.Debug("Dispatch sweep already in progress, skipping")
		s.metrics.SweepsTotal.WithLabelValues("skipped").Inc()
		return &models.SweepResult{}, nil
	} else {
		defer func() {
			if err := s.locker.ReleaseLock(ctx, dispatchLockKey); err != nil {
				s.logger.Warnf("Failed to release sweep lock: %v", err)
			}
		}()
	}

	runs, err := s.runRepo.GetDueRuns(ctx, now, s.batchSize)
	if err != nil {
		s.metrics.SweepsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to fetch due runs: %w", err)
	}

	result := &models.SweepResult{Due: len(runs)}
	for _, run := range runs {
		if err := s.ProcessRun(ctx, run); err != nil {
			s.logger.Error("Failed to process due run",
				logger.String("run_id", run.ID.String()),
				logger.Err(err),
			)
			continue
		}
		result.Processed++
	}

	s.metrics.SweepsTotal.WithLabelValues("ok").Inc()
	s.metrics.SweepDueRuns.Observe(float64(result.Due))
	s.metrics.SweepDuration.Observe(time.Since(start).Seconds())

	if result.Due > 0 {
		s.logger.Info("Dispatch sweep finished",
			logger.Int("due", result.Due),
			logger.Int("processed", result.Processed),
		)
	}

	return result, nil
}

// ProcessRun performs one step-advancement for a run: claim the step pointer,
// schedule the following step, then attempt the send. The claim is a
// conditional update keyed on the run still being at the expected step and
// still running, so a concurrent sweep or an auto-stop that committed first
// makes this a silent no-op.
func (s *DispatchService) ProcessRun(ctx context.Context, run *models.WorkflowRun) error {
	steps, err := s.workflowRepo.GetSteps(ctx, run.WorkflowID)
	if err != nil {
		return fmt.Errorf("failed to load workflow steps: %w", err)
	}

	idx := run.CurrentStepIndex
	if idx < 0 || idx >= len(steps) {
		// Definition shrank underneath the run; complete it.
		if _, err := s.runRepo.ClaimAdvance(ctx, run.ID, idx, idx, nil, models.RunStatusCompleted, nil); err != nil {
			return fmt.Errorf("failed to complete out-of-range run: %w", err)
		}
		s.logger.Warnf("Run %s step index %d out of range, completed", run.ID, idx)
		return nil
	}
	step := steps[idx]

	customer, err := s.customerRepo.GetByID(ctx, run.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to load customer: %w", err)
	}
	org, err := s.orgRepo.GetByID(ctx, customer.OrganizationID)
	if err != nil {
		return fmt.Errorf("failed to load organization: %w", err)
	}

	now := time.Now()

	var nextRunAt *time.Time
	var nextPending *models.StepRun
	nextStatus := models.RunStatusCompleted
	if idx+1 < len(steps) {
		next := steps[idx+1]
		due := now
		if !next.IsImmediate {
			// Anchored to run start, not to now: a late sweep must not
			// push later steps later.
			due, err = StepDueTime(run.StartedAt, next, org.Location())
			if err != nil {
				return fmt.Errorf("failed to schedule step %d: %w", idx+1, err)
			}
		}
		nextRunAt = &due
		nextStatus = models.RunStatusRunning
		nextPending = &models.StepRun{
			ID:           uuid.New(),
			RunID:        run.ID,
			StepIndex:    idx + 1,
			Channel:      next.Channel,
			Status:       models.StepRunStatusPending,
			ScheduledFor: due,
			CreatedAt:    now,
		}
	}

	// The pending record for the next step rides the claim's transaction: an
	// auto-stop committing around the same moment either wins the run row
	// first (claim returns false, nothing is inserted) or finds the pending
	// record already there and cancels it.
	claimed, err := s.runRepo.ClaimAdvance(ctx, run.ID, idx, idx+1, nextRunAt, nextStatus, nextPending)
	if err != nil {
		return fmt.Errorf("failed to claim run advance: %w", err)
	}
	if !claimed {
		s.logger.Debugf("Run %s no longer at step %d, skipping", run.ID, idx)
		return nil
	}

	s.executeStep(ctx, run, idx, step, customer, org, now)
	return nil
}

// executeStep attempts the send for a claimed step and records the outcome on
// the step's pending audit record. Send failures and prerequisite skips still
// count as executed; the run has already advanced.
func (s *DispatchService) executeStep(ctx context.Context, run *models.WorkflowRun, idx int, step models.WorkflowStep, customer *models.Customer, org *models.Organization, now time.Time) {
	var status models.StepRunStatus
	var subject, body, errorMessage *string

	switch {
	case !s.senders.Enabled(step.Channel):
		status = models.StepRunStatusSkipped
		errorMessage = strPtr(fmt.Sprintf("channel %s is not configured", step.Channel))
	case !customer.HasChannel(step.Channel):
		status = models.StepRunStatusSkipped
		errorMessage = strPtr(fmt.Sprintf("customer has no %s contact", step.Channel))
	default:
		template, err := s.templateRepo.GetByID(ctx, step.TemplateID)
		if err != nil {
			status = models.StepRunStatusFailed
			errorMessage = strPtr(fmt.Sprintf("failed to load template: %v", err))
			break
		}

		tctx := templates.BuildContext(customer, org)
		resolvedBody := templates.Resolve(template.Body, tctx)
		body = &resolvedBody
		if template.Subject != nil {
			resolvedSubject := templates.Resolve(*template.Subject, tctx)
			subject = &resolvedSubject
		}

		msg := channels.Message{
			Channel: step.Channel,
			To:      recipient(customer, step.Channel),
			Body:    resolvedBody,
		}
		if subject != nil {
			msg.Subject = *subject
		}

		if err := s.senders.Send(ctx, msg); err != nil {
			status = models.StepRunStatusFailed
			errorMessage = strPtr(err.Error())
			s.logger.Error("Step send failed",
				logger.String("run_id", run.ID.String()),
				logger.Int("step_index", idx),
				logger.String("channel", string(step.Channel)),
				logger.Err(err),
			)
		} else {
			status = models.StepRunStatusSent
		}
	}

	s.metrics.StepSendsTotal.WithLabelValues(string(step.Channel), string(status)).Inc()

	resolved, err := s.runRepo.ResolvePendingStepRun(ctx, run.ID, idx, status, now, subject, body, errorMessage)
	if err != nil {
		s.logger.Errorf("Failed to resolve step run for %s step %d: %v", run.ID, idx, err)
		return
	}
	if !resolved {
		// No pending record survived (lost during an earlier crash); append
		// the outcome so the audit trail stays complete.
		executedAt := now
		record := &models.StepRun{
			ID:           uuid.New(),
			RunID:        run.ID,
			StepIndex:    idx,
			Channel:      step.Channel,
			Status:       status,
			ScheduledFor: now,
			ExecutedAt:   &executedAt,
			Subject:      subject,
			Body:         body,
			ErrorMessage: errorMessage,
			CreatedAt:    now,
		}
		if err := s.runRepo.CreateStepRun(ctx, record); err != nil {
			s.logger.Errorf("Failed to append step run for %s step %d: %v", run.ID, idx, err)
		}
	}
}

// recipient returns the channel-specific address. Callers check HasChannel
// first, so the pointer is non-nil.
func recipient(customer *models.Customer, channel models.Channel) string {
	switch channel {
	case models.ChannelEmail:
		return *customer.Email
	case models.ChannelLine:
		return *customer.LineUserID
	case models.ChannelSMS:
		return *customer.Phone
	default:
		return ""
	}
}

func strPtr(s string) *string {
	return &s
}
