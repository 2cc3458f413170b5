package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/repository/postgres"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/metrics"
)

// RunRepository defines the interface for workflow run data access
type RunRepository interface {
	CreateReplacing(ctx context.Context, run *models.WorkflowRun, firstStepRun *models.StepRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.WorkflowRun, error)
	GetDueRuns(ctx context.Context, now time.Time, limit int) ([]*models.WorkflowRun, error)
	GetRunningByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.WorkflowRun, error)
	List(ctx context.Context, customerID *uuid.UUID, status *models.RunStatus, limit, offset int) ([]models.WorkflowRun, int64, error)
	ClaimAdvance(ctx context.Context, runID uuid.UUID, fromIndex, toIndex int, nextRunAt *time.Time, status models.RunStatus, nextPending *models.StepRun) (bool, error)
	Stop(ctx context.Context, runID uuid.UUID, status models.RunStatus, reason string, stoppedAt time.Time) (bool, error)
	CreateStepRun(ctx context.Context, step *models.StepRun) error
	ResolvePendingStepRun(ctx context.Context, runID uuid.UUID, stepIndex int, status models.StepRunStatus, executedAt time.Time, subject, body, errorMessage *string) (bool, error)
	GetStepRuns(ctx context.Context, runID uuid.UUID) ([]models.StepRun, error)
}

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	MarkActivity(ctx context.Context, id uuid.UUID, at time.Time) error
	GetIdleCustomers(ctx context.Context, cutoff time.Time, openStatuses []models.PipelineStatus, limit int) ([]*models.Customer, error)
	TransitionPipelineStatus(ctx context.Context, id uuid.UUID, from, to models.PipelineStatus, needAction bool) (bool, error)
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
}

// runProcessor performs one step-advancement for a run; satisfied by
// DispatchService.
type runProcessor interface {
	ProcessRun(ctx context.Context, run *models.WorkflowRun) error
}

// RunService manages the workflow run lifecycle: starting runs, manual stops,
// and the run/step-run read paths.
type RunService struct {
	runRepo      RunRepository
	workflowRepo WorkflowRepository
	customerRepo CustomerRepository
	orgRepo      OrganizationRepository
	dispatcher   runProcessor
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

// NewRunService creates a new run service
func NewRunService(
	runRepo RunRepository,
	workflowRepo WorkflowRepository,
	customerRepo CustomerRepository,
	orgRepo OrganizationRepository,
	dispatcher runProcessor,
	log *logger.Logger,
	m *metrics.Metrics,
) *RunService {
	return &RunService{
		runRepo:      runRepo,
		workflowRepo: workflowRepo,
		customerRepo: customerRepo,
		orgRepo:      orgRepo,
		dispatcher:   dispatcher,
		logger:       log,
		metrics:      m,
	}
}

// StartWorkflow activates a workflow for a customer. Any run still going for
// the customer is stopped in the same transaction, so exactly one running run
// exists afterward. When the first step is immediate its send is attempted
// synchronously before returning.
func (s *RunService) StartWorkflow(ctx context.Context, organizationID, customerID, workflowID uuid.UUID) (*models.WorkflowRun, error) {
	workflow, err := s.workflowRepo.GetByID(ctx, organizationID, workflowID)
	if err != nil {
		return nil, err
	}
	if !workflow.IsActive {
		return nil, ErrWorkflowInactive
	}
	if len(workflow.Steps) == 0 {
		return nil, ErrWorkflowEmpty
	}

	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer.OrganizationID != organizationID {
		return nil, postgres.ErrCustomerNotFound
	}

	org, err := s.orgRepo.GetByID(ctx, customer.OrganizationID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	first := workflow.Steps[0]

	firstDue := now
	if !first.IsImmediate {
		firstDue, err = StepDueTime(now, first, org.Location())
		if err != nil {
			return nil, fmt.Errorf("failed to schedule first step: %w", err)
		}
	}

	run := &models.WorkflowRun{
		ID:               uuid.New(),
		CustomerID:       customerID,
		WorkflowID:       workflowID,
		Status:           models.RunStatusRunning,
		StartedAt:        now,
		CurrentStepIndex: 0,
		NextRunAt:        &firstDue,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	firstStepRun := &models.StepRun{
		ID:           uuid.New(),
		RunID:        run.ID,
		StepIndex:    0,
		Channel:      first.Channel,
		Status:       models.StepRunStatusPending,
		ScheduledFor: firstDue,
		CreatedAt:    now,
	}

	if err := s.runRepo.CreateReplacing(ctx, run, firstStepRun); err != nil {
		return nil, err
	}

	s.metrics.RunsStartedTotal.WithLabelValues(workflowID.String()).Inc()
	s.logger.Info("Workflow run started",
		logger.String("run_id", run.ID.String()),
		logger.String("customer_id", customerID.String()),
		logger.String("workflow_id", workflowID.String()),
	)

	if first.IsImmediate {
		if err := s.dispatcher.ProcessRun(ctx, run); err != nil {
			// The run is created and will be retried by the sweep; the
			// caller still gets a successful start.
			s.logger.Warnf("Immediate first step failed for run %s: %v", run.ID, err)
		}
		return s.runRepo.GetByID(ctx, run.ID)
	}

	return run, nil
}

// StopRun manually stops a run. Stopping an already-terminal run is a no-op.
func (s *RunService) StopRun(ctx context.Context, organizationID, runID uuid.UUID) error {
	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return err
	}

	customer, err := s.customerRepo.GetByID(ctx, run.CustomerID)
	if err != nil {
		return err
	}
	if customer.OrganizationID != organizationID {
		return postgres.ErrRunNotFound
	}

	stopped, err := s.runRepo.Stop(ctx, runID, models.RunStatusStopped, string(models.TriggerManual), time.Now())
	if err != nil {
		return err
	}
	if !stopped {
		s.logger.Debugf("Run %s already terminal, manual stop is a no-op", runID)
		return nil
	}

	s.metrics.RunsStoppedTotal.WithLabelValues(string(models.RunStatusStopped)).Inc()
	s.logger.Info("Workflow run stopped manually", logger.String("run_id", runID.String()))
	return nil
}

// GetRunTrace retrieves a run with its step audit trail
func (s *RunService) GetRunTrace(ctx context.Context, organizationID, runID uuid.UUID) (*models.RunTraceResponse, error) {
	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, run.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer.OrganizationID != organizationID {
		return nil, postgres.ErrRunNotFound
	}

	stepRuns, err := s.runRepo.GetStepRuns(ctx, runID)
	if err != nil {
		return nil, err
	}

	trace := &models.RunTraceResponse{Run: run, StepRuns: stepRuns}

	// Definition may have been deleted since; the trace is still useful.
	if workflow, err := s.workflowRepo.GetByID(ctx, organizationID, run.WorkflowID); err == nil {
		trace.Workflow = workflow
	}

	return trace, nil
}

// ListRuns retrieves runs with optional filters and pagination
func (s *RunService) ListRuns(ctx context.Context, customerID *uuid.UUID, status *models.RunStatus, page, pageSize int) (*models.RunListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}

	runs, total, err := s.runRepo.List(ctx, customerID, status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	return &models.RunListResponse{
		Runs:     runs,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
