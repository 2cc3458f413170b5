package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/channels"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/metrics"
)

// Prometheus collectors register globally, so the package shares one instance.
var testMetrics = metrics.New()

// Mock RunRepository for testing
type mockRunRepo struct {
	createReplacingFunc func(ctx context.Context, run *models.WorkflowRun, firstStepRun *models.StepRun) error
	getByIDFunc         func(ctx context.Context, id uuid.UUID) (*models.WorkflowRun, error)
	getDueRunsFunc      func(ctx context.Context, now time.Time, limit int) ([]*models.WorkflowRun, error)
	getRunningFunc      func(ctx context.Context, customerID uuid.UUID) ([]*models.WorkflowRun, error)
	listFunc            func(ctx context.Context, customerID *uuid.UUID, status *models.RunStatus, limit, offset int) ([]models.WorkflowRun, int64, error)
	claimAdvanceFunc    func(ctx context.Context, runID uuid.UUID, fromIndex, toIndex int, nextRunAt *time.Time, status models.RunStatus, nextPending *models.StepRun) (bool, error)
	stopFunc            func(ctx context.Context, runID uuid.UUID, status models.RunStatus, reason string, stoppedAt time.Time) (bool, error)
	createStepRunFunc   func(ctx context.Context, step *models.StepRun) error
	resolveStepRunFunc  func(ctx context.Context, runID uuid.UUID, stepIndex int, status models.StepRunStatus, executedAt time.Time, subject, body, errorMessage *string) (bool, error)
	getStepRunsFunc     func(ctx context.Context, runID uuid.UUID) ([]models.StepRun, error)
}

func (m *mockRunRepo) CreateReplacing(ctx context.Context, run *models.WorkflowRun, firstStepRun *models.StepRun) error {
	if m.createReplacingFunc != nil {
		return m.createReplacingFunc(ctx, run, firstStepRun)
	}
	return nil
}

func (m *mockRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.WorkflowRun, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockRunRepo) GetDueRuns(ctx context.Context, now time.Time, limit int) ([]*models.WorkflowRun, error) {
	if m.getDueRunsFunc != nil {
		return m.getDueRunsFunc(ctx, now, limit)
	}
	return []*models.WorkflowRun{}, nil
}

func (m *mockRunRepo) GetRunningByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.WorkflowRun, error) {
	if m.getRunningFunc != nil {
		return m.getRunningFunc(ctx, customerID)
	}
	return []*models.WorkflowRun{}, nil
}

func (m *mockRunRepo) List(ctx context.Context, customerID *uuid.UUID, status *models.RunStatus, limit, offset int) ([]models.WorkflowRun, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, customerID, status, limit, offset)
	}
	return []models.WorkflowRun{}, 0, nil
}

func (m *mockRunRepo) ClaimAdvance(ctx context.Context, runID uuid.UUID, fromIndex, toIndex int, nextRunAt *time.Time, status models.RunStatus, nextPending *models.StepRun) (bool, error) {
	if m.claimAdvanceFunc != nil {
		return m.claimAdvanceFunc(ctx, runID, fromIndex, toIndex, nextRunAt, status, nextPending)
	}
	return true, nil
}

func (m *mockRunRepo) Stop(ctx context.Context, runID uuid.UUID, status models.RunStatus, reason string, stoppedAt time.Time) (bool, error) {
	if m.stopFunc != nil {
		return m.stopFunc(ctx, runID, status, reason, stoppedAt)
	}
	return true, nil
}

func (m *mockRunRepo) CreateStepRun(ctx context.Context, step *models.StepRun) error {
	if m.createStepRunFunc != nil {
		return m.createStepRunFunc(ctx, step)
	}
	return nil
}

func (m *mockRunRepo) ResolvePendingStepRun(ctx context.Context, runID uuid.UUID, stepIndex int, status models.StepRunStatus, executedAt time.Time, subject, body, errorMessage *string) (bool, error) {
	if m.resolveStepRunFunc != nil {
		return m.resolveStepRunFunc(ctx, runID, stepIndex, status, executedAt, subject, body, errorMessage)
	}
	return true, nil
}

func (m *mockRunRepo) GetStepRuns(ctx context.Context, runID uuid.UUID) ([]models.StepRun, error) {
	if m.getStepRunsFunc != nil {
		return m.getStepRunsFunc(ctx, runID)
	}
	return []models.StepRun{}, nil
}

// Mock CustomerRepository for testing
type mockCustomerRepo struct {
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	markActivityFunc func(ctx context.Context, id uuid.UUID, at time.Time) error
	getIdleFunc      func(ctx context.Context, cutoff time.Time, openStatuses []models.PipelineStatus, limit int) ([]*models.Customer, error)
	transitionFunc   func(ctx context.Context, id uuid.UUID, from, to models.PipelineStatus, needAction bool) (bool, error)
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockCustomerRepo) MarkActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	if m.markActivityFunc != nil {
		return m.markActivityFunc(ctx, id, at)
	}
	return nil
}

func (m *mockCustomerRepo) GetIdleCustomers(ctx context.Context, cutoff time.Time, openStatuses []models.PipelineStatus, limit int) ([]*models.Customer, error) {
	if m.getIdleFunc != nil {
		return m.getIdleFunc(ctx, cutoff, openStatuses, limit)
	}
	return []*models.Customer{}, nil
}

func (m *mockCustomerRepo) TransitionPipelineStatus(ctx context.Context, id uuid.UUID, from, to models.PipelineStatus, needAction bool) (bool, error) {
	if m.transitionFunc != nil {
		return m.transitionFunc(ctx, id, from, to, needAction)
	}
	return true, nil
}

// Mock OrganizationRepository for testing
type mockOrgRepo struct {
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*models.Organization, error)
}

func (m *mockOrgRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &models.Organization{ID: id, Name: "Test Org"}, nil
}

// Mock WorkflowRepository for testing
type mockWorkflowRepo struct {
	createFunc    func(ctx context.Context, organizationID uuid.UUID, req *models.CreateWorkflowRequest) (*models.Workflow, error)
	getByIDFunc   func(ctx context.Context, organizationID, id uuid.UUID) (*models.Workflow, error)
	getStepsFunc  func(ctx context.Context, workflowID uuid.UUID) ([]models.WorkflowStep, error)
	listFunc      func(ctx context.Context, organizationID uuid.UUID, isActive *bool, limit, offset int) ([]models.Workflow, int64, error)
	updateFunc    func(ctx context.Context, organizationID, id uuid.UUID, req *models.UpdateWorkflowRequest) (*models.Workflow, error)
	setActiveFunc func(ctx context.Context, organizationID, id uuid.UUID, active bool) error
	deleteFunc    func(ctx context.Context, organizationID, id uuid.UUID) error
}

func (m *mockWorkflowRepo) Create(ctx context.Context, organizationID uuid.UUID, req *models.CreateWorkflowRequest) (*models.Workflow, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, organizationID, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockWorkflowRepo) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Workflow, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, organizationID, id)
	}
	return nil, errors.New("not found")
}

func (m *mockWorkflowRepo) GetSteps(ctx context.Context, workflowID uuid.UUID) ([]models.WorkflowStep, error) {
	if m.getStepsFunc != nil {
		return m.getStepsFunc(ctx, workflowID)
	}
	return []models.WorkflowStep{}, nil
}

func (m *mockWorkflowRepo) List(ctx context.Context, organizationID uuid.UUID, isActive *bool, limit, offset int) ([]models.Workflow, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, organizationID, isActive, limit, offset)
	}
	return []models.Workflow{}, 0, nil
}

func (m *mockWorkflowRepo) Update(ctx context.Context, organizationID, id uuid.UUID, req *models.UpdateWorkflowRequest) (*models.Workflow, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, organizationID, id, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockWorkflowRepo) SetActive(ctx context.Context, organizationID, id uuid.UUID, active bool) error {
	if m.setActiveFunc != nil {
		return m.setActiveFunc(ctx, organizationID, id, active)
	}
	return nil
}

func (m *mockWorkflowRepo) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, organizationID, id)
	}
	return nil
}

// Mock TemplateRepository for testing
type mockTemplateRepo struct {
	createFunc  func(ctx context.Context, organizationID uuid.UUID, req *models.CreateTemplateRequest) (*models.MessageTemplate, error)
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*models.MessageTemplate, error)
	listFunc    func(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]models.MessageTemplate, int64, error)
	updateFunc  func(ctx context.Context, organizationID, id uuid.UUID, req *models.UpdateTemplateRequest) (*models.MessageTemplate, error)
	deleteFunc  func(ctx context.Context, organizationID, id uuid.UUID) error
}

func (m *mockTemplateRepo) Create(ctx context.Context, organizationID uuid.UUID, req *models.CreateTemplateRequest) (*models.MessageTemplate, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, organizationID, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTemplateRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MessageTemplate, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockTemplateRepo) List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]models.MessageTemplate, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, organizationID, limit, offset)
	}
	return []models.MessageTemplate{}, 0, nil
}

func (m *mockTemplateRepo) Update(ctx context.Context, organizationID, id uuid.UUID, req *models.UpdateTemplateRequest) (*models.MessageTemplate, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, organizationID, id, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTemplateRepo) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, organizationID, id)
	}
	return nil
}

// Mock SweepLocker for testing
type mockLocker struct {
	acquireFunc func(ctx context.Context, key string, ttl time.Duration) (bool, error)
	releaseFunc func(ctx context.Context, key string) error
}

func (m *mockLocker) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, key, ttl)
	}
	return true, nil
}

func (m *mockLocker) ReleaseLock(ctx context.Context, key string) error {
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx, key)
	}
	return nil
}

// senderFunc adapts a function to the channels.Sender interface
type senderFunc func(ctx context.Context, msg channels.Message) error

func (f senderFunc) Send(ctx context.Context, msg channels.Message) error {
	return f(ctx, msg)
}

// Mock runProcessor for testing
type mockProcessor struct {
	processFunc func(ctx context.Context, run *models.WorkflowRun) error
}

func (m *mockProcessor) ProcessRun(ctx context.Context, run *models.WorkflowRun) error {
	if m.processFunc != nil {
		return m.processFunc(ctx, run)
	}
	return nil
}
