package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/repository/postgres"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
)

// WorkflowRepository defines the interface for workflow definition data access
type WorkflowRepository interface {
	Create(ctx context.Context, organizationID uuid.UUID, req *models.CreateWorkflowRequest) (*models.Workflow, error)
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Workflow, error)
	GetSteps(ctx context.Context, workflowID uuid.UUID) ([]models.WorkflowStep, error)
	List(ctx context.Context, organizationID uuid.UUID, isActive *bool, limit, offset int) ([]models.Workflow, int64, error)
	Update(ctx context.Context, organizationID, id uuid.UUID, req *models.UpdateWorkflowRequest) (*models.Workflow, error)
	SetActive(ctx context.Context, organizationID, id uuid.UUID, active bool) error
	Delete(ctx context.Context, organizationID, id uuid.UUID) error
}

// WorkflowService manages outreach workflow definitions
type WorkflowService struct {
	workflowRepo WorkflowRepository
	templateRepo TemplateRepository
	logger       *logger.Logger
}

// NewWorkflowService creates a new workflow service
func NewWorkflowService(workflowRepo WorkflowRepository, templateRepo TemplateRepository, log *logger.Logger) *WorkflowService {
	return &WorkflowService{
		workflowRepo: workflowRepo,
		templateRepo: templateRepo,
		logger:       log,
	}
}

// validateSteps checks schedule fields and template references for a step list
func (s *WorkflowService) validateSteps(ctx context.Context, organizationID uuid.UUID, steps []models.CreateStepRequest) error {
	for i, step := range steps {
		if _, _, err := ParseTimeOfDay(step.TimeOfDay); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		template, err := s.templateRepo.GetByID(ctx, step.TemplateID)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if template.OrganizationID != organizationID {
			return fmt.Errorf("step %d: %w", i, postgres.ErrTemplateNotFound)
		}
	}
	return nil
}

// CreateWorkflow creates a workflow definition with its steps
func (s *WorkflowService) CreateWorkflow(ctx context.Context, organizationID uuid.UUID, req *models.CreateWorkflowRequest) (*models.Workflow, error) {
	if err := s.validateSteps(ctx, organizationID, req.Steps); err != nil {
		return nil, err
	}

	workflow, err := s.workflowRepo.Create(ctx, organizationID, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Workflow created",
		logger.String("workflow_id", workflow.ID.String()),
		logger.Int("steps", len(workflow.Steps)),
	)
	return workflow, nil
}

// GetWorkflow retrieves a workflow with its steps
func (s *WorkflowService) GetWorkflow(ctx context.Context, organizationID, id uuid.UUID) (*models.Workflow, error) {
	return s.workflowRepo.GetByID(ctx, organizationID, id)
}

// ListWorkflows retrieves workflows with pagination
func (s *WorkflowService) ListWorkflows(ctx context.Context, organizationID uuid.UUID, isActive *bool, page, pageSize int) (*models.WorkflowListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}

	workflows, total, err := s.workflowRepo.List(ctx, organizationID, isActive, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	return &models.WorkflowListResponse{
		Workflows: workflows,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}, nil
}

// UpdateWorkflow updates a workflow, replacing its steps when provided.
// In-flight runs pick up the new steps on their next dispatch (live policy).
func (s *WorkflowService) UpdateWorkflow(ctx context.Context, organizationID, id uuid.UUID, req *models.UpdateWorkflowRequest) (*models.Workflow, error) {
	if req.Steps != nil {
		if err := s.validateSteps(ctx, organizationID, req.Steps); err != nil {
			return nil, err
		}
	}

	workflow, err := s.workflowRepo.Update(ctx, organizationID, id, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Workflow updated", logger.String("workflow_id", id.String()))
	return workflow, nil
}

// SetWorkflowActive toggles whether a workflow can be started. Deactivation
// does not stop runs already in progress.
func (s *WorkflowService) SetWorkflowActive(ctx context.Context, organizationID, id uuid.UUID, active bool) error {
	if err := s.workflowRepo.SetActive(ctx, organizationID, id, active); err != nil {
		return err
	}

	s.logger.Info("Workflow active flag changed",
		logger.String("workflow_id", id.String()),
		logger.Bool("active", active),
	)
	return nil
}

// DeleteWorkflow deletes a workflow definition and its steps
func (s *WorkflowService) DeleteWorkflow(ctx context.Context, organizationID, id uuid.UUID) error {
	if err := s.workflowRepo.Delete(ctx, organizationID, id); err != nil {
		return err
	}

	s.logger.Info("Workflow deleted", logger.String("workflow_id", id.String()))
	return nil
}
