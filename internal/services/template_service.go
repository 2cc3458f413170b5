package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
)

// TemplateRepository defines the interface for message template data access
type TemplateRepository interface {
	Create(ctx context.Context, organizationID uuid.UUID, req *models.CreateTemplateRequest) (*models.MessageTemplate, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.MessageTemplate, error)
	List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]models.MessageTemplate, int64, error)
	Update(ctx context.Context, organizationID, id uuid.UUID, req *models.UpdateTemplateRequest) (*models.MessageTemplate, error)
	Delete(ctx context.Context, organizationID, id uuid.UUID) error
}

// TemplateService manages message templates
type TemplateService struct {
	templateRepo TemplateRepository
	logger       *logger.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(templateRepo TemplateRepository, log *logger.Logger) *TemplateService {
	return &TemplateService{templateRepo: templateRepo, logger: log}
}

// CreateTemplate creates a message template
func (s *TemplateService) CreateTemplate(ctx context.Context, organizationID uuid.UUID, req *models.CreateTemplateRequest) (*models.MessageTemplate, error) {
	template, err := s.templateRepo.Create(ctx, organizationID, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Template created", logger.String("template_id", template.ID.String()))
	return template, nil
}

// GetTemplate retrieves a template by ID
func (s *TemplateService) GetTemplate(ctx context.Context, id uuid.UUID) (*models.MessageTemplate, error) {
	return s.templateRepo.GetByID(ctx, id)
}

// ListTemplates retrieves templates with pagination
func (s *TemplateService) ListTemplates(ctx context.Context, organizationID uuid.UUID, page, pageSize int) ([]models.MessageTemplate, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}
	return s.templateRepo.List(ctx, organizationID, pageSize, (page-1)*pageSize)
}

// UpdateTemplate updates a template. Workflow steps referencing it pick up the
// change at their next dispatch.
func (s *TemplateService) UpdateTemplate(ctx context.Context, organizationID, id uuid.UUID, req *models.UpdateTemplateRequest) (*models.MessageTemplate, error) {
	template, err := s.templateRepo.Update(ctx, organizationID, id, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Template updated", logger.String("template_id", id.String()))
	return template, nil
}

// DeleteTemplate deletes a template
func (s *TemplateService) DeleteTemplate(ctx context.Context, organizationID, id uuid.UUID) error {
	if err := s.templateRepo.Delete(ctx, organizationID, id); err != nil {
		return err
	}

	s.logger.Info("Template deleted", logger.String("template_id", id.String()))
	return nil
}
