package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/repository/postgres"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWorkflow(t *testing.T) {
	orgID := uuid.New()
	templateID := uuid.New()

	ownedTemplateRepo := &mockTemplateRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.MessageTemplate, error) {
			return &models.MessageTemplate{ID: id, OrganizationID: orgID, Body: "hi"}, nil
		},
	}

	validRequest := func() *models.CreateWorkflowRequest {
		return &models.CreateWorkflowRequest{
			Name: "Follow-up",
			Steps: []models.CreateStepRequest{
				{Channel: models.ChannelEmail, TemplateID: templateID, TimeOfDay: "10:00", IsImmediate: true},
				{Channel: models.ChannelEmail, TemplateID: templateID, DaysAfter: 1, TimeOfDay: "19:00"},
			},
		}
	}

	t.Run("creates with valid steps", func(t *testing.T) {
		workflowRepo := &mockWorkflowRepo{
			createFunc: func(ctx context.Context, organizationID uuid.UUID, req *models.CreateWorkflowRequest) (*models.Workflow, error) {
				assert.Equal(t, orgID, organizationID)
				return &models.Workflow{ID: uuid.New(), OrganizationID: orgID, Name: req.Name}, nil
			},
		}

		service := NewWorkflowService(workflowRepo, ownedTemplateRepo, logger.NewForTesting())

		workflow, err := service.CreateWorkflow(context.Background(), orgID, validRequest())
		require.NoError(t, err)
		assert.Equal(t, "Follow-up", workflow.Name)
	})

	t.Run("rejects a malformed time of day", func(t *testing.T) {
		service := NewWorkflowService(&mockWorkflowRepo{}, ownedTemplateRepo, logger.NewForTesting())

		req := validRequest()
		req.Steps[1].TimeOfDay = "25:00"

		_, err := service.CreateWorkflow(context.Background(), orgID, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "step 1")
	})

	t.Run("rejects a template owned by another organization", func(t *testing.T) {
		foreignTemplateRepo := &mockTemplateRepo{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.MessageTemplate, error) {
				return &models.MessageTemplate{ID: id, OrganizationID: uuid.New()}, nil
			},
		}

		service := NewWorkflowService(&mockWorkflowRepo{}, foreignTemplateRepo, logger.NewForTesting())

		_, err := service.CreateWorkflow(context.Background(), orgID, validRequest())
		assert.ErrorIs(t, err, postgres.ErrTemplateNotFound)
	})

	t.Run("rejects a missing template", func(t *testing.T) {
		missingTemplateRepo := &mockTemplateRepo{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.MessageTemplate, error) {
				return nil, postgres.ErrTemplateNotFound
			},
		}

		service := NewWorkflowService(&mockWorkflowRepo{}, missingTemplateRepo, logger.NewForTesting())

		_, err := service.CreateWorkflow(context.Background(), orgID, validRequest())
		assert.ErrorIs(t, err, postgres.ErrTemplateNotFound)
	})
}

func TestUpdateWorkflow(t *testing.T) {
	orgID := uuid.New()
	workflowID := uuid.New()
	templateID := uuid.New()

	ownedTemplateRepo := &mockTemplateRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.MessageTemplate, error) {
			return &models.MessageTemplate{ID: id, OrganizationID: orgID, Body: "hi"}, nil
		},
	}

	t.Run("update without steps skips step validation", func(t *testing.T) {
		templateRepo := &mockTemplateRepo{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.MessageTemplate, error) {
				t.Fatal("template lookup not expected for a name-only update")
				return nil, nil
			},
		}
		name := "Renamed"
		workflowRepo := &mockWorkflowRepo{
			updateFunc: func(ctx context.Context, organizationID, id uuid.UUID, req *models.UpdateWorkflowRequest) (*models.Workflow, error) {
				return &models.Workflow{ID: id, Name: *req.Name}, nil
			},
		}

		service := NewWorkflowService(workflowRepo, templateRepo, logger.NewForTesting())

		workflow, err := service.UpdateWorkflow(context.Background(), orgID, workflowID, &models.UpdateWorkflowRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", workflow.Name)
	})

	t.Run("replacement steps are validated", func(t *testing.T) {
		service := NewWorkflowService(&mockWorkflowRepo{}, ownedTemplateRepo, logger.NewForTesting())

		req := &models.UpdateWorkflowRequest{
			Steps: []models.CreateStepRequest{
				{Channel: models.ChannelEmail, TemplateID: templateID, TimeOfDay: "bad"},
			},
		}

		_, err := service.UpdateWorkflow(context.Background(), orgID, workflowID, req)
		assert.Error(t, err)
	})
}

func TestListWorkflows(t *testing.T) {
	orgID := uuid.New()

	t.Run("clamps pagination", func(t *testing.T) {
		var gotLimit, gotOffset int
		workflowRepo := &mockWorkflowRepo{
			listFunc: func(ctx context.Context, organizationID uuid.UUID, isActive *bool, limit, offset int) ([]models.Workflow, int64, error) {
				gotLimit = limit
				gotOffset = offset
				return []models.Workflow{}, 0, nil
			},
		}

		service := NewWorkflowService(workflowRepo, &mockTemplateRepo{}, logger.NewForTesting())

		resp, err := service.ListWorkflows(context.Background(), orgID, nil, -3, 1000)
		require.NoError(t, err)
		assert.Equal(t, 50, gotLimit)
		assert.Equal(t, 0, gotOffset)
		assert.Equal(t, 1, resp.Page)
	})

	t.Run("passes the active filter through", func(t *testing.T) {
		active := true
		workflowRepo := &mockWorkflowRepo{
			listFunc: func(ctx context.Context, organizationID uuid.UUID, isActive *bool, limit, offset int) ([]models.Workflow, int64, error) {
				require.NotNil(t, isActive)
				assert.True(t, *isActive)
				return []models.Workflow{{OrganizationID: organizationID, IsActive: true}}, 1, nil
			},
		}

		service := NewWorkflowService(workflowRepo, &mockTemplateRepo{}, logger.NewForTesting())

		resp, err := service.ListWorkflows(context.Background(), orgID, &active, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.Total)
	})
}
