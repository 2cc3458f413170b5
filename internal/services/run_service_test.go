package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/repository/postgres"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunService(runRepo *mockRunRepo, workflowRepo *mockWorkflowRepo, customerRepo *mockCustomerRepo, dispatcher *mockProcessor) *RunService {
	if dispatcher == nil {
		dispatcher = &mockProcessor{}
	}
	return NewRunService(
		runRepo,
		workflowRepo,
		customerRepo,
		&mockOrgRepo{},
		dispatcher,
		logger.NewForTesting(),
		testMetrics,
	)
}

func TestStartWorkflow(t *testing.T) {
	orgID := uuid.New()
	customerID := uuid.New()
	workflowID := uuid.New()
	templateID := uuid.New()

	activeWorkflow := func(steps []models.WorkflowStep) *models.Workflow {
		return &models.Workflow{
			ID:             workflowID,
			OrganizationID: orgID,
			Name:           "Follow-up",
			IsActive:       true,
			Steps:          steps,
		}
	}
	customerInOrg := &models.Customer{ID: customerID, OrganizationID: orgID, Name: "Tanaka"}

	t.Run("rejects inactive workflow", func(t *testing.T) {
		workflowRepo := &mockWorkflowRepo{
			getByIDFunc: func(ctx context.Context, organizationID, id uuid.UUID) (*models.Workflow, error) {
				w := activeWorkflow(twoStepWorkflow(templateID))
				w.IsActive = false
				return w, nil
			},
		}

		service := newRunService(&mockRunRepo{}, workflowRepo, &mockCustomerRepo{}, nil)

		_, err := service.StartWorkflow(context.Background(), orgID, customerID, workflowID)
		assert.ErrorIs(t, err, ErrWorkflowInactive)
	})

	t.Run("rejects workflow with no steps", func(t *testing.T) {
		workflowRepo := &mockWorkflowRepo{
			getByIDFunc: func(ctx context.Context, organizationID, id uuid.UUID) (*models.Workflow, error) {
				return activeWorkflow(nil), nil
			},
		}

		service := newRunService(&mockRunRepo{}, workflowRepo, &mockCustomerRepo{}, nil)

		_, err := service.StartWorkflow(context.Background(), orgID, customerID, workflowID)
		assert.ErrorIs(t, err, ErrWorkflowEmpty)
	})

	t.Run("rejects customer from another organization", func(t *testing.T) {
		workflowRepo := &mockWorkflowRepo{
			getByIDFunc: func(ctx context.Context, organizationID, id uuid.UUID) (*models.Workflow, error) {
				return activeWorkflow(twoStepWorkflow(templateID)), nil
			},
		}
		customerRepo := &mockCustomerRepo{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
				return &models.Customer{ID: id, OrganizationID: uuid.New()}, nil
			},
		}

		service := newRunService(&mockRunRepo{}, workflowRepo, customerRepo, nil)

		_, err := service.StartWorkflow(context.Background(), orgID, customerID, workflowID)
		assert.ErrorIs(t, err, postgres.ErrCustomerNotFound)
	})

	t.Run("schedules a non-immediate first step without dispatching", func(t *testing.T) {
		steps := []models.WorkflowStep{
			{Position: 0, Channel: models.ChannelEmail, TemplateID: templateID, DaysAfter: 1, TimeOfDay: "10:00"},
		}
		workflowRepo := &mockWorkflowRepo{
			getByIDFunc: func(ctx context.Context, organizationID, id uuid.UUID) (*models.Workflow, error) {
				return activeWorkflow(steps), nil
			},
		}
		customerRepo := &mockCustomerRepo{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
				return customerInOrg, nil
			},
		}

		var created *models.WorkflowRun
		var firstStep *models.StepRun
		runRepo := &mockRunRepo{
			createReplacingFunc: func(ctx context.Context, run *models.WorkflowRun, firstStepRun *models.StepRun) error {
				created = run
				firstStep = firstStepRun
				return nil
			},
		}
		dispatcher := &mockProcessor{
			processFunc: func(ctx context.Context, run *models.WorkflowRun) error {
				t.Fatal("dispatcher should not run for a scheduled first step")
				return nil
			},
		}

		service := newRunService(runRepo, workflowRepo, customerRepo, dispatcher)

		run, err := service.StartWorkflow(context.Background(), orgID, customerID, workflowID)
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.Equal(t, models.RunStatusRunning, run.Status)
		assert.Equal(t, 0, run.CurrentStepIndex)
		require.NotNil(t, run.NextRunAt)
		assert.True(t, run.NextRunAt.After(time.Now()), "first step should be in the future")

		require.NotNil(t, firstStep)
		assert.Equal(t, 0, firstStep.StepIndex)
		assert.Equal(t, models.StepRunStatusPending, firstStep.Status)
	})

	t.Run("immediate first step is dispatched synchronously", func(t *testing.T) {
		workflowRepo := &mockWorkflowRepo{
			getByIDFunc: func(ctx context.Context, organizationID, id uuid.UUID) (*models.Workflow, error) {
				return activeWorkflow(twoStepWorkflow(templateID)), nil
			},
		}
		customerRepo := &mockCustomerRepo{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
				return customerInOrg, nil
			},
		}

		advanced := &models.WorkflowRun{
			Status:           models.RunStatusRunning,
			CustomerID:       customerID,
			WorkflowID:       workflowID,
			CurrentStepIndex: 1,
		}
		runRepo := &mockRunRepo{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.WorkflowRun, error) {
				advanced.ID = id
				return advanced, nil
			},
		}

		dispatched := false
		dispatcher := &mockProcessor{
			processFunc: func(ctx context.Context, run *models.WorkflowRun) error {
				dispatched = true
				return nil
			},
		}

		service := newRunService(runRepo, workflowRepo, customerRepo, dispatcher)

		run, err := service.StartWorkflow(context.Background(), orgID, customerID, workflowID)
		require.NoError(t, err)

		assert.True(t, dispatched)
		// Caller sees the post-dispatch state, not the freshly built run.
		assert.Equal(t, 1, run.CurrentStepIndex)
	})

	t.Run("immediate send failure does not fail the start", func(t *testing.T) {
		workflowRepo := &mockWorkflowRepo{
			getByIDFunc: func(ctx context.Context, organizationID, id uuid.UUID) (*models.Workflow, error) {
				return activeWorkflow(twoStepWorkflow(templateID)), nil
			},
		}
		customerRepo := &mockCustomerRepo{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
				return customerInOrg, nil
			},
		}
		runRepo := &mockRunRepo{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.WorkflowRun, error) {
				return &models.WorkflowRun{ID: id, Status: models.RunStatusRunning}, nil
			},
		}
		dispatcher := &mockProcessor{
			processFunc: func(ctx context.Context, run *models.WorkflowRun) error {
				return errors.New("smtp down")
			},
		}

		service := newRunService(runRepo, workflowRepo, customerRepo, dispatcher)

		run, err := service.StartWorkflow(context.Background(), orgID, customerID, workflowID)
		require.NoError(t, err)
		assert.NotNil(t, run)
	})
}

func TestStopRun(t *testing.T) {
	orgID := uuid.New()
	customerID := uuid.New()
	runID := uuid.New()

	customerRepo := &mockCustomerRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
			return &models.Customer{ID: id, OrganizationID: orgID}, nil
		},
	}

	t.Run("stops a running run with the manual reason", func(t *testing.T) {
		var gotStatus models.RunStatus
		var gotReason string
		runRepo := &mockRunRepo{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.WorkflowRun, error) {
				return &models.WorkflowRun{ID: id, CustomerID: customerID, Status: models.RunStatusRunning}, nil
			},
			stopFunc: func(ctx context.Context, id uuid.UUID, status models.RunStatus, reason string, stoppedAt time.Time) (bool, error) {
				gotStatus = status
				gotReason = reason
				return true, nil
			},
		}

		service := newRunService(runRepo, &mockWorkflowRepo{}, customerRepo, nil)

		err := service.StopRun(context.Background(), orgID, runID)
		require.NoError(t, err)
		assert.Equal(t, models.RunStatusStopped, gotStatus)
		assert.Equal(t, string(models.TriggerManual), gotReason)
	})

	t.Run("already-terminal run is a no-op", func(t *testing.T) {
		runRepo := &mockRunRepo{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.WorkflowRun, error) {
				return &models.WorkflowRun{ID: id, CustomerID: customerID, Status: models.RunStatusCompleted}, nil
			},
			stopFunc: func(ctx context.Context, id uuid.UUID, status models.RunStatus, reason string, stoppedAt time.Time) (bool, error) {
				return false, nil
			},
		}

		service := newRunService(runRepo, &mockWorkflowRepo{}, customerRepo, nil)

		err := service.StopRun(context.Background(), orgID, runID)
		assert.NoError(t, err)
	})

	t.Run("run owned by another org is not found", func(t *testing.T) {
		runRepo := &mockRunRepo{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.WorkflowRun, error) {
				return &models.WorkflowRun{ID: id, CustomerID: customerID, Status: models.RunStatusRunning}, nil
			},
		}

		service := newRunService(runRepo, &mockWorkflowRepo{}, customerRepo, nil)

		err := service.StopRun(context.Background(), uuid.New(), runID)
		assert.ErrorIs(t, err, postgres.ErrRunNotFound)
	})
}

func TestGetRunTrace(t *testing.T) {
	orgID := uuid.New()
	customerID := uuid.New()
	runID := uuid.New()

	customerRepo := &mockCustomerRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
			return &models.Customer{ID: id, OrganizationID: orgID}, nil
		},
	}

	t.Run("returns run with step trail", func(t *testing.T) {
		runRepo := &mockRunRepo{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.WorkflowRun, error) {
				return &models.WorkflowRun{ID: id, CustomerID: customerID, Status: models.RunStatusRunning}, nil
			},
			getStepRunsFunc: func(ctx context.Context, id uuid.UUID) ([]models.StepRun, error) {
				return []models.StepRun{
					{RunID: id, StepIndex: 0, Status: models.StepRunStatusSent},
					{RunID: id, StepIndex: 1, Status: models.StepRunStatusPending},
				}, nil
			},
		}
		workflowRepo := &mockWorkflowRepo{
			getByIDFunc: func(ctx context.Context, organizationID, id uuid.UUID) (*models.Workflow, error) {
				return &models.Workflow{ID: id, Name: "Follow-up"}, nil
			},
		}

		service := newRunService(runRepo, workflowRepo, customerRepo, nil)

		trace, err := service.GetRunTrace(context.Background(), orgID, runID)
		require.NoError(t, err)
		assert.Len(t, trace.StepRuns, 2)
		require.NotNil(t, trace.Workflow)
		assert.Equal(t, "Follow-up", trace.Workflow.Name)
	})

	t.Run("deleted workflow definition does not break the trace", func(t *testing.T) {
		runRepo := &mockRunRepo{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.WorkflowRun, error) {
				return &models.WorkflowRun{ID: id, CustomerID: customerID, Status: models.RunStatusCompleted}, nil
			},
		}
		workflowRepo := &mockWorkflowRepo{
			getByIDFunc: func(ctx context.Context, organizationID, id uuid.UUID) (*models.Workflow, error) {
				return nil, postgres.ErrWorkflowNotFound
			},
		}

		service := newRunService(runRepo, workflowRepo, customerRepo, nil)

		trace, err := service.GetRunTrace(context.Background(), orgID, runID)
		require.NoError(t, err)
		assert.Nil(t, trace.Workflow)
	})
}

func TestListRuns(t *testing.T) {
	t.Run("clamps pagination", func(t *testing.T) {
		var gotLimit, gotOffset int
		runRepo := &mockRunRepo{
			listFunc: func(ctx context.Context, customerID *uuid.UUID, status *models.RunStatus, limit, offset int) ([]models.WorkflowRun, int64, error) {
				gotLimit = limit
				gotOffset = offset
				return []models.WorkflowRun{}, 0, nil
			},
		}

		service := newRunService(runRepo, &mockWorkflowRepo{}, &mockCustomerRepo{}, nil)

		resp, err := service.ListRuns(context.Background(), nil, nil, 0, 500)
		require.NoError(t, err)
		assert.Equal(t, 50, gotLimit)
		assert.Equal(t, 0, gotOffset)
		assert.Equal(t, 1, resp.Page)
	})

	t.Run("passes filters through", func(t *testing.T) {
		customerID := uuid.New()
		status := models.RunStatusRunning
		runRepo := &mockRunRepo{
			listFunc: func(ctx context.Context, gotCustomer *uuid.UUID, gotStatus *models.RunStatus, limit, offset int) ([]models.WorkflowRun, int64, error) {
				require.NotNil(t, gotCustomer)
				assert.Equal(t, customerID, *gotCustomer)
				require.NotNil(t, gotStatus)
				assert.Equal(t, status, *gotStatus)
				return []models.WorkflowRun{{CustomerID: customerID}}, 1, nil
			},
		}

		service := newRunService(runRepo, &mockWorkflowRepo{}, &mockCustomerRepo{}, nil)

		resp, err := service.ListRuns(context.Background(), &customerID, &status, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.Total)
		assert.Len(t, resp.Runs, 1)
	})
}
