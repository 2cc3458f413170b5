package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnTrigger(t *testing.T) {
	customerID := uuid.New()

	t.Run("no running run is a quiet no-op", func(t *testing.T) {
		stopCalled := false
		runRepo := &mockRunRepo{
			getRunningFunc: func(ctx context.Context, id uuid.UUID) ([]*models.WorkflowRun, error) {
				return []*models.WorkflowRun{}, nil
			},
			stopFunc: func(ctx context.Context, id uuid.UUID, status models.RunStatus, reason string, stoppedAt time.Time) (bool, error) {
				stopCalled = true
				return true, nil
			},
		}

		service := NewAutoStopService(runRepo, &mockCustomerRepo{}, logger.NewForTesting(), testMetrics)

		stopped, err := service.OnTrigger(context.Background(), customerID, models.TriggerCall)
		require.NoError(t, err)
		assert.Equal(t, 0, stopped)
		assert.False(t, stopCalled)
	})

	t.Run("reply stops the run and refreshes activity", func(t *testing.T) {
		runID := uuid.New()
		var gotStatus models.RunStatus
		var gotReason string
		runRepo := &mockRunRepo{
			getRunningFunc: func(ctx context.Context, id uuid.UUID) ([]*models.WorkflowRun, error) {
				return []*models.WorkflowRun{{ID: runID, CustomerID: customerID, Status: models.RunStatusRunning}}, nil
			},
			stopFunc: func(ctx context.Context, id uuid.UUID, status models.RunStatus, reason string, stoppedAt time.Time) (bool, error) {
				gotStatus = status
				gotReason = reason
				return true, nil
			},
		}
		activityMarked := false
		customerRepo := &mockCustomerRepo{
			markActivityFunc: func(ctx context.Context, id uuid.UUID, at time.Time) error {
				activityMarked = true
				assert.Equal(t, customerID, id)
				return nil
			},
		}

		service := NewAutoStopService(runRepo, customerRepo, logger.NewForTesting(), testMetrics)

		stopped, err := service.OnTrigger(context.Background(), customerID, models.TriggerReply)
		require.NoError(t, err)
		assert.Equal(t, 1, stopped)
		assert.Equal(t, models.RunStatusStoppedByReply, gotStatus)
		assert.Equal(t, string(models.TriggerReply), gotReason)
		assert.True(t, activityMarked)
	})

	t.Run("call does not count as customer activity", func(t *testing.T) {
		runRepo := &mockRunRepo{
			getRunningFunc: func(ctx context.Context, id uuid.UUID) ([]*models.WorkflowRun, error) {
				return []*models.WorkflowRun{{ID: uuid.New(), CustomerID: customerID, Status: models.RunStatusRunning}}, nil
			},
		}
		customerRepo := &mockCustomerRepo{
			markActivityFunc: func(ctx context.Context, id uuid.UUID, at time.Time) error {
				t.Fatal("call trigger must not refresh activity")
				return nil
			},
		}

		service := NewAutoStopService(runRepo, customerRepo, logger.NewForTesting(), testMetrics)

		stopped, err := service.OnTrigger(context.Background(), customerID, models.TriggerCall)
		require.NoError(t, err)
		assert.Equal(t, 1, stopped)
	})

	t.Run("line follow marks activity even with no run to stop", func(t *testing.T) {
		runRepo := &mockRunRepo{
			getRunningFunc: func(ctx context.Context, id uuid.UUID) ([]*models.WorkflowRun, error) {
				return []*models.WorkflowRun{}, nil
			},
		}
		activityMarked := false
		customerRepo := &mockCustomerRepo{
			markActivityFunc: func(ctx context.Context, id uuid.UUID, at time.Time) error {
				activityMarked = true
				return nil
			},
		}

		service := NewAutoStopService(runRepo, customerRepo, logger.NewForTesting(), testMetrics)

		stopped, err := service.OnTrigger(context.Background(), customerID, models.TriggerLineAdd)
		require.NoError(t, err)
		assert.Equal(t, 0, stopped)
		assert.True(t, activityMarked)
	})

	t.Run("run already stopped elsewhere is not counted", func(t *testing.T) {
		runRepo := &mockRunRepo{
			getRunningFunc: func(ctx context.Context, id uuid.UUID) ([]*models.WorkflowRun, error) {
				return []*models.WorkflowRun{{ID: uuid.New(), CustomerID: customerID, Status: models.RunStatusRunning}}, nil
			},
			stopFunc: func(ctx context.Context, id uuid.UUID, status models.RunStatus, reason string, stoppedAt time.Time) (bool, error) {
				return false, nil
			},
		}

		service := NewAutoStopService(runRepo, &mockCustomerRepo{}, logger.NewForTesting(), testMetrics)

		stopped, err := service.OnTrigger(context.Background(), customerID, models.TriggerVisit)
		require.NoError(t, err)
		assert.Equal(t, 0, stopped)
	})

	t.Run("stop failure on one run does not abort the rest", func(t *testing.T) {
		badID := uuid.New()
		goodID := uuid.New()
		runRepo := &mockRunRepo{
			getRunningFunc: func(ctx context.Context, id uuid.UUID) ([]*models.WorkflowRun, error) {
				return []*models.WorkflowRun{
					{ID: badID, CustomerID: customerID, Status: models.RunStatusRunning},
					{ID: goodID, CustomerID: customerID, Status: models.RunStatusRunning},
				}, nil
			},
			stopFunc: func(ctx context.Context, id uuid.UUID, status models.RunStatus, reason string, stoppedAt time.Time) (bool, error) {
				if id == badID {
					return false, errors.New("db down")
				}
				return true, nil
			},
		}

		service := NewAutoStopService(runRepo, &mockCustomerRepo{}, logger.NewForTesting(), testMetrics)

		stopped, err := service.OnTrigger(context.Background(), customerID, models.TriggerVisit)
		require.NoError(t, err)
		assert.Equal(t, 1, stopped)
	})
}

func TestStatusForTrigger(t *testing.T) {
	cases := map[models.StopTrigger]models.RunStatus{
		models.TriggerReply:   models.RunStatusStoppedByReply,
		models.TriggerLineAdd: models.RunStatusStoppedByLineAdd,
		models.TriggerVisit:   models.RunStatusStoppedByVisit,
		models.TriggerCall:    models.RunStatusStoppedByCall,
		models.TriggerManual:  models.RunStatusStopped,
	}
	for trigger, want := range cases {
		assert.Equal(t, want, models.StatusForTrigger(trigger), "trigger %s", trigger)
	}
}
