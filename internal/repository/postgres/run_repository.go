package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
)

// RunRepository handles workflow run and step-run database operations.
// Runs are the shared mutable resource between the dispatcher and the
// auto-stop evaluator, so every state transition here is a conditional
// update keyed on the expected prior state.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `id, customer_id, workflow_id, status, started_at, current_step_index,
       next_run_at, stopped_at, stop_reason, created_at, updated_at`

func scanRun(row interface{ Scan(...interface{}) error }) (*models.WorkflowRun, error) {
	run := &models.WorkflowRun{}
	err := row.Scan(
		&run.ID, &run.CustomerID, &run.WorkflowID, &run.Status, &run.StartedAt,
		&run.CurrentStepIndex, &run.NextRunAt, &run.StoppedAt, &run.StopReason,
		&run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// CreateReplacing creates a run, stopping any still-running run of the same
// customer first. Stop and create commit in one transaction so the customer
// never ends up with zero or two running runs.
func (r *RunRepository) CreateReplacing(ctx context.Context, run *models.WorkflowRun, firstStepRun *models.StepRun) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	stopQuery := `
		UPDATE workflow_runs
		SET status = $2, stopped_at = $3, stop_reason = $4, next_run_at = NULL, updated_at = $3
		WHERE customer_id = $1 AND status = $5`

	if _, err := tx.ExecContext(
		ctx, stopQuery,
		run.CustomerID, models.RunStatusStopped, now, models.StopReasonReplaced, models.RunStatusRunning,
	); err != nil {
		return fmt.Errorf("failed to stop replaced runs: %w", err)
	}

	cancelQuery := `
		UPDATE workflow_step_runs
		SET status = $1, executed_at = $2
		WHERE status = $3
		  AND run_id IN (SELECT id FROM workflow_runs WHERE customer_id = $4 AND stop_reason = $5)`

	if _, err := tx.ExecContext(
		ctx, cancelQuery,
		models.StepRunStatusCancelled, now, models.StepRunStatusPending, run.CustomerID, models.StopReasonReplaced,
	); err != nil {
		return fmt.Errorf("failed to cancel replaced step runs: %w", err)
	}

	insertQuery := `
		INSERT INTO workflow_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	if _, err := tx.ExecContext(
		ctx, insertQuery,
		run.ID, run.CustomerID, run.WorkflowID, run.Status, run.StartedAt,
		run.CurrentStepIndex, run.NextRunAt, run.StoppedAt, run.StopReason,
		run.CreatedAt, run.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	if firstStepRun != nil {
		if err := insertStepRun(ctx, tx, firstStepRun); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run creation: %w", err)
	}

	return nil
}

// GetByID retrieves a run by ID
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WorkflowRun, error) {
	query := `SELECT ` + runColumns + ` FROM workflow_runs WHERE id = $1`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// GetDueRuns retrieves running runs whose next_run_at has passed
func (r *RunRepository) GetDueRuns(ctx context.Context, now time.Time, limit int) ([]*models.WorkflowRun, error) {
	query := `
		SELECT ` + runColumns + `
		FROM workflow_runs
		WHERE status = $1
		  AND next_run_at IS NOT NULL
		  AND next_run_at <= $2
		ORDER BY next_run_at ASC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, models.RunStatusRunning, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due runs: %w", err)
	}
	defer rows.Close()

	runs := []*models.WorkflowRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRunningByCustomer retrieves the customer's running runs. The invariant
// says at most one, but callers tolerate more defensively.
func (r *RunRepository) GetRunningByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.WorkflowRun, error) {
	query := `
		SELECT ` + runColumns + `
		FROM workflow_runs
		WHERE customer_id = $1 AND status = $2
		ORDER BY started_at ASC`

	rows, err := r.db.QueryContext(ctx, query, customerID, models.RunStatusRunning)
	if err != nil {
		return nil, fmt.Errorf("failed to query running runs: %w", err)
	}
	defer rows.Close()

	runs := []*models.WorkflowRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// List retrieves runs with optional customer/status filters and pagination
func (r *RunRepository) List(ctx context.Context, customerID *uuid.UUID, status *models.RunStatus, limit, offset int) ([]models.WorkflowRun, int64, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM workflow_runs
		WHERE ($1::uuid IS NULL OR customer_id = $1)
		  AND ($2::varchar IS NULL OR status = $2)`

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, customerID, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}

	query := `
		SELECT ` + runColumns + `
		FROM workflow_runs
		WHERE ($1::uuid IS NULL OR customer_id = $1)
		  AND ($2::varchar IS NULL OR status = $2)
		ORDER BY started_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, customerID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []models.WorkflowRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, total, rows.Err()
}

// ClaimAdvance moves a run's step pointer from fromIndex to toIndex (or to a
// terminal completed state) only if no concurrent writer got there first.
// Returns false when the run was stopped or already advanced; the caller must
// then skip its send. This is the optimistic-concurrency check that prevents
// duplicate sends under overlapping sweeps.
//
// When the claim wins and nextPending is non-nil, the next step's pending
// audit record is inserted in the same transaction. A concurrent stop then
// either loses the claim race entirely or sees the pending record and cancels
// it; no pending record can be created on a terminal run.
func (r *RunRepository) ClaimAdvance(ctx context.Context, runID uuid.UUID, fromIndex, toIndex int, nextRunAt *time.Time, status models.RunStatus, nextPending *models.StepRun) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE workflow_runs
		SET current_step_index = $4, next_run_at = $5, status = $6, updated_at = $7
		WHERE id = $1 AND status = $2 AND current_step_index = $3`

	result, err := tx.ExecContext(
		ctx, query,
		runID, models.RunStatusRunning, fromIndex, toIndex, nextRunAt, status, time.Now(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to advance run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	if nextPending != nil {
		if err := insertStepRun(ctx, tx, nextPending); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit run advance: %w", err)
	}

	return true, nil
}

// Stop transitions a running run to a terminal stop state and cancels its
// pending step runs in the same transaction. Returns false without error when
// the run was no longer running (idempotent).
func (r *RunRepository) Stop(ctx context.Context, runID uuid.UUID, status models.RunStatus, reason string, stoppedAt time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE workflow_runs
		SET status = $2, stopped_at = $3, stop_reason = $4, next_run_at = NULL, updated_at = $3
		WHERE id = $1 AND status = $5`

	result, err := tx.ExecContext(ctx, query, runID, status, stoppedAt, reason, models.RunStatusRunning)
	if err != nil {
		return false, fmt.Errorf("failed to stop run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	cancelQuery := `
		UPDATE workflow_step_runs
		SET status = $2, executed_at = $3
		WHERE run_id = $1 AND status = $4`

	if _, err := tx.ExecContext(ctx, cancelQuery, runID, models.StepRunStatusCancelled, stoppedAt, models.StepRunStatusPending); err != nil {
		return false, fmt.Errorf("failed to cancel pending step runs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit run stop: %w", err)
	}

	return true, nil
}

const stepRunColumns = `id, run_id, step_index, channel, status, scheduled_for,
       executed_at, subject, body, error_message, created_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertStepRun(ctx context.Context, tx execer, step *models.StepRun) error {
	query := `
		INSERT INTO workflow_step_runs (` + stepRunColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	if _, err := tx.ExecContext(
		ctx, query,
		step.ID, step.RunID, step.StepIndex, step.Channel, step.Status,
		step.ScheduledFor, step.ExecutedAt, step.Subject, step.Body,
		step.ErrorMessage, step.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create step run: %w", err)
	}
	return nil
}

// CreateStepRun appends one step execution record
func (r *RunRepository) CreateStepRun(ctx context.Context, step *models.StepRun) error {
	return insertStepRun(ctx, r.db, step)
}

// ResolvePendingStepRun sets the outcome of the pending record for one step
// of a run. Terminal step-run records are never mutated again. Returns false
// without error when no pending record exists for the step.
func (r *RunRepository) ResolvePendingStepRun(ctx context.Context, runID uuid.UUID, stepIndex int, status models.StepRunStatus, executedAt time.Time, subject, body, errorMessage *string) (bool, error) {
	query := `
		UPDATE workflow_step_runs
		SET status = $3, executed_at = $4, subject = $5, body = $6, error_message = $7
		WHERE run_id = $1 AND step_index = $2 AND status = $8`

	result, err := r.db.ExecContext(
		ctx, query,
		runID, stepIndex, status, executedAt, subject, body, errorMessage,
		models.StepRunStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to resolve step run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// GetStepRuns retrieves the audit trail for a run in step order
func (r *RunRepository) GetStepRuns(ctx context.Context, runID uuid.UUID) ([]models.StepRun, error) {
	query := `
		SELECT ` + stepRunColumns + `
		FROM workflow_step_runs
		WHERE run_id = $1
		ORDER BY step_index ASC`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query step runs: %w", err)
	}
	defer rows.Close()

	steps := []models.StepRun{}
	for rows.Next() {
		step := models.StepRun{}
		if err := rows.Scan(
			&step.ID, &step.RunID, &step.StepIndex, &step.Channel, &step.Status,
			&step.ScheduledFor, &step.ExecutedAt, &step.Subject, &step.Body,
			&step.ErrorMessage, &step.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan step run: %w", err)
		}
		steps = append(steps, step)
	}

	return steps, rows.Err()
}
