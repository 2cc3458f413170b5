package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
)

// WorkflowRepository handles workflow definition database operations
type WorkflowRepository struct {
	db *sql.DB
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(db *sql.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// Create creates a workflow and its steps in one transaction
func (r *WorkflowRepository) Create(ctx context.Context, organizationID uuid.UUID, req *models.CreateWorkflowRequest) (*models.Workflow, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	workflow := &models.Workflow{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Name:           req.Name,
		Description:    req.Description,
		IsActive:       true,
		IsDefault:      req.IsDefault,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	query := `
		INSERT INTO workflows (id, organization_id, name, description, is_active, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := tx.ExecContext(
		ctx, query,
		workflow.ID, workflow.OrganizationID, workflow.Name, workflow.Description,
		workflow.IsActive, workflow.IsDefault, workflow.CreatedAt, workflow.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	steps, err := insertSteps(ctx, tx, workflow.ID, req.Steps)
	if err != nil {
		return nil, err
	}
	workflow.Steps = steps

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit workflow: %w", err)
	}

	return workflow, nil
}

func insertSteps(ctx context.Context, tx *sql.Tx, workflowID uuid.UUID, reqs []models.CreateStepRequest) ([]models.WorkflowStep, error) {
	query := `
		INSERT INTO workflow_steps (id, workflow_id, position, channel, template_id, days_after, time_of_day, is_immediate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	steps := make([]models.WorkflowStep, 0, len(reqs))
	for i, s := range reqs {
		step := models.WorkflowStep{
			ID:          uuid.New(),
			WorkflowID:  workflowID,
			Position:    i,
			Channel:     s.Channel,
			TemplateID:  s.TemplateID,
			DaysAfter:   s.DaysAfter,
			TimeOfDay:   s.TimeOfDay,
			IsImmediate: s.IsImmediate,
		}
		if _, err := tx.ExecContext(
			ctx, query,
			step.ID, step.WorkflowID, step.Position, step.Channel,
			step.TemplateID, step.DaysAfter, step.TimeOfDay, step.IsImmediate,
		); err != nil {
			return nil, fmt.Errorf("failed to create workflow step %d: %w", i, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// GetByID retrieves a workflow with its steps, scoped to an organization
func (r *WorkflowRepository) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Workflow, error) {
	workflow := &models.Workflow{}
	query := `
		SELECT id, organization_id, name, description, is_active, is_default, created_at, updated_at
		FROM workflows
		WHERE id = $1 AND organization_id = $2`

	err := r.db.QueryRowContext(ctx, query, id, organizationID).Scan(
		&workflow.ID, &workflow.OrganizationID, &workflow.Name, &workflow.Description,
		&workflow.IsActive, &workflow.IsDefault, &workflow.CreatedAt, &workflow.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrWorkflowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	steps, err := r.GetSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	workflow.Steps = steps

	return workflow, nil
}

// GetSteps retrieves a workflow's steps in execution order. Steps are read
// live at dispatch time so definition edits apply to in-flight runs.
func (r *WorkflowRepository) GetSteps(ctx context.Context, workflowID uuid.UUID) ([]models.WorkflowStep, error) {
	query := `
		SELECT id, workflow_id, position, channel, template_id, days_after, time_of_day, is_immediate
		FROM workflow_steps
		WHERE workflow_id = $1
		ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow steps: %w", err)
	}
	defer rows.Close()

	steps := []models.WorkflowStep{}
	for rows.Next() {
		step := models.WorkflowStep{}
		if err := rows.Scan(
			&step.ID, &step.WorkflowID, &step.Position, &step.Channel,
			&step.TemplateID, &step.DaysAfter, &step.TimeOfDay, &step.IsImmediate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan workflow step: %w", err)
		}
		steps = append(steps, step)
	}

	return steps, rows.Err()
}

// List retrieves workflows for an organization with pagination
func (r *WorkflowRepository) List(ctx context.Context, organizationID uuid.UUID, isActive *bool, limit, offset int) ([]models.Workflow, int64, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM workflows
		WHERE organization_id = $1
		  AND ($2::boolean IS NULL OR is_active = $2)`

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, organizationID, isActive).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count workflows: %w", err)
	}

	query := `
		SELECT id, organization_id, name, description, is_active, is_default, created_at, updated_at
		FROM workflows
		WHERE organization_id = $1
		  AND ($2::boolean IS NULL OR is_active = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, organizationID, isActive, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	workflows := []models.Workflow{}
	for rows.Next() {
		workflow := models.Workflow{}
		if err := rows.Scan(
			&workflow.ID, &workflow.OrganizationID, &workflow.Name, &workflow.Description,
			&workflow.IsActive, &workflow.IsDefault, &workflow.CreatedAt, &workflow.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, workflow)
	}

	return workflows, total, rows.Err()
}

// Update updates a workflow, replacing its steps when new steps are provided
func (r *WorkflowRepository) Update(ctx context.Context, organizationID, id uuid.UUID, req *models.UpdateWorkflowRequest) (*models.Workflow, error) {
	existing, err := r.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.IsDefault != nil {
		existing.IsDefault = *req.IsDefault
	}
	existing.UpdatedAt = time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE workflows
		SET name = $3, description = $4, is_default = $5, updated_at = $6
		WHERE id = $1 AND organization_id = $2`

	if _, err := tx.ExecContext(
		ctx, query,
		id, organizationID, existing.Name, existing.Description, existing.IsDefault, existing.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	if req.Steps != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM workflow_steps WHERE workflow_id = $1`, id); err != nil {
			return nil, fmt.Errorf("failed to replace workflow steps: %w", err)
		}
		steps, err := insertSteps(ctx, tx, id, req.Steps)
		if err != nil {
			return nil, err
		}
		existing.Steps = steps
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit workflow update: %w", err)
	}

	return existing, nil
}

// SetActive toggles whether a workflow can be started
func (r *WorkflowRepository) SetActive(ctx context.Context, organizationID, id uuid.UUID, active bool) error {
	query := `
		UPDATE workflows
		SET is_active = $3, updated_at = $4
		WHERE id = $1 AND organization_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, organizationID, active, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set workflow active: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrWorkflowNotFound
	}

	return nil
}

// Delete deletes a workflow and its steps
func (r *WorkflowRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM workflow_steps WHERE workflow_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete workflow steps: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM workflows WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrWorkflowNotFound
	}

	return tx.Commit()
}
