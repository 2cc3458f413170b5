package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
)

// TemplateRepository handles message template database operations
type TemplateRepository struct {
	db *sql.DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create creates a new message template
func (r *TemplateRepository) Create(ctx context.Context, organizationID uuid.UUID, req *models.CreateTemplateRequest) (*models.MessageTemplate, error) {
	now := time.Now()
	tmpl := &models.MessageTemplate{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Name:           req.Name,
		Subject:        req.Subject,
		Body:           req.Body,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	query := `
		INSERT INTO message_templates (id, organization_id, name, subject, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := r.db.ExecContext(
		ctx, query,
		tmpl.ID, tmpl.OrganizationID, tmpl.Name, tmpl.Subject, tmpl.Body,
		tmpl.CreatedAt, tmpl.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	return tmpl, nil
}

// GetByID retrieves a template by ID
func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MessageTemplate, error) {
	tmpl := &models.MessageTemplate{}
	query := `
		SELECT id, organization_id, name, subject, body, created_at, updated_at
		FROM message_templates
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tmpl.ID, &tmpl.OrganizationID, &tmpl.Name, &tmpl.Subject, &tmpl.Body,
		&tmpl.CreatedAt, &tmpl.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return tmpl, nil
}

// List retrieves templates for an organization
func (r *TemplateRepository) List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]models.MessageTemplate, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM message_templates WHERE organization_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, organizationID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count templates: %w", err)
	}

	query := `
		SELECT id, organization_id, name, subject, body, created_at, updated_at
		FROM message_templates
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	templates := []models.MessageTemplate{}
	for rows.Next() {
		tmpl := models.MessageTemplate{}
		if err := rows.Scan(
			&tmpl.ID, &tmpl.OrganizationID, &tmpl.Name, &tmpl.Subject, &tmpl.Body,
			&tmpl.CreatedAt, &tmpl.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, tmpl)
	}

	return templates, total, rows.Err()
}

// Update updates a message template
func (r *TemplateRepository) Update(ctx context.Context, organizationID, id uuid.UUID, req *models.UpdateTemplateRequest) (*models.MessageTemplate, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.OrganizationID != organizationID {
		return nil, ErrTemplateNotFound
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Subject != nil {
		existing.Subject = req.Subject
	}
	if req.Body != nil {
		existing.Body = *req.Body
	}
	existing.UpdatedAt = time.Now()

	query := `
		UPDATE message_templates
		SET name = $3, subject = $4, body = $5, updated_at = $6
		WHERE id = $1 AND organization_id = $2`

	if _, err := r.db.ExecContext(
		ctx, query,
		id, organizationID, existing.Name, existing.Subject, existing.Body, existing.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}

	return existing, nil
}

// Delete deletes a message template
func (r *TemplateRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	query := `DELETE FROM message_templates WHERE id = $1 AND organization_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrTemplateNotFound
	}

	return nil
}
