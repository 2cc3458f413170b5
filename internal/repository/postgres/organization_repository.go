package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
)

// OrganizationRepository handles organization database operations
type OrganizationRepository struct {
	db *sql.DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

const organizationColumns = `id, name, address, phone, business_hours, line_add_url, license_number,
       store_name, store_address, store_phone, store_hours, utc_offset_minutes,
       created_at, updated_at`

// Create creates a new organization
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (` + organizationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	if _, err := r.db.ExecContext(
		ctx, query,
		org.ID, org.Name, org.Address, org.Phone, org.BusinessHours,
		org.LineAddURL, org.LicenseNumber, org.StoreName, org.StoreAddress,
		org.StorePhone, org.StoreHours, org.UTCOffsetMinutes,
		org.CreatedAt, org.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

// GetByID retrieves an organization by ID
func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org := &models.Organization{}
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.Address, &org.Phone, &org.BusinessHours,
		&org.LineAddURL, &org.LicenseNumber, &org.StoreName, &org.StoreAddress,
		&org.StorePhone, &org.StoreHours, &org.UTCOffsetMinutes,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return org, nil
}

// Update updates an organization's profile fields
func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, address = $3, phone = $4, business_hours = $5,
		    line_add_url = $6, license_number = $7, store_name = $8,
		    store_address = $9, store_phone = $10, store_hours = $11,
		    utc_offset_minutes = $12, updated_at = $13
		WHERE id = $1`

	org.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(
		ctx, query,
		org.ID, org.Name, org.Address, org.Phone, org.BusinessHours,
		org.LineAddURL, org.LicenseNumber, org.StoreName, org.StoreAddress,
		org.StorePhone, org.StoreHours, org.UTCOffsetMinutes, org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrOrganizationNotFound
	}

	return nil
}
