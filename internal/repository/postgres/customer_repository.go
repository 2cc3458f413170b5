package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
)

// CustomerRepository handles customer database operations
type CustomerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `id, organization_id, name, email, phone, line_user_id, assignee_name,
       pipeline_status, is_need_action, last_active_at, property_name, property_url,
       created_at, updated_at`

func scanCustomer(row interface{ Scan(...interface{}) error }) (*models.Customer, error) {
	c := &models.Customer{}
	err := row.Scan(
		&c.ID, &c.OrganizationID, &c.Name, &c.Email, &c.Phone, &c.LineUserID,
		&c.AssigneeName, &c.PipelineStatus, &c.IsNeedAction, &c.LastActiveAt,
		&c.PropertyName, &c.PropertyURL, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create creates a new customer
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	if _, err := r.db.ExecContext(
		ctx, query,
		customer.ID, customer.OrganizationID, customer.Name, customer.Email,
		customer.Phone, customer.LineUserID, customer.AssigneeName,
		customer.PipelineStatus, customer.IsNeedAction, customer.LastActiveAt,
		customer.PropertyName, customer.PropertyURL, customer.CreatedAt, customer.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// GetByID retrieves a customer by ID
func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return customer, nil
}

// MarkActivity records customer activity: refreshes last_active_at and clears
// the needs-action flag. Called when the customer replies or follows on LINE.
func (r *CustomerRepository) MarkActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE customers
		SET last_active_at = $2, is_need_action = false, updated_at = $2
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark customer activity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrCustomerNotFound
	}

	return nil
}

// GetIdleCustomers retrieves customers that have gone quiet: no activity
// since the cutoff, not already flagged, and still in an open pipeline status.
func (r *CustomerRepository) GetIdleCustomers(ctx context.Context, cutoff time.Time, openStatuses []models.PipelineStatus, limit int) ([]*models.Customer, error) {
	statuses := make([]string, 0, len(openStatuses))
	for _, s := range openStatuses {
		statuses = append(statuses, string(s))
	}

	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE is_need_action = false
		  AND last_active_at < $1
		  AND pipeline_status = ANY($2)
		ORDER BY last_active_at ASC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, cutoff, pq.Array(statuses), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query idle customers: %w", err)
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	return customers, rows.Err()
}

// TransitionPipelineStatus moves a customer from an expected pipeline status
// to a new one, optionally raising the needs-action flag. The conditional
// update loses silently if the status changed underneath the sweeper.
func (r *CustomerRepository) TransitionPipelineStatus(ctx context.Context, id uuid.UUID, from, to models.PipelineStatus, needAction bool) (bool, error) {
	query := `
		UPDATE customers
		SET pipeline_status = $3, is_need_action = $4, updated_at = $5
		WHERE id = $1 AND pipeline_status = $2`

	result, err := r.db.ExecContext(ctx, query, id, from, to, needAction, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to transition pipeline status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows == 1, nil
}
