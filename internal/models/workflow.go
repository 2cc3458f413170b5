package models

import (
	"time"

	"github.com/google/uuid"
)

// Channel represents an outbound message channel
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelLine  Channel = "line"
	ChannelSMS   Channel = "sms"
)

// Workflow represents an outreach workflow definition: an ordered sequence of
// templated messages sent to a customer over days. Step content is re-read at
// dispatch time, so edits apply to runs already in flight (live template policy).
type Workflow struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	OrganizationID uuid.UUID      `json:"organization_id" db:"organization_id"`
	Name           string         `json:"name" db:"name"`
	Description    *string        `json:"description,omitempty" db:"description"`
	IsActive       bool           `json:"is_active" db:"is_active"`
	IsDefault      bool           `json:"is_default" db:"is_default"`
	Steps          []WorkflowStep `json:"steps" db:"-"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// WorkflowStep represents one scheduled message within a workflow.
// Position is dense and zero-based; insertion order is execution order.
type WorkflowStep struct {
	ID          uuid.UUID `json:"id" db:"id"`
	WorkflowID  uuid.UUID `json:"workflow_id" db:"workflow_id"`
	Position    int       `json:"position" db:"position"`
	Channel     Channel   `json:"channel" db:"channel"`
	TemplateID  uuid.UUID `json:"template_id" db:"template_id"`
	DaysAfter   int       `json:"days_after" db:"days_after"`
	TimeOfDay   string    `json:"time_of_day" db:"time_of_day"` // "HH:MM" wall clock in the org timezone
	IsImmediate bool      `json:"is_immediate" db:"is_immediate"`
}

// CreateWorkflowRequest represents the request to create a workflow
type CreateWorkflowRequest struct {
	Name        string              `json:"name" validate:"required,min=1,max=255"`
	Description *string             `json:"description,omitempty"`
	IsDefault   bool                `json:"is_default"`
	Steps       []CreateStepRequest `json:"steps" validate:"required,min=1,dive"`
}

// CreateStepRequest represents one step in a workflow create/update request
type CreateStepRequest struct {
	Channel     Channel   `json:"channel" validate:"required,oneof=email line sms"`
	TemplateID  uuid.UUID `json:"template_id" validate:"required"`
	DaysAfter   int       `json:"days_after" validate:"gte=0"`
	TimeOfDay   string    `json:"time_of_day" validate:"required,hhmm"`
	IsImmediate bool      `json:"is_immediate"`
}

// UpdateWorkflowRequest represents the request to update a workflow
type UpdateWorkflowRequest struct {
	Name        *string             `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string             `json:"description,omitempty"`
	IsDefault   *bool               `json:"is_default,omitempty"`
	Steps       []CreateStepRequest `json:"steps,omitempty" validate:"omitempty,min=1,dive"`
}

// WorkflowListResponse represents a paginated list of workflows
type WorkflowListResponse struct {
	Workflows []Workflow `json:"workflows"`
	Total     int64      `json:"total"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}
