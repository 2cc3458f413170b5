package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageTemplate represents an operator-authored message body with
// placeholder tokens, referenced by workflow steps.
type MessageTemplate struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Subject        *string   `json:"subject,omitempty" db:"subject"`
	Body           string    `json:"body" db:"body"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// CreateTemplateRequest represents the request to create a message template
type CreateTemplateRequest struct {
	Name    string  `json:"name" validate:"required,min=1,max=255"`
	Subject *string `json:"subject,omitempty"`
	Body    string  `json:"body" validate:"required"`
}

// UpdateTemplateRequest represents the request to update a message template
type UpdateTemplateRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Subject *string `json:"subject,omitempty"`
	Body    *string `json:"body,omitempty"`
}
