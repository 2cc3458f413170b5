package models

import (
	"time"

	"github.com/google/uuid"
)

// PipelineStatus represents where a customer sits in the sales pipeline
type PipelineStatus string

const (
	PipelineStatusNewInquiry     PipelineStatus = "new_inquiry"
	PipelineStatusInProgress     PipelineStatus = "in_progress"
	PipelineStatusVisitScheduled PipelineStatus = "visit_scheduled"
	PipelineStatusVisitCompleted PipelineStatus = "visit_completed"
	PipelineStatusNoResponse     PipelineStatus = "no_response"
	PipelineStatusClosed         PipelineStatus = "closed"
)

// Customer represents a prospective tenant/buyer tracked by the CRM.
// The outreach engine reads contact fields to select a channel and resolve
// templates, and writes is_need_action/last_active_at as send side effects.
type Customer struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	OrganizationID uuid.UUID      `json:"organization_id" db:"organization_id"`
	Name           string         `json:"name" db:"name"`
	Email          *string        `json:"email,omitempty" db:"email"`
	Phone          *string        `json:"phone,omitempty" db:"phone"`
	LineUserID     *string        `json:"line_user_id,omitempty" db:"line_user_id"`
	AssigneeName   *string        `json:"assignee_name,omitempty" db:"assignee_name"`
	PipelineStatus PipelineStatus `json:"pipeline_status" db:"pipeline_status"`
	IsNeedAction   bool           `json:"is_need_action" db:"is_need_action"`
	LastActiveAt   time.Time      `json:"last_active_at" db:"last_active_at"`

	// First inquiry property, if the customer came in through a listing
	PropertyName *string `json:"property_name,omitempty" db:"property_name"`
	PropertyURL  *string `json:"property_url,omitempty" db:"property_url"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasChannel reports whether the customer satisfies the prerequisite for
// sending on the given channel.
func (c *Customer) HasChannel(ch Channel) bool {
	switch ch {
	case ChannelEmail:
		return c.Email != nil && *c.Email != ""
	case ChannelLine:
		return c.LineUserID != nil && *c.LineUserID != ""
	case ChannelSMS:
		return c.Phone != nil && *c.Phone != ""
	default:
		return false
	}
}
