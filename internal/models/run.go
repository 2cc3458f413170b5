package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the status of a workflow run
type RunStatus string

const (
	RunStatusRunning          RunStatus = "running"
	RunStatusCompleted        RunStatus = "completed"
	RunStatusStoppedByReply   RunStatus = "stopped_by_reply"
	RunStatusStoppedByLineAdd RunStatus = "stopped_by_line_add"
	RunStatusStoppedByVisit   RunStatus = "stopped_by_visit"
	RunStatusStoppedByCall    RunStatus = "stopped_by_call"
	RunStatusStopped          RunStatus = "stopped"
)

// IsTerminal reports whether the status permits no further mutation of
// current_step_index or next_run_at.
func (s RunStatus) IsTerminal() bool {
	return s != RunStatusRunning
}

// StopTrigger represents an external event that stops a running workflow
type StopTrigger string

const (
	TriggerReply   StopTrigger = "reply"
	TriggerLineAdd StopTrigger = "line_add"
	TriggerVisit   StopTrigger = "visit"
	TriggerCall    StopTrigger = "call"
	TriggerManual  StopTrigger = "manual"
)

// StopReasonReplaced is recorded when a run is stopped because a new workflow
// was started for the same customer.
const StopReasonReplaced = "replaced by new workflow"

// StatusForTrigger maps an auto-stop trigger to its terminal run status.
func StatusForTrigger(t StopTrigger) RunStatus {
	switch t {
	case TriggerReply:
		return RunStatusStoppedByReply
	case TriggerLineAdd:
		return RunStatusStoppedByLineAdd
	case TriggerVisit:
		return RunStatusStoppedByVisit
	case TriggerCall:
		return RunStatusStoppedByCall
	default:
		return RunStatusStopped
	}
}

// WorkflowRun represents one activation of a workflow against one customer.
// At most one running run exists per customer. It is never deleted; terminal
// runs are retained as history.
type WorkflowRun struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	CustomerID       uuid.UUID  `json:"customer_id" db:"customer_id"`
	WorkflowID       uuid.UUID  `json:"workflow_id" db:"workflow_id"`
	Status           RunStatus  `json:"status" db:"status"`
	StartedAt        time.Time  `json:"started_at" db:"started_at"`
	CurrentStepIndex int        `json:"current_step_index" db:"current_step_index"`
	NextRunAt        *time.Time `json:"next_run_at,omitempty" db:"next_run_at"`
	StoppedAt        *time.Time `json:"stopped_at,omitempty" db:"stopped_at"`
	StopReason       *string    `json:"stop_reason,omitempty" db:"stop_reason"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// StepRunStatus represents the status of one step execution record
type StepRunStatus string

const (
	StepRunStatusPending   StepRunStatus = "pending"
	StepRunStatusSent      StepRunStatus = "sent"
	StepRunStatusFailed    StepRunStatus = "failed"
	StepRunStatusSkipped   StepRunStatus = "skipped"
	StepRunStatusCancelled StepRunStatus = "cancelled"
)

// StepRun is the append-only audit record for one scheduled step of a run.
// A pending record is created when the step is scheduled; execution sets the
// outcome fields exactly once. Auto-stop marks still-pending records cancelled.
type StepRun struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	RunID        uuid.UUID     `json:"run_id" db:"run_id"`
	StepIndex    int           `json:"step_index" db:"step_index"`
	Channel      Channel       `json:"channel" db:"channel"`
	Status       StepRunStatus `json:"status" db:"status"`
	ScheduledFor time.Time     `json:"scheduled_for" db:"scheduled_for"`
	ExecutedAt   *time.Time    `json:"executed_at,omitempty" db:"executed_at"`
	Subject      *string       `json:"subject,omitempty" db:"subject"`
	Body         *string       `json:"body,omitempty" db:"body"`
	ErrorMessage *string       `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

// StartRunRequest represents the request to start a workflow for a customer
type StartRunRequest struct {
	WorkflowID uuid.UUID `json:"workflow_id" validate:"required"`
}

// TriggerEventRequest represents an inbound customer event consumed by the
// auto-stop evaluator (reply webhook, LINE follow, visit completion, call log).
type TriggerEventRequest struct {
	CustomerID uuid.UUID   `json:"customer_id" validate:"required"`
	Type       StopTrigger `json:"type" validate:"required,oneof=reply line_add visit call manual"`
}

// RunListResponse represents a paginated list of runs
type RunListResponse struct {
	Runs     []WorkflowRun `json:"runs"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// RunTraceResponse represents a run together with its step audit trail
type RunTraceResponse struct {
	Run      *WorkflowRun `json:"run"`
	StepRuns []StepRun    `json:"step_runs"`
	Workflow *Workflow    `json:"workflow,omitempty"`
}

// SweepResult reports the outcome of one dispatcher sweep
type SweepResult struct {
	Due       int `json:"due"`
	Processed int `json:"processed"`
}
