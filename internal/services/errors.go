package services

import "errors"

var (
	// ErrWorkflowInactive is returned when starting a workflow whose
	// definition has been deactivated.
	ErrWorkflowInactive = errors.New("workflow is inactive")

	// ErrWorkflowEmpty is returned when starting a workflow with no steps.
	ErrWorkflowEmpty = errors.New("workflow has no steps")
)
