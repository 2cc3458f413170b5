package postgres

import "errors"

var (
	// ErrOrganizationNotFound is returned when an organization does not exist
	ErrOrganizationNotFound = errors.New("organization not found")

	// ErrCustomerNotFound is returned when a customer does not exist
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrWorkflowNotFound is returned when a workflow does not exist
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrTemplateNotFound is returned when a message template does not exist
	ErrTemplateNotFound = errors.New("template not found")

	// ErrRunNotFound is returned when a workflow run does not exist
	ErrRunNotFound = errors.New("run not found")
)
