package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/services"
)

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateWorkflowFile validates a workflow definition from a file
func ValidateWorkflowFile(filename string) (*ValidationResult, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var req models.CreateWorkflowRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []string{fmt.Sprintf("Invalid JSON: %v", err)},
		}, nil
	}

	return ValidateWorkflowRequest(&req), nil
}

// ValidateWorkflowRequest validates a workflow create request offline.
// Template ownership can only be checked server-side.
func ValidateWorkflowRequest(req *models.CreateWorkflowRequest) *ValidationResult {
	result := &ValidationResult{Valid: true, Errors: []string{}}

	fail := func(format string, args ...interface{}) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
	}

	if req.Name == "" {
		fail("name is required")
	}

	if len(req.Steps) == 0 {
		fail("at least one step is required")
	}

	validChannels := map[models.Channel]bool{
		models.ChannelEmail: true,
		models.ChannelLine:  true,
		models.ChannelSMS:   true,
	}

	for i, step := range req.Steps {
		if !validChannels[step.Channel] {
			fail("step[%d] has invalid channel: %s", i, step.Channel)
		}
		if step.TemplateID == uuid.Nil {
			fail("step[%d].template_id is required", i)
		}
		if step.DaysAfter < 0 {
			fail("step[%d].days_after must not be negative", i)
		}
		if _, _, err := services.ParseTimeOfDay(step.TimeOfDay); err != nil {
			fail("step[%d].time_of_day: %v", i, err)
		}
	}

	return result
}

// LoadWorkflowFromFile loads a workflow create request from a JSON file
func LoadWorkflowFromFile(filename string) (*models.CreateWorkflowRequest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var req models.CreateWorkflowRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse workflow: %w", err)
	}

	return &req, nil
}

// SaveWorkflowToFile saves a workflow create request to a JSON file
func SaveWorkflowToFile(req *models.CreateWorkflowRequest, filename string) error {
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
