package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
)

// Client is a thin HTTP client for the outreach API, used by the CLI.
type Client struct {
	baseURL        string
	organizationID string
	dispatchSecret string
	httpClient     *http.Client
}

func NewClient(baseURL, organizationID, dispatchSecret string) *Client {
	return &Client{
		baseURL:        baseURL,
		organizationID: organizationID,
		dispatchSecret: dispatchSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.organizationID != "" {
		req.Header.Set("X-Organization-ID", c.organizationID)
	}
	if c.dispatchSecret != "" {
		req.Header.Set("X-Dispatch-Secret", c.dispatchSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	return resp, nil
}

func decodeOrError(resp *http.Response, wantStatus int, action string, out interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to %s: %s (status: %d)", action, string(body), resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// CreateWorkflow creates a new workflow definition
func (c *Client) CreateWorkflow(req *models.CreateWorkflowRequest) (*models.Workflow, error) {
	resp, err := c.doRequest("POST", "/api/v1/workflows", req)
	if err != nil {
		return nil, err
	}

	var result models.Workflow
	if err := decodeOrError(resp, http.StatusCreated, "create workflow", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetWorkflows retrieves workflow definitions
func (c *Client) GetWorkflows() (*models.WorkflowListResponse, error) {
	resp, err := c.doRequest("GET", "/api/v1/workflows", nil)
	if err != nil {
		return nil, err
	}

	var result models.WorkflowListResponse
	if err := decodeOrError(resp, http.StatusOK, "list workflows", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetWorkflow retrieves a workflow by ID
func (c *Client) GetWorkflow(id string) (*models.Workflow, error) {
	resp, err := c.doRequest("GET", "/api/v1/workflows/"+id, nil)
	if err != nil {
		return nil, err
	}

	var result models.Workflow
	if err := decodeOrError(resp, http.StatusOK, "get workflow", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateWorkflow updates an existing workflow definition
func (c *Client) UpdateWorkflow(id string, req *models.UpdateWorkflowRequest) (*models.Workflow, error) {
	resp, err := c.doRequest("PUT", "/api/v1/workflows/"+id, req)
	if err != nil {
		return nil, err
	}

	var result models.Workflow
	if err := decodeOrError(resp, http.StatusOK, "update workflow", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTemplates retrieves message templates
func (c *Client) GetTemplates() ([]models.MessageTemplate, error) {
	resp, err := c.doRequest("GET", "/api/v1/templates", nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Templates []models.MessageTemplate `json:"templates"`
		Total     int64                    `json:"total"`
	}
	if err := decodeOrError(resp, http.StatusOK, "list templates", &result); err != nil {
		return nil, err
	}
	return result.Templates, nil
}

// CreateTemplate creates a message template
func (c *Client) CreateTemplate(req *models.CreateTemplateRequest) (*models.MessageTemplate, error) {
	resp, err := c.doRequest("POST", "/api/v1/templates", req)
	if err != nil {
		return nil, err
	}

	var result models.MessageTemplate
	if err := decodeOrError(resp, http.StatusCreated, "create template", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StartRun starts a workflow run for a customer
func (c *Client) StartRun(customerID string, req *models.StartRunRequest) (*models.WorkflowRun, error) {
	resp, err := c.doRequest("POST", "/api/v1/customers/"+customerID+"/runs", req)
	if err != nil {
		return nil, err
	}

	var result models.WorkflowRun
	if err := decodeOrError(resp, http.StatusCreated, "start run", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StopRun manually stops a run
func (c *Client) StopRun(id string) error {
	resp, err := c.doRequest("POST", "/api/v1/runs/"+id+"/stop", nil)
	if err != nil {
		return err
	}
	return decodeOrError(resp, http.StatusOK, "stop run", nil)
}

// GetRuns retrieves runs, optionally filtered by customer or status
func (c *Client) GetRuns(customerID, status string) (*models.RunListResponse, error) {
	path := "/api/v1/runs"
	sep := "?"
	if customerID != "" {
		path += sep + "customer_id=" + customerID
		sep = "&"
	}
	if status != "" {
		path += sep + "status=" + status
	}

	resp, err := c.doRequest("GET", path, nil)
	if err != nil {
		return nil, err
	}

	var result models.RunListResponse
	if err := decodeOrError(resp, http.StatusOK, "list runs", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRunTrace retrieves a run with its step audit trail
func (c *Client) GetRunTrace(id string) (*models.RunTraceResponse, error) {
	resp, err := c.doRequest("GET", "/api/v1/runs/"+id, nil)
	if err != nil {
		return nil, err
	}

	var result models.RunTraceResponse
	if err := decodeOrError(resp, http.StatusOK, "get run trace", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TriggerEvent posts a customer event (reply, line_add, visit, call)
func (c *Client) TriggerEvent(req *models.TriggerEventRequest) (int, error) {
	resp, err := c.doRequest("POST", "/api/v1/events", req)
	if err != nil {
		return 0, err
	}

	var result struct {
		Stopped int `json:"stopped"`
	}
	if err := decodeOrError(resp, http.StatusOK, "trigger event", &result); err != nil {
		return 0, err
	}
	return result.Stopped, nil
}

// TriggerDispatch invokes one dispatcher sweep
func (c *Client) TriggerDispatch() (*models.SweepResult, error) {
	resp, err := c.doRequest("POST", "/internal/dispatch", nil)
	if err != nil {
		return nil, err
	}

	var result models.SweepResult
	if err := decodeOrError(resp, http.StatusOK, "trigger dispatch sweep", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TriggerIdleSweep invokes one idle-customer sweep
func (c *Client) TriggerIdleSweep() (int, error) {
	resp, err := c.doRequest("POST", "/internal/idle-sweep", nil)
	if err != nil {
		return 0, err
	}

	var result struct {
		Flagged int `json:"flagged"`
	}
	if err := decodeOrError(resp, http.StatusOK, "trigger idle sweep", &result); err != nil {
		return 0, err
	}
	return result.Flagged, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck() error {
	resp, err := c.doRequest("GET", "/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API is not healthy (status: %d)", resp.StatusCode)
	}

	return nil
}
