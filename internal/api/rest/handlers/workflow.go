package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/api/rest/middleware"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/services"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/validator"
)

// WorkflowHandler handles workflow definition HTTP requests
type WorkflowHandler struct {
	logger  *logger.Logger
	service *services.WorkflowService
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(log *logger.Logger, service *services.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{logger: log, service: service}
}

// Create creates a new workflow
func (h *WorkflowHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	organizationID := middleware.GetOrganizationID(r.Context())

	workflow, err := h.service.CreateWorkflow(r.Context(), organizationID, &req)
	if err != nil {
		h.logger.Error("Failed to create workflow", logger.Err(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, workflow)
}

// Get retrieves a workflow by ID
func (h *WorkflowHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid workflow ID")
		return
	}

	organizationID := middleware.GetOrganizationID(r.Context())

	workflow, err := h.service.GetWorkflow(r.Context(), organizationID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, workflow)
}

// List retrieves workflows with pagination
func (h *WorkflowHandler) List(w http.ResponseWriter, r *http.Request) {
	organizationID := middleware.GetOrganizationID(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	var isActive *bool
	if activeStr := r.URL.Query().Get("is_active"); activeStr != "" {
		if active, err := strconv.ParseBool(activeStr); err == nil {
			isActive = &active
		}
	}

	response, err := h.service.ListWorkflows(r.Context(), organizationID, isActive, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list workflows", logger.Err(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// Update updates a workflow
func (h *WorkflowHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid workflow ID")
		return
	}

	var req models.UpdateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	organizationID := middleware.GetOrganizationID(r.Context())

	workflow, err := h.service.UpdateWorkflow(r.Context(), organizationID, id, &req)
	if err != nil {
		h.logger.Error("Failed to update workflow", logger.Err(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, workflow)
}

// Activate marks a workflow as startable
func (h *WorkflowHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate prevents new runs of a workflow from being started
func (h *WorkflowHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *WorkflowHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid workflow ID")
		return
	}

	organizationID := middleware.GetOrganizationID(r.Context())

	if err := h.service.SetWorkflowActive(r.Context(), organizationID, id, active); err != nil {
		respondServiceError(w, err)
		return
	}

	message := "Workflow deactivated"
	if active {
		message = "Workflow activated"
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

// Delete deletes a workflow
func (h *WorkflowHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid workflow ID")
		return
	}

	organizationID := middleware.GetOrganizationID(r.Context())

	if err := h.service.DeleteWorkflow(r.Context(), organizationID, id); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
