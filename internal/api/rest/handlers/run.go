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

// RunHandler handles workflow run HTTP requests
type RunHandler struct {
	logger  *logger.Logger
	service *services.RunService
}

// NewRunHandler creates a new run handler
func NewRunHandler(log *logger.Logger, service *services.RunService) *RunHandler {
	return &RunHandler{logger: log, service: service}
}

// Start activates a workflow for a customer. If the first step is immediate
// its send is attempted before this request returns.
func (h *RunHandler) Start(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(chi.URLParam(r, "customerID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	var req models.StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	organizationID := middleware.GetOrganizationID(r.Context())

	run, err := h.service.StartWorkflow(r.Context(), organizationID, customerID, req.WorkflowID)
	if err != nil {
		h.logger.Error("Failed to start workflow run",
			logger.String("customer_id", customerID.String()),
			logger.Err(err),
		)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, run)
}

// Stop manually stops a run. Stopping an already-terminal run succeeds
// without changing it.
func (h *RunHandler) Stop(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid run ID")
		return
	}

	organizationID := middleware.GetOrganizationID(r.Context())

	if err := h.service.StopRun(r.Context(), organizationID, runID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Run stopped"})
}

// GetTrace retrieves a run with its step audit trail
func (h *RunHandler) GetTrace(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid run ID")
		return
	}

	organizationID := middleware.GetOrganizationID(r.Context())

	trace, err := h.service.GetRunTrace(r.Context(), organizationID, runID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, trace)
}

// List retrieves runs with optional customer and status filters
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	var customerID *uuid.UUID
	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid customer_id filter")
			return
		}
		customerID = &id
	}

	var status *models.RunStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.RunStatus(raw)
		status = &s
	}

	response, err := h.service.ListRuns(r.Context(), customerID, status, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list runs", logger.Err(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, response)
}
