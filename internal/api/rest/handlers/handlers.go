package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/repository/postgres"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/services"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
)

// Handlers aggregates all HTTP handlers
type Handlers struct {
	Health   *HealthHandler
	Workflow *WorkflowHandler
	Template *TemplateHandler
	Run      *RunHandler
	Event    *EventHandler
	Sweep    *SweepHandler
}

// HealthCheckers holds all health check dependencies
type HealthCheckers struct {
	DB    HealthChecker
	Redis HealthChecker
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	log *logger.Logger,
	workflowService *services.WorkflowService,
	templateService *services.TemplateService,
	runService *services.RunService,
	dispatchService *services.DispatchService,
	autoStopService *services.AutoStopService,
	idleService *services.IdleService,
	healthCheckers *HealthCheckers,
	version string,
) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(log, healthCheckers.DB, healthCheckers.Redis, version),
		Workflow: NewWorkflowHandler(log, workflowService),
		Template: NewTemplateHandler(log, templateService),
		Run:      NewRunHandler(log, runService),
		Event:    NewEventHandler(log, autoStopService),
		Sweep:    NewSweepHandler(log, dispatchService, idleService),
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service-layer errors to HTTP responses
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, postgres.ErrWorkflowNotFound),
		errors.Is(err, postgres.ErrTemplateNotFound),
		errors.Is(err, postgres.ErrCustomerNotFound),
		errors.Is(err, postgres.ErrRunNotFound),
		errors.Is(err, postgres.ErrOrganizationNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrWorkflowInactive),
		errors.Is(err, services.ErrWorkflowEmpty):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
