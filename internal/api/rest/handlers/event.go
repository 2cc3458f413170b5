package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/services"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/validator"
)

// EventHandler ingests customer events that stop running workflows
type EventHandler struct {
	logger   *logger.Logger
	autoStop *services.AutoStopService
}

// NewEventHandler creates a new event handler
func NewEventHandler(log *logger.Logger, autoStop *services.AutoStopService) *EventHandler {
	return &EventHandler{logger: log, autoStop: autoStop}
}

// Trigger records an inbound customer event (reply, LINE friend add, visit,
// call) and stops any running workflow for that customer. Posting an event
// for a customer with no running run succeeds with stopped=0.
func (h *EventHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req models.TriggerEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	stopped, err := h.autoStop.OnTrigger(r.Context(), req.CustomerID, req.Type)
	if err != nil {
		h.logger.Error("Failed to process trigger event",
			logger.String("customer_id", req.CustomerID.String()),
			logger.String("type", string(req.Type)),
			logger.Err(err),
		)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"stopped": stopped})
}
