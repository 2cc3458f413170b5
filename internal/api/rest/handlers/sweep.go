package handlers

import (
	"net/http"
	"time"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/services"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
)

// SweepHandler exposes the dispatcher and idle sweeps to an external cron
// caller. Both endpoints sit behind the dispatch secret middleware.
type SweepHandler struct {
	logger   *logger.Logger
	dispatch *services.DispatchService
	idle     *services.IdleService
}

// NewSweepHandler creates a new sweep handler
func NewSweepHandler(log *logger.Logger, dispatch *services.DispatchService, idle *services.IdleService) *SweepHandler {
	return &SweepHandler{logger: log, dispatch: dispatch, idle: idle}
}

// Dispatch runs one dispatcher sweep over all due runs
func (h *SweepHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	result, err := h.dispatch.Sweep(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("Dispatch sweep failed", logger.Err(err))
		respondError(w, http.StatusInternalServerError, "Sweep failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// IdleSweep flags customers who have gone quiet past the idle threshold
func (h *SweepHandler) IdleSweep(w http.ResponseWriter, r *http.Request) {
	flagged, err := h.idle.SweepIdle(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("Idle sweep failed", logger.Err(err))
		respondError(w, http.StatusInternalServerError, "Sweep failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"flagged": flagged})
}
