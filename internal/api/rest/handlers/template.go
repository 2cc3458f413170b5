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

// TemplateHandler handles message template HTTP requests
type TemplateHandler struct {
	logger  *logger.Logger
	service *services.TemplateService
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(log *logger.Logger, service *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{logger: log, service: service}
}

// Create creates a new message template
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	organizationID := middleware.GetOrganizationID(r.Context())

	template, err := h.service.CreateTemplate(r.Context(), organizationID, &req)
	if err != nil {
		h.logger.Error("Failed to create template", logger.Err(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, template)
}

// Get retrieves a template by ID
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid template ID")
		return
	}

	organizationID := middleware.GetOrganizationID(r.Context())

	template, err := h.service.GetTemplate(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if template.OrganizationID != organizationID {
		respondError(w, http.StatusNotFound, "template not found")
		return
	}

	respondJSON(w, http.StatusOK, template)
}

// List retrieves templates with pagination
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	organizationID := middleware.GetOrganizationID(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	templates, total, err := h.service.ListTemplates(r.Context(), organizationID, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list templates", logger.Err(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"templates": templates,
		"total":     total,
	})
}

// Update updates a template
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid template ID")
		return
	}

	var req models.UpdateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	organizationID := middleware.GetOrganizationID(r.Context())

	template, err := h.service.UpdateTemplate(r.Context(), organizationID, id, &req)
	if err != nil {
		h.logger.Error("Failed to update template", logger.Err(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, template)
}

// Delete deletes a template
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid template ID")
		return
	}

	organizationID := middleware.GetOrganizationID(r.Context())

	if err := h.service.DeleteTemplate(r.Context(), organizationID, id); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
