package handler

import (
	"log/slog"
	"net/http"

	"proposalforge/internal/domain/services"
	"proposalforge/internal/httputil"
)

// GenerationHandler handles AI generation HTTP requests
type GenerationHandler struct {
	generation services.GenerationService
	logger     *slog.Logger
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(generation services.GenerationService, logger *slog.Logger) *GenerationHandler {
	return &GenerationHandler{generation: generation, logger: logger}
}

// Generate drafts or regenerates a section with assembled context
// POST /api/proposals/{id}/sections/{key}/generate
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")
	sectionKey := r.PathValue("key")
	if proposalID == "" || sectionKey == "" {
		httputil.RespondError(w, http.StatusBadRequest, "proposal ID and section key are required")
		return
	}

	var req services.GenerateSectionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ProposalID = proposalID
	req.SectionKey = sectionKey
	req.RequestedBy = httputil.GetUserID(r)

	result, err := h.generation.Generate(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
