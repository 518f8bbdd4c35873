package handler

import (
	"log/slog"
	"net/http"

	"proposalforge/internal/domain/services"
	"proposalforge/internal/httputil"
)

// SectionHandler handles section store HTTP requests
type SectionHandler struct {
	sections services.SectionService
	logger   *slog.Logger
}

// NewSectionHandler creates a new section handler
func NewSectionHandler(sections services.SectionService, logger *slog.Logger) *SectionHandler {
	return &SectionHandler{sections: sections, logger: logger}
}

// ListSections returns all sections of a proposal in display order
// GET /api/proposals/{id}/sections
func (h *SectionHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")
	if proposalID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "proposal ID is required")
		return
	}

	sections, err := h.sections.ListSections(r.Context(), proposalID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sections)
}

// GetSection returns one section's current snapshot
// GET /api/proposals/{id}/sections/{key}
func (h *SectionHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")
	sectionKey := r.PathValue("key")
	if proposalID == "" || sectionKey == "" {
		httputil.RespondError(w, http.StatusBadRequest, "proposal ID and section key are required")
		return
	}

	section, err := h.sections.GetSection(r.Context(), proposalID, sectionKey)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, section)
}

// SaveSection persists a manual content save and appends a ledger entry
// PUT /api/proposals/{id}/sections/{key}
func (h *SectionHandler) SaveSection(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")
	sectionKey := r.PathValue("key")
	if proposalID == "" || sectionKey == "" {
		httputil.RespondError(w, http.StatusBadRequest, "proposal ID and section key are required")
		return
	}

	var req services.SaveSectionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ProposalID = proposalID
	req.SectionKey = sectionKey
	req.Author = httputil.GetUserID(r)
	req.AutoSave = false

	section, err := h.sections.SaveSection(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, section)
}

// MarkForReview flags a section for reviewer attention
// POST /api/proposals/{id}/sections/{key}/review
func (h *SectionHandler) MarkForReview(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")
	sectionKey := r.PathValue("key")
	if proposalID == "" || sectionKey == "" {
		httputil.RespondError(w, http.StatusBadRequest, "proposal ID and section key are required")
		return
	}

	section, err := h.sections.MarkForReview(r.Context(), &services.MarkForReviewRequest{
		ProposalID: proposalID,
		SectionKey: sectionKey,
		MarkedBy:   httputil.GetUserID(r),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, section)
}
