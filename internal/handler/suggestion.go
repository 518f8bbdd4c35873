package handler

import (
	"log/slog"
	"net/http"

	"proposalforge/internal/domain/services"
	"proposalforge/internal/httputil"
)

// SuggestionHandler handles reuse suggestion HTTP requests
type SuggestionHandler struct {
	reuse  services.ReuseService
	logger *slog.Logger
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(reuse services.ReuseService, logger *slog.Logger) *SuggestionHandler {
	return &SuggestionHandler{reuse: reuse, logger: logger}
}

// RankSuggestions runs the reuse ranker for a target section
// POST /api/proposals/{id}/sections/{key}/suggestions
func (h *SuggestionHandler) RankSuggestions(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")
	sectionKey := r.PathValue("key")
	if proposalID == "" || sectionKey == "" {
		httputil.RespondError(w, http.StatusBadRequest, "proposal ID and section key are required")
		return
	}

	suggestions, err := h.reuse.RankSuggestions(r.Context(), proposalID, sectionKey)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, suggestions)
}

// ListSuggestions returns the visible suggestions for a target section
// GET /api/proposals/{id}/sections/{key}/suggestions
func (h *SuggestionHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")
	sectionKey := r.PathValue("key")
	if proposalID == "" || sectionKey == "" {
		httputil.RespondError(w, http.StatusBadRequest, "proposal ID and section key are required")
		return
	}

	suggestions, err := h.reuse.ListSuggestions(r.Context(), proposalID, sectionKey)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, suggestions)
}

// AcceptSuggestion adopts a suggestion's source content into the target
// POST /api/suggestions/{id}/accept
func (h *SuggestionHandler) AcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	suggestionID := r.PathValue("id")
	if suggestionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "suggestion ID is required")
		return
	}

	section, err := h.reuse.AcceptSuggestion(r.Context(), suggestionID, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, section)
}

type rejectSuggestionRequest struct {
	Feedback string `json:"feedback"`
}

// RejectSuggestion records a terminal rejection, optionally with feedback
// POST /api/suggestions/{id}/reject
func (h *SuggestionHandler) RejectSuggestion(w http.ResponseWriter, r *http.Request) {
	suggestionID := r.PathValue("id")
	if suggestionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "suggestion ID is required")
		return
	}

	var req rejectSuggestionRequest
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if err := h.reuse.RejectSuggestion(r.Context(), suggestionID, req.Feedback); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
