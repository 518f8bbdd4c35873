package handler

import (
	"log/slog"
	"net/http"

	"proposalforge/internal/domain/repositories"
	"proposalforge/internal/httputil"
)

// BufferHandler exposes the draft buffer the editing surface writes into.
// The auto-save reconciler drains it in the background.
type BufferHandler struct {
	buffers repositories.DraftBufferStore
	logger  *slog.Logger
}

// NewBufferHandler creates a new draft buffer handler
func NewBufferHandler(buffers repositories.DraftBufferStore, logger *slog.Logger) *BufferHandler {
	return &BufferHandler{buffers: buffers, logger: logger}
}

type putBufferRequest struct {
	Content string `json:"content"`
}

// PutBuffer stores buffered editor content for a section key
// PUT /api/proposals/{id}/buffer/{key}
func (h *BufferHandler) PutBuffer(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")
	sectionKey := r.PathValue("key")
	if proposalID == "" || sectionKey == "" {
		httputil.RespondError(w, http.StatusBadRequest, "proposal ID and section key are required")
		return
	}

	var req putBufferRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.buffers.Put(r.Context(), proposalID, sectionKey, req.Content); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetBuffer returns the current buffer map for a proposal
// GET /api/proposals/{id}/buffer
func (h *BufferHandler) GetBuffer(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")
	if proposalID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "proposal ID is required")
		return
	}

	snapshot, err := h.buffers.Snapshot(r.Context(), proposalID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snapshot)
}
