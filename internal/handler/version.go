package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"proposalforge/internal/domain/services"
	"proposalforge/internal/httputil"
)

// VersionHandler handles version ledger HTTP requests
type VersionHandler struct {
	versions services.VersionService
	logger   *slog.Logger
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(versions services.VersionService, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{versions: versions, logger: logger}
}

// ListVersions returns a section's full history, newest first
// GET /api/sections/{id}/versions
func (h *VersionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	sectionID := r.PathValue("id")
	if sectionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "section ID is required")
		return
	}

	versions, err := h.versions.ListVersions(r.Context(), sectionID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, versions)
}

// RestoreVersion writes an older version's content back as the current
// snapshot and records the restoration in the ledger
// POST /api/sections/{id}/versions/{number}/restore
func (h *VersionHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	sectionID := r.PathValue("id")
	if sectionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "section ID is required")
		return
	}

	versionNumber, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || versionNumber < 1 {
		httputil.RespondError(w, http.StatusBadRequest, "version number must be a positive integer")
		return
	}

	section, err := h.versions.RestoreVersion(r.Context(), sectionID, versionNumber, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, section)
}
