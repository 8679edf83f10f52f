package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/otakushelf/otakushelf/internal/domain"
)

const maxImportSize = 10 << 20 // 10 MiB

// POST /users/{userID}/import
func (h *Handler) ImportMAL(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxImportSize)
	jobID, err := h.service.StartImport(r.Context(), userID, body)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found", "User does not exist")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_export", "Could not parse MyAnimeList export")
		return
	}

	writeJSON(w, http.StatusAccepted, ImportResponse{JobID: jobID})
}

// GET /ws/import/{jobID}
func (h *Handler) ImportProgress(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if _, err := uuid.Parse(jobID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid job_id parameter")
		return
	}
	h.hub.Serve(w, r, jobID)
}
