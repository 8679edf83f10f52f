package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/otakushelf/otakushelf/internal/domain"
)

// POST /users/{userID}/actions
func (h *Handler) RecordAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}
	if req.AnimeID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "anime_id is required")
		return
	}

	err := h.service.RecordAction(r.Context(), userID, req.AnimeID, domain.Action(req.Action), req.Genres)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAction) {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Unknown action")
			return
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found", "User does not exist")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}
