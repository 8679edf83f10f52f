package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/otakushelf/otakushelf/internal/domain"
)

const maxMessageLength = 2000

// POST /api/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "user_id is required")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" || len(req.Message) > maxMessageLength {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "message must be 1-2000 characters")
		return
	}
	if req.Feedback != "" && req.Feedback != "positive" && req.Feedback != "negative" {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "feedback must be positive or negative")
		return
	}

	result, err := h.service.Chat(r.Context(), req.UserID, req.Message, req.Feedback)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found", "User does not exist")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
