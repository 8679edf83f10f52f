package handler

import (
	"encoding/json"
	"net/http"

	"github.com/otakushelf/otakushelf/internal/service"
	"github.com/otakushelf/otakushelf/internal/ws"
)

type Handler struct {
	service *service.Service
	hub     *ws.Hub
}

func NewHandler(svc *service.Service, hub *ws.Hub) *Handler {
	return &Handler{service: svc, hub: hub}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}
