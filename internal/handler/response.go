package handler

import "github.com/otakushelf/otakushelf/internal/domain"

type RecommendationResponse struct {
	UserID          int64                     `json:"user_id"`
	Recommendations []domain.RankedAnime      `json:"recommendations"`
	Intent          domain.Intent             `json:"intent"`
	Metadata        domain.RecommendationMeta `json:"metadata"`
}

type ChatRequest struct {
	UserID   int64  `json:"user_id"`
	Message  string `json:"message"`
	Feedback string `json:"feedback,omitempty"` // reaction to the previous reply
}

type ActionRequest struct {
	AnimeID int64    `json:"anime_id"`
	Action  string   `json:"action"`
	Genres  []string `json:"genres,omitempty"`
}

type ImportResponse struct {
	JobID string `json:"job_id"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
