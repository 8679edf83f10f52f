package domain

import "time"

// WatchEvent is a single recorded action on an anime.
type WatchEvent struct {
	AnimeID   int64     `json:"anime_id"`
	Action    Action    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// History is the slice of a user's watch history the recommender needs:
// completed ids are excluded from candidates, and the last detected intent
// feeds the classifier's continuation bonus.
type History struct {
	Completed  []int64 `json:"completed"`
	LastIntent Intent  `json:"last_intent,omitempty"`
}
