package domain

// RankedAnime is an anime candidate with its adaptive score attached.
type RankedAnime struct {
	Anime
	AdaptiveScore float64 `json:"adaptive_score"`
}

// RecommendationResult is recomputed per request and never persisted.
type RecommendationResult struct {
	Recommendations []RankedAnime `json:"recommendations"`
	Intent          Intent        `json:"intent"`
	Reasoning       string        `json:"reasoning"`
	Confidence      float64       `json:"confidence"`
	CacheHit        bool          `json:"-"`
}

type RecommendationMeta struct {
	CacheHit    bool   `json:"cache_hit"`
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
}
