package domain

// Anime is the normalized metadata record used across the service.
// Provider-specific shapes (AniList, Jikan) are decoded into this type once,
// at the metadata client boundary.
type Anime struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Genres       []string `json:"genres"`
	AverageScore int      `json:"average_score"` // 0-100
	Episodes     int      `json:"episodes"`
	SeasonYear   int      `json:"season_year"`
	Format       string   `json:"format,omitempty"`
	Source       string   `json:"source,omitempty"` // anilist, jikan or library
}
