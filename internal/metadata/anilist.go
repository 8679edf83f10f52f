package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/otakushelf/otakushelf/internal/domain"
)

const DefaultAniListURL = "https://graphql.anilist.co"

const animeByGenresQuery = `query ($genres: [String], $perPage: Int) {
  Page(perPage: $perPage) {
    media(genre_in: $genres, type: ANIME, sort: SCORE_DESC) {
      id
      title { romaji english }
      genres
      averageScore
      episodes
      seasonYear
      format
    }
  }
}`

// AniListClient queries the AniList GraphQL API.
type AniListClient struct {
	baseURL string
	http    *http.Client
}

func NewAniListClient(baseURL string) *AniListClient {
	if baseURL == "" {
		baseURL = DefaultAniListURL
	}
	return &AniListClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type anilistResponse struct {
	Data struct {
		Page struct {
			Media []struct {
				ID    int64 `json:"id"`
				Title struct {
					Romaji  string `json:"romaji"`
					English string `json:"english"`
				} `json:"title"`
				Genres       []string `json:"genres"`
				AverageScore int      `json:"averageScore"`
				Episodes     int      `json:"episodes"`
				SeasonYear   int      `json:"seasonYear"`
				Format       string   `json:"format"`
			} `json:"media"`
		} `json:"Page"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// SearchByGenres fetches up to count anime matching any of the genres,
// normalized into domain records at this boundary.
func (c *AniListClient) SearchByGenres(ctx context.Context, genres []string, count int) ([]domain.Anime, error) {
	body, err := json.Marshal(graphqlRequest{
		Query: animeByGenresQuery,
		Variables: map[string]any{
			"genres":  genres,
			"perPage": count,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal anilist query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build anilist request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anilist request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anilist returned status %d", resp.StatusCode)
	}

	var decoded anilistResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode anilist response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("anilist error: %s", decoded.Errors[0].Message)
	}

	anime := make([]domain.Anime, 0, len(decoded.Data.Page.Media))
	for _, m := range decoded.Data.Page.Media {
		title := m.Title.English
		if title == "" {
			title = m.Title.Romaji
		}
		anime = append(anime, domain.Anime{
			ID:           m.ID,
			Title:        title,
			Genres:       m.Genres,
			AverageScore: m.AverageScore,
			Episodes:     m.Episodes,
			SeasonYear:   m.SeasonYear,
			Format:       m.Format,
			Source:       "anilist",
		})
	}
	return anime, nil
}
