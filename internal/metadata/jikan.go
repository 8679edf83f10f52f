package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/otakushelf/otakushelf/internal/domain"
)

const DefaultJikanURL = "https://api.jikan.moe/v4"

// Jikan filters by MAL genre id, not name.
var jikanGenreIDs = map[string]int{
	"Action":        1,
	"Adventure":     2,
	"Comedy":        4,
	"Drama":         8,
	"Fantasy":       10,
	"Horror":        14,
	"Mecha":         18,
	"Music":         19,
	"Mystery":       7,
	"Psychological": 40,
	"Romance":       22,
	"Sci-Fi":        24,
	"Slice of Life": 36,
	"Sports":        30,
	"Supernatural":  37,
	"Thriller":      41,
}

// JikanClient queries the Jikan (unofficial MyAnimeList) REST API.
type JikanClient struct {
	baseURL string
	http    *http.Client
}

func NewJikanClient(baseURL string) *JikanClient {
	if baseURL == "" {
		baseURL = DefaultJikanURL
	}
	return &JikanClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type jikanResponse struct {
	Data []struct {
		MalID  int64  `json:"mal_id"`
		Title  string `json:"title"`
		Genres []struct {
			Name string `json:"name"`
		} `json:"genres"`
		Score    float64 `json:"score"`
		Episodes int     `json:"episodes"`
		Year     int     `json:"year"`
		Type     string  `json:"type"`
	} `json:"data"`
}

// SearchByGenres fetches up to count anime for the genres Jikan knows;
// unmapped genre names are skipped.
func (c *JikanClient) SearchByGenres(ctx context.Context, genres []string, count int) ([]domain.Anime, error) {
	var ids []string
	for _, g := range genres {
		if id, ok := jikanGenreIDs[g]; ok {
			ids = append(ids, strconv.Itoa(id))
		}
	}

	params := url.Values{}
	if len(ids) > 0 {
		params.Set("genres", strings.Join(ids, ","))
	}
	params.Set("limit", strconv.Itoa(count))
	params.Set("order_by", "score")
	params.Set("sort", "desc")

	reqURL := fmt.Sprintf("%s/anime?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build jikan request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jikan request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jikan returned status %d", resp.StatusCode)
	}

	var decoded jikanResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode jikan response: %w", err)
	}

	anime := make([]domain.Anime, 0, len(decoded.Data))
	for _, d := range decoded.Data {
		names := make([]string, 0, len(d.Genres))
		for _, g := range d.Genres {
			names = append(names, g.Name)
		}
		anime = append(anime, domain.Anime{
			ID:           d.MalID,
			Title:        d.Title,
			Genres:       names,
			AverageScore: int(d.Score * 10), // Jikan scores are 0-10
			Episodes:     d.Episodes,
			SeasonYear:   d.Year,
			Format:       d.Type,
			Source:       "jikan",
		})
	}
	return anime, nil
}
