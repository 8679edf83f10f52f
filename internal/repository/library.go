package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/otakushelf/otakushelf/internal/domain"
)

// GetAnimeByGenres returns catalog entries overlapping any of the given
// genres, best-rated first. Serves as the offline fallback when both
// metadata providers are unreachable.
func (r *Repository) GetAnimeByGenres(ctx context.Context, genres []string, limit int) ([]domain.Anime, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, genres, average_score, episodes, season_year
		 FROM anime
		 WHERE genres && $1
		 ORDER BY average_score DESC
		 LIMIT $2`, genres, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query anime by genres %v: %w", genres, err)
	}
	defer rows.Close()

	var items []domain.Anime
	for rows.Next() {
		var a domain.Anime
		if err := rows.Scan(&a.ID, &a.Title, &a.Genres, &a.AverageScore, &a.Episodes, &a.SeasonYear); err != nil {
			return nil, fmt.Errorf("scan anime: %w", err)
		}
		a.Source = "library"
		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over anime: %w", err)
	}
	return items, nil
}

// GetAnimeByID looks up one catalog entry, mainly to resolve genres for
// actions and imports that only carry an id.
func (r *Repository) GetAnimeByID(ctx context.Context, animeID int64) (*domain.Anime, error) {
	a := &domain.Anime{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, genres, average_score, episodes, season_year
		 FROM anime WHERE id = $1`, animeID,
	).Scan(&a.ID, &a.Title, &a.Genres, &a.AverageScore, &a.Episodes, &a.SeasonYear)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAnimeNotFound
		}
		return nil, fmt.Errorf("query anime id=%d: %w", animeID, err)
	}
	a.Source = "library"
	return a, nil
}

// UpsertAnime mirrors a fetched record into the local catalog.
func (r *Repository) UpsertAnime(ctx context.Context, a domain.Anime) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO anime (id, title, genres, average_score, episodes, season_year)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			genres = EXCLUDED.genres,
			average_score = EXCLUDED.average_score,
			episodes = EXCLUDED.episodes,
			season_year = EXCLUDED.season_year`,
		a.ID, a.Title, a.Genres, a.AverageScore, a.Episodes, a.SeasonYear,
	)
	if err != nil {
		return fmt.Errorf("upsert anime id=%d: %w", a.ID, err)
	}
	return nil
}
