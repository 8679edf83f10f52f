package repository

import (
	"context"
	"fmt"

	"github.com/otakushelf/otakushelf/internal/domain"
)

// AddWatchEvent records one user action on an anime.
func (r *Repository) AddWatchEvent(ctx context.Context, userID, animeID int64, action domain.Action) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO watch_events (user_id, anime_id, action, created_at)
		 VALUES ($1, $2, $3, NOW())`,
		userID, animeID, string(action),
	)
	if err != nil {
		return fmt.Errorf("insert watch event user=%d anime=%d: %w", userID, animeID, err)
	}
	return nil
}

// GetCompletedIDs returns the anime ids a user has finished; those are
// excluded from recommendation candidates.
func (r *Repository) GetCompletedIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT anime_id FROM watch_events
		 WHERE user_id = $1 AND action = $2`,
		userID, string(domain.ActionCompleted),
	)
	if err != nil {
		return nil, fmt.Errorf("query completed ids for user %d: %w", userID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan anime id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed ids: %w", err)
	}
	return ids, nil
}

// GetWatchHistory returns a user's most recent events, newest first.
func (r *Repository) GetWatchHistory(ctx context.Context, userID int64, limit int) ([]domain.WatchEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT anime_id, action, created_at
		 FROM watch_events
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get watch history for user %d: %w", userID, err)
	}
	defer rows.Close()

	var items []domain.WatchEvent
	for rows.Next() {
		var item domain.WatchEvent
		var action string
		if err := rows.Scan(&item.AnimeID, &action, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan watch event: %w", err)
		}
		item.Action = domain.Action(action)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over watch events: %w", err)
	}

	return items, nil
}
