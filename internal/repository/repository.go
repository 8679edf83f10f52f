package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Repository gives query access to the relational side of the service:
// users, the anime catalog mirror and watch events.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}
