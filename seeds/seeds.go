package seeds

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	rng := rand.New(rand.NewSource(42))

	// Truncate existing data before insert
	log.Println("[seed] truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE watch_events, anime, users RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	log.Println("[seed] inserting users")
	if err := seedUsers(ctx, pool, rng, 20); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	log.Println("[seed] inserting anime")
	if err := seedAnime(ctx, pool, rng); err != nil {
		return fmt.Errorf("seed anime: %w", err)
	}

	log.Println("[seed] inserting watch events")
	if err := seedWatchEvents(ctx, pool, rng, 200); err != nil {
		return fmt.Errorf("seed watch events: %w", err)
	}

	log.Println("[seed] seeding complete")
	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) error {
	rows := []string{}
	args := []any{}

	for i := range n {
		username := fmt.Sprintf("otaku_%02d", i+1)
		createdAt := time.Now().AddDate(0, 0, -rng.Intn(365))

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d)", base+1, base+2))
		args = append(args, username, createdAt)
	}

	if len(rows) == 0 {
		return nil
	}

	query := "INSERT INTO users (username, created_at) VALUES " + strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

type seedTitle struct {
	title    string
	genres   []string
	episodes int
	year     int
}

var catalog = []seedTitle{
	{"Fullmetal Alchemist: Brotherhood", []string{"Action", "Adventure", "Drama", "Fantasy"}, 64, 2009},
	{"Steins;Gate", []string{"Drama", "Sci-Fi", "Thriller"}, 24, 2011},
	{"Attack on Titan", []string{"Action", "Drama", "Fantasy"}, 25, 2013},
	{"Hunter x Hunter", []string{"Action", "Adventure", "Fantasy"}, 148, 2011},
	{"Mob Psycho 100", []string{"Action", "Comedy", "Supernatural"}, 12, 2016},
	{"Violet Evergarden", []string{"Drama", "Fantasy", "Slice of Life"}, 13, 2018},
	{"K-On!", []string{"Comedy", "Music", "Slice of Life"}, 13, 2009},
	{"Cowboy Bebop", []string{"Action", "Drama", "Sci-Fi"}, 26, 1998},
	{"Made in Abyss", []string{"Adventure", "Drama", "Fantasy", "Mystery"}, 13, 2017},
	{"Monster", []string{"Drama", "Mystery", "Psychological", "Thriller"}, 74, 2004},
	{"Haikyuu!!", []string{"Comedy", "Drama", "Sports"}, 25, 2014},
	{"Your Lie in April", []string{"Drama", "Music", "Romance"}, 22, 2014},
	{"Mushishi", []string{"Mystery", "Slice of Life", "Supernatural"}, 26, 2005},
	{"Code Geass", []string{"Action", "Drama", "Mecha", "Sci-Fi"}, 25, 2006},
	{"Toradora!", []string{"Comedy", "Drama", "Romance"}, 25, 2008},
	{"Parasyte", []string{"Action", "Horror", "Psychological", "Sci-Fi"}, 24, 2014},
	{"Barakamon", []string{"Comedy", "Slice of Life"}, 12, 2014},
	{"Ping Pong the Animation", []string{"Drama", "Psychological", "Sports"}, 11, 2014},
	{"The Tatami Galaxy", []string{"Comedy", "Mystery", "Psychological", "Romance"}, 11, 2010},
	{"Gurren Lagann", []string{"Action", "Adventure", "Mecha", "Sci-Fi"}, 27, 2007},
	{"March Comes in Like a Lion", []string{"Drama", "Slice of Life"}, 22, 2016},
	{"Perfect Blue", []string{"Horror", "Mystery", "Psychological", "Thriller"}, 1, 1997},
	{"Spirited Away", []string{"Adventure", "Fantasy", "Supernatural"}, 1, 2001},
	{"Yuru Camp", []string{"Comedy", "Slice of Life"}, 12, 2018},
	{"Vinland Saga", []string{"Action", "Adventure", "Drama"}, 24, 2019},
	{"Kaguya-sama: Love Is War", []string{"Comedy", "Psychological", "Romance"}, 12, 2019},
	{"Death Note", []string{"Mystery", "Psychological", "Supernatural", "Thriller"}, 37, 2006},
	{"Samurai Champloo", []string{"Action", "Adventure", "Comedy"}, 26, 2004},
	{"A Place Further than the Universe", []string{"Adventure", "Comedy", "Drama"}, 13, 2018},
	{"Psycho-Pass", []string{"Action", "Psychological", "Sci-Fi", "Thriller"}, 22, 2012},
}

func seedAnime(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand) error {
	rows := []string{}
	args := []any{}

	for i, a := range catalog {
		// Scores skew toward the 60-92 band the way public ratings do.
		score := 60 + rng.Intn(33)

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, int64(i+1), a.title, a.genres, score, a.episodes, a.year)
	}

	if len(rows) == 0 {
		return nil
	}

	query := "INSERT INTO anime (id, title, genres, average_score, episodes, season_year) VALUES " +
		strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

func seedWatchEvents(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) error {
	actions := []string{"watched", "completed", "rated_high", "rated_low", "dropped", "saved", "ignored"}
	weights := []float64{0.3, 0.25, 0.15, 0.05, 0.05, 0.15, 0.05}

	seen := make(map[[2]int64]bool)

	rows := []string{}
	args := []any{}

	for range n {
		userID := int64(math.Ceil(math.Pow(rng.Float64(), 1.5) * 20))
		userID = max(1, min(userID, 20))

		animeID := int64(math.Ceil(math.Pow(rng.Float64(), 1.3) * float64(len(catalog))))
		animeID = max(1, min(animeID, int64(len(catalog))))

		key := [2]int64{userID, animeID}
		if seen[key] {
			continue
		}
		seen[key] = true

		action := weightedChoice(rng, actions, weights)
		createdAt := time.Now().AddDate(0, 0, -rng.Intn(180))

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, userID, animeID, action, createdAt)
	}

	if len(rows) == 0 {
		return nil
	}

	query := "INSERT INTO watch_events (user_id, anime_id, action, created_at) VALUES " +
		strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

func weightedChoice(rng *rand.Rand, choices []string, weights []float64) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}
