package metadata

import (
	"context"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/otakushelf/otakushelf/internal/domain"
	"github.com/otakushelf/otakushelf/internal/metrics"
)

const (
	defaultCacheTTL    = 15 * time.Minute
	cacheSweepInterval = 30 * time.Minute
)

// Searcher is the shared genre-search contract of both remote providers.
type Searcher interface {
	SearchByGenres(ctx context.Context, genres []string, count int) ([]domain.Anime, error)
}

// Library is the local catalog in Postgres. Remote fetches are mirrored
// into it so the fallback keeps working when both providers are down.
type Library interface {
	GetAnimeByGenres(ctx context.Context, genres []string, limit int) ([]domain.Anime, error)
	UpsertAnime(ctx context.Context, a domain.Anime) error
}

// Client fronts AniList with a Jikan fallback and a local-library last
// resort, memoizing responses in an in-process TTL cache.
type Client struct {
	anilist Searcher
	jikan   Searcher
	library Library
	cache   *gocache.Cache
	log     *logrus.Logger
}

func NewClient(anilist, jikan Searcher, library Library, ttl time.Duration, log *logrus.Logger) *Client {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Client{
		anilist: anilist,
		jikan:   jikan,
		library: library,
		cache:   gocache.New(ttl, cacheSweepInterval),
		log:     log,
	}
}

// FetchByGenres satisfies recommend.Fetcher.
func (c *Client) FetchByGenres(ctx context.Context, genres []string, count int) ([]domain.Anime, error) {
	key := strings.Join(genres, ",") + ":" + strconv.Itoa(count)
	if cached, ok := c.cache.Get(key); ok {
		metrics.MetadataFetches.WithLabelValues("cache").Inc()
		return cached.([]domain.Anime), nil
	}

	anime, err := c.anilist.SearchByGenres(ctx, genres, count)
	if err == nil {
		metrics.MetadataFetches.WithLabelValues("anilist").Inc()
		c.cache.Set(key, anime, gocache.DefaultExpiration)
		c.mirror(ctx, anime)
		return anime, nil
	}
	c.log.WithError(err).Warn("anilist fetch failed, falling back to jikan")

	anime, err = c.jikan.SearchByGenres(ctx, genres, count)
	if err == nil {
		metrics.MetadataFetches.WithLabelValues("jikan").Inc()
		c.cache.Set(key, anime, gocache.DefaultExpiration)
		c.mirror(ctx, anime)
		return anime, nil
	}
	c.log.WithError(err).Warn("jikan fetch failed, falling back to local library")

	if c.library == nil {
		return nil, err
	}
	anime, err = c.library.GetAnimeByGenres(ctx, genres, count)
	if err != nil {
		return nil, err
	}
	metrics.MetadataFetches.WithLabelValues("library").Inc()
	return anime, nil
}

// mirror writes remote records into the local catalog so the library
// fallback stays current. Failures only cost freshness, not the fetch.
func (c *Client) mirror(ctx context.Context, anime []domain.Anime) {
	if c.library == nil {
		return
	}
	for _, a := range anime {
		if err := c.library.UpsertAnime(ctx, a); err != nil {
			c.log.WithError(err).WithField("anime_id", a.ID).Warn("library mirror failed")
			return
		}
	}
}
