package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/otakushelf/otakushelf/internal/behavior"
	"github.com/otakushelf/otakushelf/internal/cache"
	"github.com/otakushelf/otakushelf/internal/domain"
	"github.com/otakushelf/otakushelf/internal/metrics"
	"github.com/otakushelf/otakushelf/internal/model"
	"github.com/otakushelf/otakushelf/internal/profilestore"
	"github.com/otakushelf/otakushelf/internal/recommend"
	"github.com/otakushelf/otakushelf/internal/repository"
	"github.com/otakushelf/otakushelf/internal/taste"
	"github.com/otakushelf/otakushelf/internal/ws"
)

const (
	defaultLimit = 6
	maxLimit     = 6
)

var validActions = map[domain.Action]struct{}{
	domain.ActionWatched:   {},
	domain.ActionCompleted: {},
	domain.ActionRatedHigh: {},
	domain.ActionRatedLow:  {},
	domain.ActionDropped:   {},
	domain.ActionSaved:     {},
	domain.ActionIgnored:   {},
}

type Service struct {
	repo        *repository.Repository
	profiles    *profilestore.Store
	cache       *cache.Cache
	recommender *recommend.Recommender
	adaptor     *behavior.Adaptor
	model       *model.Client
	hub         *ws.Hub
	log         *logrus.Logger
}

func NewService(
	repo *repository.Repository,
	profiles *profilestore.Store,
	c *cache.Cache,
	recommender *recommend.Recommender,
	adaptor *behavior.Adaptor,
	modelClient *model.Client,
	hub *ws.Hub,
	log *logrus.Logger,
) *Service {
	return &Service{
		repo:        repo,
		profiles:    profiles,
		cache:       c,
		recommender: recommender,
		adaptor:     adaptor,
		model:       modelClient,
		hub:         hub,
		log:         log,
	}
}

// GetRecommendations is the cached read path.
func (s *Service) GetRecommendations(ctx context.Context, userID int64, limit int) (*domain.RecommendationResult, error) {
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	cached, found, err := s.cache.Get(ctx, userID, limit)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("cache get failed")
	}
	if found {
		metrics.CacheHits.Inc()
		return &domain.RecommendationResult{
			Recommendations: cached,
			Intent:          domain.IntentRecommendation,
			CacheHit:        true,
		}, nil
	}
	metrics.CacheMisses.Inc()

	profile := s.loadOrInitProfile(ctx, userID)
	history := s.historyFor(ctx, userID, profile)

	recs, err := s.recommender.GenerateDefault(ctx, profile, history, limit)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Set(ctx, userID, limit, recs); cacheErr != nil {
		s.log.WithError(cacheErr).WithField("user_id", userID).Warn("cache set failed")
	}

	return &domain.RecommendationResult{
		Recommendations: recs,
		Intent:          domain.IntentRecommendation,
		CacheHit:        false,
	}, nil
}

// RecordAction applies one user action: watch event in Postgres, taste
// update in the profile document, cache invalidation.
func (s *Service) RecordAction(ctx context.Context, userID, animeID int64, action domain.Action, genres []string) error {
	if _, ok := validActions[action]; !ok {
		return domain.ErrInvalidAction
	}
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return err
	}

	// Resolve genres from the catalog when the caller didn't send any.
	if len(genres) == 0 {
		anime, err := s.repo.GetAnimeByID(ctx, animeID)
		if err == nil {
			genres = anime.Genres
		} else if !errors.Is(err, domain.ErrAnimeNotFound) {
			return err
		}
	}

	if err := s.repo.AddWatchEvent(ctx, userID, animeID, action); err != nil {
		return err
	}

	profile := s.loadOrInitProfile(ctx, userID)
	taste.UpdateFromAction(profile, action, genres, time.Now())

	if err := s.profiles.Save(ctx, profile); err != nil {
		return err
	}

	if err := s.cache.ClearUserCache(ctx, userID); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("cache invalidation failed")
	}
	return nil
}

const recentEventsLimit = 10

// ProfileView is the read model for the profile endpoint.
type ProfileView struct {
	UserID       int64                   `json:"user_id"`
	TopGenres    []taste.GenreWeight     `json:"top_genres"`
	Stats        domain.InteractionStats `json:"interaction_stats"`
	RecentThemes []string                `json:"recent_themes"`
	RecentEvents []domain.WatchEvent     `json:"recent_events"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*ProfileView, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	profile := s.loadOrInitProfile(ctx, userID)

	events, err := s.repo.GetWatchHistory(ctx, userID, recentEventsLimit)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("watch history unavailable")
	}

	return &ProfileView{
		UserID:       userID,
		TopGenres:    taste.TopGenres(profile, 10),
		Stats:        profile.Stats,
		RecentThemes: profile.RecentThemes,
		RecentEvents: events,
		UpdatedAt:    profile.UpdatedAt,
	}, nil
}

// Health reports whether the stateful backends behind the request path are
// reachable. Postgres outages surface through the endpoints themselves.
func (s *Service) Health(ctx context.Context) error {
	if err := s.profiles.Ping(ctx); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	if err := s.cache.Ping(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// loadOrInitProfile falls back to a fresh default profile so first-contact
// users get cold-start behavior instead of an error.
func (s *Service) loadOrInitProfile(ctx context.Context, userID int64) *domain.Profile {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			s.log.WithError(err).WithField("user_id", userID).Warn("profile load failed, using defaults")
		}
		return domain.NewProfile(userID)
	}
	return profile
}

func (s *Service) historyFor(ctx context.Context, userID int64, profile *domain.Profile) domain.History {
	completed, err := s.repo.GetCompletedIDs(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("completed history unavailable")
	}
	return domain.History{
		Completed:  completed,
		LastIntent: behavior.LastIntent(profile.RecentThemes),
	}
}
