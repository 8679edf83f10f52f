package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/otakushelf/otakushelf/internal/domain"
	"github.com/otakushelf/otakushelf/internal/intent"
	"github.com/otakushelf/otakushelf/internal/taste"
)

const (
	candidatePoolSize = 12
	maxResults        = 6

	// Engagement tiers gate how strict the quality floor is.
	lowEngagement  = 0.3
	highEngagement = 0.7
)

// Fetcher supplies anime candidates matching a genre set. Implemented by
// the metadata client; faked in tests.
type Fetcher interface {
	FetchByGenres(ctx context.Context, genres []string, count int) ([]domain.Anime, error)
}

type Recommender struct {
	fetcher Fetcher
	rng     *rand.Rand
	log     *logrus.Logger
}

func New(fetcher Fetcher, rng *rand.Rand, log *logrus.Logger) *Recommender {
	return &Recommender{fetcher: fetcher, rng: rng, log: log}
}

// Generate runs the full pipeline: classify, select genres, fetch, filter,
// rank. On a fetch failure the returned result still carries the detected
// intent so the caller can degrade to a plain chat reply.
func (r *Recommender) Generate(ctx context.Context, message string, profile *domain.Profile, history domain.History) (*domain.RecommendationResult, error) {
	cls := intent.Classify(message, intent.Context{LastIntent: history.LastIntent})

	genres := r.selectGenres(cls.Intent, message, profile)
	r.log.WithFields(logrus.Fields{
		"intent":     cls.Intent,
		"confidence": cls.Confidence,
		"genres":     genres,
	}).Debug("message classified")

	result := &domain.RecommendationResult{
		Intent:     cls.Intent,
		Confidence: cls.Confidence,
		Reasoning:  reasoning(cls.Intent, profile.Stats.EngagementScore, genres),
	}

	candidates, err := r.fetcher.FetchByGenres(ctx, genres, candidatePoolSize)
	if err != nil {
		return result, fmt.Errorf("fetch candidates for genres %v: %w", genres, err)
	}

	filtered := filterCandidates(candidates, history.Completed, profile.Stats.EngagementScore)
	result.Recommendations = rank(filtered, profile, cls.Intent, time.Now().Year())
	return result, nil
}

// GenerateDefault is the cached read path: no message to classify, the
// intent is recommendation by construction.
func (r *Recommender) GenerateDefault(ctx context.Context, profile *domain.Profile, history domain.History, limit int) ([]domain.RankedAnime, error) {
	if limit <= 0 || limit > maxResults {
		limit = maxResults
	}

	genres := r.selectGenres(domain.IntentRecommendation, "", profile)
	candidates, err := r.fetcher.FetchByGenres(ctx, genres, candidatePoolSize)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates for genres %v: %w", genres, err)
	}

	filtered := filterCandidates(candidates, history.Completed, profile.Stats.EngagementScore)
	ranked := rank(filtered, profile, domain.IntentRecommendation, time.Now().Year())
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (r *Recommender) selectGenres(it domain.Intent, message string, profile *domain.Profile) []string {
	switch it {
	case domain.IntentRecommendation:
		genres := genreNames(taste.TopGenres(profile, 2))
		genres = append(genres, taste.ExplorationGenres(profile, 1, r.rng)...)
		return dedupe(genres)
	case domain.IntentDiscovery:
		return taste.ExplorationGenres(profile, 3, r.rng)
	case domain.IntentMoodBased:
		return moodGenres(message)
	case domain.IntentComparison:
		if top := genreNames(taste.TopGenres(profile, 3)); len(top) > 0 {
			return top
		}
		return defaultGenres(profile)
	default:
		return defaultGenres(profile)
	}
}

// moodGenreTable maps mood words to genre sets; matched by literal
// substring, first hit wins, "relaxed" is the default.
var moodGenreTable = []struct {
	mood   string
	genres []string
}{
	{"sad", []string{"Drama", "Slice of Life", "Romance"}},
	{"happy", []string{"Comedy", "Adventure", "Music"}},
	{"excited", []string{"Action", "Sports", "Fantasy"}},
	{"adventurous", []string{"Adventure", "Fantasy", "Mystery"}},
	{"relaxed", []string{"Slice of Life", "Comedy", "Iyashikei"}},
}

func moodGenres(message string) []string {
	msg := strings.ToLower(message)
	for _, entry := range moodGenreTable {
		if strings.Contains(msg, entry.mood) {
			return entry.genres
		}
	}
	// No mood keyword: default to the relaxed set.
	return moodGenreTable[len(moodGenreTable)-1].genres
}

func defaultGenres(profile *domain.Profile) []string {
	if top := genreNames(taste.TopGenres(profile, 3)); len(top) > 0 {
		return top
	}
	return []string{"Action", "Comedy", "Adventure"}
}

// filterCandidates drops already-completed anime and applies the
// engagement-tiered score floor: cautious users only see highly rated
// titles, highly engaged users get a looser gate.
func filterCandidates(candidates []domain.Anime, completed []int64, engagement float64) []domain.Anime {
	done := make(map[int64]struct{}, len(completed))
	for _, id := range completed {
		done[id] = struct{}{}
	}

	floor := scoreFloor(engagement)
	var kept []domain.Anime
	for _, a := range candidates {
		if _, ok := done[a.ID]; ok {
			continue
		}
		if a.AverageScore > floor {
			kept = append(kept, a)
		}
	}
	return kept
}

func scoreFloor(engagement float64) int {
	switch {
	case engagement < lowEngagement:
		return 70
	case engagement > highEngagement:
		return 60
	default:
		return 65
	}
}

// rank scores candidates: averageScore/10 base, +2*weight per matching
// taste genre, plus an intent bonus. Stable sort keeps input order on ties.
func rank(candidates []domain.Anime, profile *domain.Profile, it domain.Intent, year int) []domain.RankedAnime {
	ranked := make([]domain.RankedAnime, 0, len(candidates))
	for _, a := range candidates {
		score := float64(a.AverageScore) / 10

		for _, g := range a.Genres {
			if tv, ok := profile.TasteVectors[g]; ok {
				score += tv.Weight * 2
			}
		}

		score += intentBonus(it, a, year)
		ranked = append(ranked, domain.RankedAnime{Anime: a, AdaptiveScore: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AdaptiveScore > ranked[j].AdaptiveScore
	})

	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	return ranked
}

func intentBonus(it domain.Intent, a domain.Anime, year int) float64 {
	switch it {
	case domain.IntentDiscovery:
		// Newer seasons score higher, fading linearly over five years.
		age := year - a.SeasonYear
		if age < 0 {
			age = 0
		}
		if age < 5 {
			return float64(5-age) / 5
		}
	case domain.IntentMoodBased:
		// Unknown episode counts (zero) still qualify as short.
		if a.Episodes <= 12 {
			return 1
		}
	}
	return 0
}

func reasoning(it domain.Intent, engagement float64, genres []string) string {
	genreList := strings.Join(genres, ", ")
	switch it {
	case domain.IntentRecommendation:
		if engagement > highEngagement {
			return fmt.Sprintf("You've been really active lately, so I leaned into your favorites: %s.", genreList)
		}
		if engagement < lowEngagement {
			return fmt.Sprintf("Picked a few safe bets from %s to get you started.", genreList)
		}
		return fmt.Sprintf("Based on your taste for %s, with one wildcard mixed in.", genreList)
	case domain.IntentDiscovery:
		return fmt.Sprintf("Stepping outside your usual lanes into %s.", genreList)
	case domain.IntentMoodBased:
		return fmt.Sprintf("Matched your mood with %s.", genreList)
	case domain.IntentComparison:
		return fmt.Sprintf("Pulled from the genres you rate highest: %s.", genreList)
	default:
		return fmt.Sprintf("A general mix from %s.", genreList)
	}
}

func genreNames(top []taste.GenreWeight) []string {
	names := make([]string, 0, len(top))
	for _, g := range top {
		names = append(names, g.Genre)
	}
	return names
}

func dedupe(genres []string) []string {
	seen := make(map[string]struct{}, len(genres))
	var out []string
	for _, g := range genres {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}
