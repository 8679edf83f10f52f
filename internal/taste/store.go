package taste

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/otakushelf/otakushelf/internal/domain"
)

const (
	decayWindowDays = 7
	confidenceStep  = 0.05

	newGenreWeight     = 0.5
	newGenreConfidence = 0.1

	explorationMaxInteractions = 3
)

var actionImpacts = map[domain.Action]float64{
	domain.ActionWatched:   0.3,
	domain.ActionCompleted: 0.5,
	domain.ActionRatedHigh: 0.7,
	domain.ActionRatedLow:  -0.3,
	domain.ActionDropped:   -0.4,
	domain.ActionSaved:     0.2,
	domain.ActionIgnored:   -0.1,
}

const defaultImpact = 0.1

// candidateGenres is the pool exploration draws from, including genres the
// user has never interacted with.
var candidateGenres = []string{
	"Action", "Adventure", "Comedy", "Drama", "Fantasy", "Horror",
	"Mecha", "Music", "Mystery", "Psychological", "Romance", "Sci-Fi",
	"Slice of Life", "Sports", "Supernatural", "Thriller",
}

// defaultExploration is returned when no exploration candidate survives
// the Bernoulli gate.
var defaultExploration = []string{"Adventure", "Slice of Life"}

// ApplyDecay multiplies the weight of every genre idle for more than seven
// days by decayRate^floor(days/7) and restamps it. Genres touched within
// the window are left alone.
func ApplyDecay(p *domain.Profile, now time.Time) {
	for _, tv := range p.TasteVectors {
		days := now.Sub(tv.LastUpdated).Hours() / 24
		if days <= decayWindowDays {
			continue
		}
		weeks := math.Floor(days / decayWindowDays)
		tv.Weight *= math.Pow(p.Learning.DecayRate, weeks)
		tv.LastUpdated = now
	}
}

// UpdateFromAction applies one action to every genre of the acted-upon
// anime. Decay runs first so stale weights shrink before the new signal
// lands. An empty genre list is a no-op.
func UpdateFromAction(p *domain.Profile, action domain.Action, genres []string, now time.Time) {
	if len(genres) == 0 {
		return
	}
	if p.TasteVectors == nil {
		p.TasteVectors = make(map[string]*domain.TasteVector)
	}

	ApplyDecay(p, now)

	impact := defaultImpact
	if v, ok := actionImpacts[action]; ok {
		impact = v
	}

	for _, genre := range genres {
		tv, ok := p.TasteVectors[genre]
		if !ok {
			tv = &domain.TasteVector{
				Weight:     newGenreWeight,
				Confidence: newGenreConfidence,
			}
			p.TasteVectors[genre] = tv
		}
		tv.Weight = clamp01(tv.Weight + impact*p.Learning.LearningRate)
		tv.Confidence = math.Min(1, tv.Confidence+confidenceStep)
		tv.Interactions++
		tv.LastUpdated = now
	}
	p.UpdatedAt = now
}

// GenreWeight is a ranked taste entry.
type GenreWeight struct {
	Genre      string  `json:"genre"`
	Weight     float64 `json:"weight"`
	Confidence float64 `json:"confidence"`
}

// TopGenres returns up to n genres ordered by weight*confidence descending.
// Ties break lexicographically so the ordering is deterministic.
func TopGenres(p *domain.Profile, n int) []GenreWeight {
	ranked := make([]GenreWeight, 0, len(p.TasteVectors))
	for genre, tv := range p.TasteVectors {
		ranked = append(ranked, GenreWeight{Genre: genre, Weight: tv.Weight, Confidence: tv.Confidence})
	}
	sort.Slice(ranked, func(i, j int) bool {
		si := ranked[i].Weight * ranked[i].Confidence
		sj := ranked[j].Weight * ranked[j].Confidence
		if si != sj {
			return si > sj
		}
		return ranked[i].Genre < ranked[j].Genre
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// ExplorationGenres picks up to n low-interaction genres, each gated by an
// independent Bernoulli trial at the profile's exploration rate. The caller
// supplies the random source so tests can seed it.
func ExplorationGenres(p *domain.Profile, n int, rng *rand.Rand) []string {
	var picked []string
	for _, genre := range candidateGenres {
		if len(picked) >= n {
			break
		}
		if tv, ok := p.TasteVectors[genre]; ok && tv.Interactions >= explorationMaxInteractions {
			continue
		}
		if rng.Float64() < p.Learning.ExplorationRate {
			picked = append(picked, genre)
		}
	}
	if len(picked) == 0 {
		picked = append(picked, defaultExploration...)
		if len(picked) > n {
			picked = picked[:n]
		}
	}
	return picked
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
