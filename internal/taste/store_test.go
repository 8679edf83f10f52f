package taste

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/otakushelf/otakushelf/internal/domain"
)

func TestUpdateFromAction(t *testing.T) {
	p := domain.NewProfile(1)
	now := time.Now()

	UpdateFromAction(p, domain.ActionCompleted, []string{"Action", "Adventure"}, now)

	tv := p.TasteVectors["Action"]
	if tv == nil {
		t.Fatal("Action vector not created")
	}
	// New genre starts at 0.5, completed impact is +0.5 * learningRate 0.3.
	want := 0.5 + 0.5*0.3
	if math.Abs(tv.Weight-want) > 1e-9 {
		t.Errorf("expected weight %f, got %f", want, tv.Weight)
	}
	if math.Abs(tv.Confidence-0.15) > 1e-9 {
		t.Errorf("expected confidence 0.15, got %f", tv.Confidence)
	}
	if tv.Interactions != 1 {
		t.Errorf("expected 1 interaction, got %d", tv.Interactions)
	}
}

func TestWeightsStayClamped(t *testing.T) {
	p := domain.NewProfile(1)
	now := time.Now()

	actions := []domain.Action{
		domain.ActionWatched, domain.ActionCompleted, domain.ActionRatedHigh,
		domain.ActionRatedLow, domain.ActionDropped, domain.ActionSaved,
		domain.ActionIgnored, domain.Action("unknown"),
	}

	// Hammer the same genres with every action repeatedly.
	for i := 0; i < 50; i++ {
		for _, a := range actions {
			UpdateFromAction(p, a, []string{"Action", "Drama"}, now)
		}
	}
	// Push hard in one direction too.
	for i := 0; i < 50; i++ {
		UpdateFromAction(p, domain.ActionRatedHigh, []string{"Action"}, now)
		UpdateFromAction(p, domain.ActionDropped, []string{"Drama"}, now)
	}

	for genre, tv := range p.TasteVectors {
		if tv.Weight < 0 || tv.Weight > 1 {
			t.Errorf("%s weight out of range: %f", genre, tv.Weight)
		}
		if tv.Confidence < 0 || tv.Confidence > 1 {
			t.Errorf("%s confidence out of range: %f", genre, tv.Confidence)
		}
	}
}

func TestEmptyGenresIsNoOp(t *testing.T) {
	p := domain.NewProfile(1)
	UpdateFromAction(p, domain.ActionCompleted, nil, time.Now())

	if len(p.TasteVectors) != 0 {
		t.Errorf("expected no vectors, got %d", len(p.TasteVectors))
	}
}

func TestDecayNoOpWithinWindow(t *testing.T) {
	p := domain.NewProfile(1)
	now := time.Now()
	UpdateFromAction(p, domain.ActionWatched, []string{"Action"}, now)
	before := p.TasteVectors["Action"].Weight

	// Same instant twice: daysSinceUpdate is zero both times.
	ApplyDecay(p, now)
	ApplyDecay(p, now)

	if p.TasteVectors["Action"].Weight != before {
		t.Errorf("decay changed weight within window: %f -> %f", before, p.TasteVectors["Action"].Weight)
	}
}

func TestDecayAfterTwoWeeks(t *testing.T) {
	p := domain.NewProfile(1)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	UpdateFromAction(p, domain.ActionCompleted, []string{"Action"}, start)
	before := p.TasteVectors["Action"].Weight

	later := start.AddDate(0, 0, 15)
	ApplyDecay(p, later)

	// 15 days idle -> decayRate^floor(15/7) = decayRate^2.
	want := before * math.Pow(p.Learning.DecayRate, 2)
	got := p.TasteVectors["Action"].Weight
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %f after decay, got %f", want, got)
	}
	if !p.TasteVectors["Action"].LastUpdated.Equal(later) {
		t.Error("decay should restamp LastUpdated")
	}
}

func TestTopGenres(t *testing.T) {
	p := domain.NewProfile(1)
	p.TasteVectors = map[string]*domain.TasteVector{
		"Action":  {Weight: 0.9, Confidence: 0.9},
		"Drama":   {Weight: 0.8, Confidence: 0.5},
		"Comedy":  {Weight: 0.5, Confidence: 0.5},
		"Romance": {Weight: 0.1, Confidence: 0.9},
	}

	top := TopGenres(p, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 genres, got %d", len(top))
	}
	if top[0].Genre != "Action" {
		t.Errorf("expected Action first, got %s", top[0].Genre)
	}
	if top[1].Genre != "Drama" {
		t.Errorf("expected Drama second, got %s", top[1].Genre)
	}

	all := TopGenres(p, 10)
	if len(all) != 4 {
		t.Errorf("expected all 4 genres, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		prev := all[i-1].Weight * all[i-1].Confidence
		cur := all[i].Weight * all[i].Confidence
		if prev < cur {
			t.Errorf("not sorted at %d: %f < %f", i, prev, cur)
		}
	}
}

func TestExplorationGenres(t *testing.T) {
	p := domain.NewProfile(1)
	p.Learning.ExplorationRate = 1.0 // every trial succeeds
	p.TasteVectors = map[string]*domain.TasteVector{
		"Action": {Weight: 0.9, Confidence: 0.9, Interactions: 10},
	}

	rng := rand.New(rand.NewSource(42))
	picked := ExplorationGenres(p, 3, rng)

	if len(picked) != 3 {
		t.Fatalf("expected 3 genres, got %d", len(picked))
	}
	for _, g := range picked {
		if g == "Action" {
			t.Error("well-known genre should be excluded from exploration")
		}
	}
}

func TestExplorationDefaultPair(t *testing.T) {
	p := domain.NewProfile(1)
	p.Learning.ExplorationRate = 0 // no trial ever succeeds

	rng := rand.New(rand.NewSource(42))
	picked := ExplorationGenres(p, 3, rng)

	if len(picked) != 2 {
		t.Fatalf("expected default pair, got %v", picked)
	}
	if picked[0] != "Adventure" || picked[1] != "Slice of Life" {
		t.Errorf("unexpected defaults: %v", picked)
	}
}

func TestInteractionsMonotonic(t *testing.T) {
	p := domain.NewProfile(1)
	now := time.Now()

	prev := 0
	for i := 0; i < 10; i++ {
		UpdateFromAction(p, domain.ActionDropped, []string{"Horror"}, now)
		cur := p.TasteVectors["Horror"].Interactions
		if cur <= prev {
			t.Fatalf("interactions not increasing: %d -> %d", prev, cur)
		}
		prev = cur
	}
}
