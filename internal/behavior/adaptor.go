package behavior

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/otakushelf/otakushelf/internal/domain"
	"github.com/otakushelf/otakushelf/internal/taste"
)

const (
	responseLengthEMA = 0.9
	maxRecentThemes   = 20

	lowEngagement  = 0.3
	highEngagement = 0.7

	personalizationWeight = 0.7
	toneMarkerThreshold   = 2
)

// toneSubstitutions rewrite the reply toward the user's preferred register.
// Applied blindly on every pass, so re-adapting an already adapted string
// can transform it twice. That matches the shipped behavior; keep it.
var toneSubstitutions = map[string][][2]string{
	domain.ToneFormal: {
		{"gonna", "going to"},
		{"wanna", "want to"},
		{"kinda", "somewhat"},
		{"yeah", "yes"},
	},
	domain.ToneCasual: {
		{"However", "But"},
		{"Additionally", "Also"},
		{"Therefore", "So"},
	},
	domain.ToneEnthusiastic: {
		{"good", "great"},
		{"interesting", "fascinating"},
		{"nice", "awesome"},
	},
}

var personalizationPrefixes = []string{
	"Since you're into %s, ",
	"As a %s fan, ",
	"Knowing your taste for %s, ",
}

// Adaptor styles replies and folds each interaction back into the
// profile's stats. The random source is injected so tests can seed it.
type Adaptor struct {
	rng *rand.Rand
}

func New(rng *rand.Rand) *Adaptor {
	return &Adaptor{rng: rng}
}

// AdaptResponse applies the ordered transform sequence: tone, length,
// enthusiasm, personalization.
func (a *Adaptor) AdaptResponse(profile *domain.Profile, text, userMessage string) string {
	text = applyTone(text, profile.Stats.PreferredTone)
	text = adjustLength(text, profile.Stats.AvgResponseLength)
	text = applyEnthusiasm(text, profile.Stats.EngagementScore)
	text = a.personalize(text, profile)
	return text
}

func applyTone(text, tone string) string {
	for _, sub := range toneSubstitutions[tone] {
		text = strings.ReplaceAll(text, sub[0], sub[1])
	}
	return text
}

// adjustLength nudges the reply toward the user's running average: far too
// long gets cut at a sentence boundary, far too short gets a follow-up hook.
func adjustLength(text string, target float64) string {
	if target <= 0 {
		return text
	}
	length := float64(len(text))
	if length > target*1.5 {
		return truncateAtSentence(text, int(target))
	}
	if length < target*0.5 {
		return text + " Want more details on any of these?"
	}
	return text
}

func truncateAtSentence(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := strings.LastIndex(text[:limit], ". ")
	if cut <= 0 {
		return text[:limit]
	}
	return text[:cut+1]
}

func applyEnthusiasm(text string, engagement float64) string {
	if engagement > highEngagement {
		return "✨ " + text
	}
	if engagement < lowEngagement {
		if idx := strings.Index(text, ". "); idx > 0 {
			return text[:idx+1]
		}
	}
	return text
}

func (a *Adaptor) personalize(text string, profile *domain.Profile) string {
	top := taste.TopGenres(profile, 1)
	if len(top) == 0 || top[0].Weight <= personalizationWeight {
		return text
	}
	prefix := personalizationPrefixes[a.rng.Intn(len(personalizationPrefixes))]
	return fmt.Sprintf(prefix, top[0].Genre) + text
}

// UpdateFromInteraction recomputes the interaction stats after one chat
// round trip. Feedback is optional: "positive" or "negative".
func (a *Adaptor) UpdateFromInteraction(profile *domain.Profile, userMessage, aiResponse, feedback string, now time.Time) {
	s := &profile.Stats
	s.TotalInteractions++

	switch feedback {
	case "positive":
		s.PositiveFeedback++
	case "negative":
		s.NegativeFeedback++
	}

	s.AvgResponseLength = responseLengthEMA*s.AvgResponseLength +
		(1-responseLengthEMA)*float64(len(aiResponse))

	ratio := float64(s.PositiveFeedback) / math.Max(1, float64(s.TotalInteractions))
	recency := math.Min(10, float64(s.TotalInteractions)) / 10
	s.EngagementScore = ratio*0.7 + recency*0.3

	if tone := inferTone(userMessage); tone != "" {
		s.PreferredTone = tone
	}

	profile.RecentThemes = appendThemes(profile.RecentThemes, extractThemes(userMessage))
	profile.UpdatedAt = now
}

var (
	enthusiasticMarkers = []string{"!", "love", "awesome", "amazing", "hype", "can't wait"}
	formalMarkers       = []string{"please", "would you", "could you", "thank you", "kindly"}
	casualMarkers       = []string{"lol", "haha", "yeah", "btw", "gonna", "wanna"}
)

// inferTone counts marker occurrences; priority order is enthusiastic,
// then formal, then casual. Returns "" when nothing clears the threshold.
func inferTone(message string) string {
	msg := strings.ToLower(message)
	if countMarkers(msg, enthusiasticMarkers) >= toneMarkerThreshold {
		return domain.ToneEnthusiastic
	}
	if countMarkers(msg, formalMarkers) >= toneMarkerThreshold {
		return domain.ToneFormal
	}
	if countMarkers(msg, casualMarkers) >= toneMarkerThreshold {
		return domain.ToneCasual
	}
	return ""
}

func countMarkers(msg string, markers []string) int {
	count := 0
	for _, m := range markers {
		count += strings.Count(msg, m)
	}
	return count
}

// themeTable buckets messages into conversation themes; intent-adjacent
// buckets feed the classifier's continuation context on the next turn.
var themeTable = []struct {
	theme    string
	keywords []string
}{
	{"recommendations", []string{"recommend", "suggest", "watch next"}},
	{"moods", []string{"feeling", "mood", "sad", "happy", "relax"}},
	{"discovery", []string{"discover", "hidden", "underrated", "new"}},
	{"seasonal", []string{"season", "airing", "this year"}},
	{"characters", []string{"character", "protagonist", "villain"}},
	{"studios", []string{"studio", "ghibli", "mappa", "ufotable"}},
	{"story", []string{"plot", "story", "ending", "arc"}},
}

func extractThemes(message string) []string {
	msg := strings.ToLower(message)
	var themes []string
	for _, entry := range themeTable {
		for _, kw := range entry.keywords {
			if strings.Contains(msg, kw) {
				themes = append(themes, entry.theme)
				break
			}
		}
	}
	if len(themes) == 0 {
		themes = append(themes, "general")
	}
	return themes
}

func appendThemes(existing, themes []string) []string {
	existing = append(existing, themes...)
	if len(existing) > maxRecentThemes {
		existing = existing[len(existing)-maxRecentThemes:]
	}
	return existing
}

// LastIntent maps the most recent conversation theme back to an intent for
// the classifier's continuation bonus.
func LastIntent(themes []string) domain.Intent {
	if len(themes) == 0 {
		return ""
	}
	switch themes[len(themes)-1] {
	case "recommendations":
		return domain.IntentRecommendation
	case "moods":
		return domain.IntentMoodBased
	case "discovery":
		return domain.IntentDiscovery
	default:
		return ""
	}
}
