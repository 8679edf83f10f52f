package intent

import (
	"regexp"
	"sort"
	"strings"

	"github.com/otakushelf/otakushelf/internal/domain"
)

const (
	keywordScore      = 0.2
	patternScore      = 0.3
	continuationBonus = 0.1
)

// Context carries conversational state into classification.
type Context struct {
	LastIntent domain.Intent
}

type candidate struct {
	intent    domain.Intent
	keywords  []string
	patterns  []*regexp.Regexp
	threshold float64
}

// Declaration order doubles as the tie-break priority: when two intents
// land on the same confidence, the one listed first wins.
var candidates = []candidate{
	{
		intent: domain.IntentRecommendation,
		keywords: []string{
			"recommend", "suggest", "recommendation",
			"something to watch", "worth watching",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`recommend (me|a|an|some)`),
			regexp.MustCompile(`(recommend|suggest).*(anime|show|series|something)`),
			regexp.MustCompile(`what (should|can) i watch`),
		},
		threshold: 0.7,
	},
	{
		intent: domain.IntentDiscovery,
		keywords: []string{
			"discover", "explore", "hidden gem", "underrated",
			"surprise me", "never seen",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(hidden|underrated|lesser.known)`),
			regexp.MustCompile(`(something|anything) (new|different|fresh)`),
		},
		threshold: 0.6,
	},
	{
		intent: domain.IntentMoodBased,
		keywords: []string{
			"feeling", "mood", "sad", "happy", "excited",
			"bored", "stressed", "chill",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`i.?m (feeling|in the mood)`),
			regexp.MustCompile(`cheer me up`),
		},
		threshold: 0.5,
	},
	{
		intent: domain.IntentComparison,
		keywords: []string{
			"similar", "compare", "versus", "vs", "better than",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(similar|close) to`),
			regexp.MustCompile(`(anime|show|series)s? like`),
		},
		threshold: 0.6,
	},
	{
		intent: domain.IntentChat,
		keywords: []string{
			"hello", "hi", "hey", "thanks", "thank you", "how are you",
		},
		patterns:  nil,
		threshold: 0,
	},
}

// Classify maps a free-text message to an intent. It is a pure function of
// the message, the context and the static tables above, and always returns
// a result: when no candidate clears its threshold it falls back to chat.
func Classify(message string, ctx Context) domain.Classification {
	msg := strings.ToLower(message)

	type scored struct {
		candidate
		confidence float64
		triggered  []string
	}

	var matched []scored
	for _, c := range candidates {
		confidence := 0.0
		var triggered []string
		for _, kw := range c.keywords {
			if strings.Contains(msg, kw) {
				confidence += keywordScore
				triggered = append(triggered, "keyword:"+kw)
			}
		}
		for _, p := range c.patterns {
			if p.MatchString(msg) {
				confidence += patternScore
				triggered = append(triggered, "pattern:"+p.String())
			}
		}
		if c.intent == ctx.LastIntent && confidence > 0 {
			confidence += continuationBonus
			triggered = append(triggered, "continuation")
		}
		if confidence > 1 {
			confidence = 1
		}
		if confidence > 0 {
			matched = append(matched, scored{c, confidence, triggered})
		}
	}

	// Stable sort keeps declaration order on equal confidence.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].confidence > matched[j].confidence
	})

	if len(matched) > 0 && matched[0].confidence >= matched[0].threshold {
		return domain.Classification{
			Intent:      matched[0].intent,
			Confidence:  matched[0].confidence,
			TriggeredBy: matched[0].triggered,
		}
	}

	return domain.Classification{
		Intent:      domain.IntentChat,
		Confidence:  1.0,
		TriggeredBy: []string{"default_fallback"},
	}
}
