package model

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/otakushelf/otakushelf/internal/domain"
)

// Client stands in for the generative-text collaborator: it drafts a raw
// reply from the detected intent and the ranked recommendations. The
// behavioral adaptor styles the draft afterwards.
type Client struct {
	rng *rand.Rand
}

func NewClient(rng *rand.Rand) *Client {
	return &Client{rng: rng}
}

type GenerationError struct {
	Msg string
}

func (e *GenerationError) Error() string {
	return e.Msg
}

func IsGenerationError(err error) bool {
	var target *GenerationError
	return errors.As(err, &target)
}

type PromptInput struct {
	Message         string
	Intent          domain.Intent
	Recommendations []domain.RankedAnime
	TopGenres       []string
}

var intros = map[domain.Intent][]string{
	domain.IntentRecommendation: {
		"Here's what I'd put at the top of your queue.",
		"A few picks that fit what you usually go for.",
	},
	domain.IntentDiscovery: {
		"Time to branch out. These are a bit off your beaten path.",
		"Some titles you probably haven't crossed yet.",
	},
	domain.IntentMoodBased: {
		"Going by how you're feeling, these should land well.",
		"Matched these to your current mood.",
	},
	domain.IntentComparison: {
		"If you liked that, these run in the same lane.",
		"Closest matches I could line up.",
	},
	domain.IntentChat: {
		"Happy to talk anime whenever you are.",
		"Ask me for recommendations any time.",
	},
}

// Generate drafts a reply. Latency and the occasional failure mimic a real
// model call so callers exercise their fallback paths.
func (c *Client) Generate(input PromptInput) (string, error) {
	delay := time.Duration(30+c.rng.Intn(21)) * time.Millisecond
	time.Sleep(delay)

	if c.rng.Float64() < 0.015 {
		return "", &GenerationError{Msg: "text generation failed"}
	}

	options := intros[input.Intent]
	if len(options) == 0 {
		options = intros[domain.IntentChat]
	}
	var b strings.Builder
	b.WriteString(options[c.rng.Intn(len(options))])

	if len(input.Recommendations) > 0 {
		b.WriteString(" ")
		for i, rec := range input.Recommendations {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s (%d)", rec.Title, rec.AverageScore)
		}
		b.WriteString(".")
	} else if input.Intent != domain.IntentChat {
		b.WriteString(" Nothing cleared the bar this time, try loosening the request.")
	}

	return b.String(), nil
}
