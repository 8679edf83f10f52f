package intent

import (
	"testing"

	"github.com/otakushelf/otakushelf/internal/domain"
)

func TestClassifyRecommendation(t *testing.T) {
	result := Classify("recommend me something", Context{})

	if result.Intent != domain.IntentRecommendation {
		t.Errorf("expected recommendation, got %s", result.Intent)
	}
	if result.Confidence < 0.7 {
		t.Errorf("expected confidence >= 0.7, got %f", result.Confidence)
	}
	if len(result.TriggeredBy) == 0 {
		t.Error("expected triggered matches")
	}
}

func TestClassifyMoodBased(t *testing.T) {
	result := Classify("I'm feeling sad today", Context{})

	if result.Intent != domain.IntentMoodBased {
		t.Errorf("expected mood_based, got %s", result.Intent)
	}
	if result.Confidence < 0.5 {
		t.Errorf("expected confidence >= 0.5, got %f", result.Confidence)
	}
}

func TestClassifyFallback(t *testing.T) {
	result := Classify("the weather is nice", Context{})

	if result.Intent != domain.IntentChat {
		t.Errorf("expected chat fallback, got %s", result.Intent)
	}
	if result.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %f", result.Confidence)
	}
	if len(result.TriggeredBy) != 1 || result.TriggeredBy[0] != "default_fallback" {
		t.Errorf("expected default_fallback trigger, got %v", result.TriggeredBy)
	}
}

func TestClassifyBelowThresholdFallsBack(t *testing.T) {
	// Two keyword hits give 0.4, below the 0.7 recommendation threshold.
	result := Classify("no recommendation needed really", Context{})

	if result.Intent != domain.IntentChat {
		t.Errorf("expected chat fallback, got %s", result.Intent)
	}
	if result.Confidence != 1.0 {
		t.Errorf("expected fallback confidence 1.0, got %f", result.Confidence)
	}
}

func TestContinuationBonus(t *testing.T) {
	// Keyword (0.2) plus pattern (0.3) lands at 0.5, just under the 0.6
	// discovery threshold; the continuation bonus pushes it over.
	msg := "what about something underrated"

	without := Classify(msg, Context{})
	if without.Intent != domain.IntentChat {
		t.Errorf("expected chat fallback without context, got %s", without.Intent)
	}

	with := Classify(msg, Context{LastIntent: domain.IntentDiscovery})
	if with.Intent != domain.IntentDiscovery {
		t.Errorf("expected discovery with context, got %s", with.Intent)
	}
	if with.Confidence < 0.6 {
		t.Errorf("expected confidence >= 0.6, got %f", with.Confidence)
	}
}

func TestConfidenceCapped(t *testing.T) {
	msg := "recommend me something, suggest a recommendation worth watching, what should i watch"

	result := Classify(msg, Context{LastIntent: domain.IntentRecommendation})

	if result.Confidence > 1.0 {
		t.Errorf("confidence exceeds cap: %f", result.Confidence)
	}
	if result.Intent != domain.IntentRecommendation {
		t.Errorf("expected recommendation, got %s", result.Intent)
	}
}

func TestChatKeywordsWin(t *testing.T) {
	result := Classify("hey, thanks!", Context{})

	if result.Intent != domain.IntentChat {
		t.Errorf("expected chat, got %s", result.Intent)
	}
	// Chat has threshold 0, so the accumulated score wins outright.
	if result.Confidence != 0.4 {
		t.Errorf("expected 0.4 (two keywords), got %f", result.Confidence)
	}
}
