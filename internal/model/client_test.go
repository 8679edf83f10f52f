package model

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/otakushelf/otakushelf/internal/domain"
)

func TestGenerateListsRecommendations(t *testing.T) {
	client := NewClient(rand.New(rand.NewSource(7)))

	input := PromptInput{
		Message: "recommend me something",
		Intent:  domain.IntentRecommendation,
		Recommendations: []domain.RankedAnime{
			{Anime: domain.Anime{Title: "Steins;Gate", AverageScore: 89}, AdaptiveScore: 10.1},
			{Anime: domain.Anime{Title: "Mushishi", AverageScore: 85}, AdaptiveScore: 9.2},
		},
	}

	reply, err := client.Generate(input)
	if err != nil {
		// 1.5% random failure -> retry
		reply, err = client.Generate(input)
		if err != nil {
			t.Fatalf("Generate failed twice: %v", err)
		}
	}

	if !strings.Contains(reply, "Steins;Gate") || !strings.Contains(reply, "Mushishi") {
		t.Errorf("reply missing titles: %q", reply)
	}
}

func TestGenerateEmptyRecommendations(t *testing.T) {
	client := NewClient(rand.New(rand.NewSource(7)))

	reply, err := client.Generate(PromptInput{Intent: domain.IntentDiscovery})
	if err != nil {
		reply, err = client.Generate(PromptInput{Intent: domain.IntentDiscovery})
		if err != nil {
			t.Fatalf("Generate failed twice: %v", err)
		}
	}

	if !strings.Contains(reply, "Nothing cleared the bar") {
		t.Errorf("expected empty-result phrasing, got %q", reply)
	}
}

func TestGenerationError(t *testing.T) {
	err := &GenerationError{Msg: "text generation failed"}

	if !IsGenerationError(err) {
		t.Error("should detect GenerationError")
	}

	if IsGenerationError(fmt.Errorf("random error")) {
		t.Error("should not detect regular error as GenerationError")
	}
}
