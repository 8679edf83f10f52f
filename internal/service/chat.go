package service

import (
	"context"
	"time"

	"github.com/otakushelf/otakushelf/internal/domain"
	"github.com/otakushelf/otakushelf/internal/metrics"
	"github.com/otakushelf/otakushelf/internal/model"
	"github.com/otakushelf/otakushelf/internal/taste"
)

const fallbackReply = "I couldn't put a reply together just now, but ask me again in a moment."

// ChatResult is what the chat endpoint returns for one message.
type ChatResult struct {
	Reply           string               `json:"reply"`
	Recommendations []domain.RankedAnime `json:"recommendations"`
	Intent          domain.Intent        `json:"intent"`
	Reasoning       string               `json:"reasoning"`
	Confidence      float64              `json:"confidence"`
}

// Chat runs the full adaptive pipeline for one message: recommend, draft a
// reply, style it, then fold the interaction back into the profile and
// persist it. Feedback is the optional reaction to the previous reply.
func (s *Service) Chat(ctx context.Context, userID int64, message, feedback string) (*ChatResult, error) {
	metrics.ChatRequests.Inc()

	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	profile := s.loadOrInitProfile(ctx, userID)
	history := s.historyFor(ctx, userID, profile)

	rec, err := s.recommender.Generate(ctx, message, profile, history)
	if err != nil {
		// Metadata outage: degrade to a plain chat reply, the detected
		// intent survives in the partial result.
		s.log.WithError(err).WithField("user_id", userID).Warn("recommendation pipeline degraded")
	}

	reply, err := s.model.Generate(model.PromptInput{
		Message:         message,
		Intent:          rec.Intent,
		Recommendations: rec.Recommendations,
		TopGenres:       genreNames(taste.TopGenres(profile, 3)),
	})
	if err != nil {
		if !model.IsGenerationError(err) {
			return nil, err
		}
		s.log.WithError(err).WithField("user_id", userID).Warn("text generation failed, using fallback reply")
		reply = fallbackReply
	}

	adapted := s.adaptor.AdaptResponse(profile, reply, message)
	s.adaptor.UpdateFromInteraction(profile, message, adapted, feedback, time.Now())

	if err := s.profiles.Save(ctx, profile); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("profile write-back failed")
	}

	return &ChatResult{
		Reply:           adapted,
		Recommendations: rec.Recommendations,
		Intent:          rec.Intent,
		Reasoning:       rec.Reasoning,
		Confidence:      rec.Confidence,
	}, nil
}

func genreNames(top []taste.GenreWeight) []string {
	names := make([]string, 0, len(top))
	for _, g := range top {
		names = append(names, g.Genre)
	}
	return names
}
