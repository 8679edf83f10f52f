package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/otakushelf/otakushelf/internal/domain"
	"github.com/otakushelf/otakushelf/internal/importer"
	"github.com/otakushelf/otakushelf/internal/metrics"
	"github.com/otakushelf/otakushelf/internal/taste"
	"github.com/otakushelf/otakushelf/internal/ws"
)

const importTimeout = 5 * time.Minute

// StartImport parses a MyAnimeList XML export synchronously (so malformed
// files fail the request) and replays it into the taste profile in the
// background. Progress streams over the websocket hub under the returned
// job id.
func (s *Service) StartImport(ctx context.Context, userID int64, r io.Reader) (string, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return "", err
	}

	export, err := importer.Parse(r)
	if err != nil {
		return "", err
	}

	jobID := uuid.NewString()
	go s.runImport(jobID, userID, export)
	return jobID, nil
}

func (s *Service) runImport(jobID string, userID int64, export *importer.Export) {
	ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
	defer cancel()

	log := s.log.WithField("job_id", jobID).WithField("user_id", userID)
	total := len(export.Entries)
	profile := s.loadOrInitProfile(ctx, userID)

	for i, entry := range export.Entries {
		action := importer.ActionFor(entry)

		// Genres come from the catalog mirror; unknown anime still get a
		// watch event, the taste update just becomes a no-op.
		var genres []string
		if anime, err := s.repo.GetAnimeByID(ctx, entry.AnimeID); err == nil {
			genres = anime.Genres
		} else if !errors.Is(err, domain.ErrAnimeNotFound) {
			log.WithError(err).Warn("catalog lookup failed, aborting import")
			metrics.ImportJobs.WithLabelValues("failed").Inc()
			s.hub.Publish(ws.Progress{JobID: jobID, Processed: i, Total: total, Stage: "aborted", Done: true, Error: "catalog unavailable"})
			return
		}

		if err := s.repo.AddWatchEvent(ctx, userID, entry.AnimeID, action); err != nil {
			log.WithError(err).Warn("watch event insert failed, aborting import")
			metrics.ImportJobs.WithLabelValues("failed").Inc()
			s.hub.Publish(ws.Progress{JobID: jobID, Processed: i, Total: total, Stage: "aborted", Done: true, Error: "storage unavailable"})
			return
		}

		taste.UpdateFromAction(profile, action, genres, time.Now())

		s.hub.Publish(ws.Progress{JobID: jobID, Processed: i + 1, Total: total, Stage: "importing"})
	}

	if err := s.profiles.Save(ctx, profile); err != nil {
		log.WithError(err).Warn("profile write-back failed after import")
	}
	if err := s.cache.ClearUserCache(ctx, userID); err != nil {
		log.WithError(err).Warn("cache invalidation failed after import")
	}

	metrics.ImportJobs.WithLabelValues("success").Inc()
	s.hub.Publish(ws.Progress{JobID: jobID, Processed: total, Total: total, Stage: "complete", Done: true})
	log.WithField("entries", total).Info("import complete")
}
