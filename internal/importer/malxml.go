package importer

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/otakushelf/otakushelf/internal/domain"
)

// Entry is one anime row in a MyAnimeList XML export.
type Entry struct {
	AnimeID int64  `xml:"series_animedb_id"`
	Title   string `xml:"series_title"`
	Status  string `xml:"my_status"`
	Score   int    `xml:"my_score"`
}

// Export is the parsed MyAnimeList list export.
type Export struct {
	XMLName xml.Name `xml:"myanimelist"`
	Entries []Entry  `xml:"anime"`
}

// Parse decodes a MAL XML export stream.
func Parse(r io.Reader) (*Export, error) {
	var export Export
	if err := xml.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decode MAL export: %w", err)
	}
	return &export, nil
}

// ActionFor maps a MAL list status plus score onto a taste action. Scores
// dominate status: a completed show rated 8+ counts as rated_high, one
// rated 4 or below as rated_low regardless of how far the user got.
func ActionFor(e Entry) domain.Action {
	if e.Score >= 8 {
		return domain.ActionRatedHigh
	}
	if e.Score > 0 && e.Score <= 4 {
		return domain.ActionRatedLow
	}
	switch e.Status {
	case "Completed":
		return domain.ActionCompleted
	case "Watching":
		return domain.ActionWatched
	case "Dropped":
		return domain.ActionDropped
	case "Plan to Watch":
		return domain.ActionSaved
	case "On-Hold":
		return domain.ActionIgnored
	default:
		return domain.ActionWatched
	}
}
