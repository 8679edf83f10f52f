package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/otakushelf/otakushelf/internal/domain"
)

type stubSearcher struct {
	anime []domain.Anime
	err   error
	calls int
}

func (s *stubSearcher) SearchByGenres(_ context.Context, _ []string, _ int) ([]domain.Anime, error) {
	s.calls++
	return s.anime, s.err
}

type stubLibrary struct {
	anime    []domain.Anime
	upserted []domain.Anime
}

func (l *stubLibrary) GetAnimeByGenres(_ context.Context, _ []string, _ int) ([]domain.Anime, error) {
	return l.anime, nil
}

func (l *stubLibrary) UpsertAnime(_ context.Context, a domain.Anime) error {
	l.upserted = append(l.upserted, a)
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestAniListSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Variables["perPage"] != float64(12) {
			t.Errorf("expected perPage 12, got %v", req.Variables["perPage"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"Page":{"media":[
			{"id":21,"title":{"romaji":"One Piece","english":""},"genres":["Action","Adventure"],
			 "averageScore":88,"episodes":1000,"seasonYear":1999,"format":"TV"}
		]}}}`))
	}))
	defer srv.Close()

	client := NewAniListClient(srv.URL)
	anime, err := client.SearchByGenres(context.Background(), []string{"Action"}, 12)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(anime) != 1 {
		t.Fatalf("expected 1 anime, got %d", len(anime))
	}
	a := anime[0]
	if a.ID != 21 || a.Title != "One Piece" || a.AverageScore != 88 || a.Source != "anilist" {
		t.Errorf("unexpected record: %+v", a)
	}
}

func TestJikanSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("genres"); got != "1" {
			t.Errorf("expected genre id 1 for Action, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"mal_id":5114,"title":"Fullmetal Alchemist: Brotherhood",
			 "genres":[{"name":"Action"},{"name":"Adventure"}],
			 "score":9.1,"episodes":64,"year":2009,"type":"TV"}
		]}`))
	}))
	defer srv.Close()

	client := NewJikanClient(srv.URL)
	anime, err := client.SearchByGenres(context.Background(), []string{"Action"}, 12)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(anime) != 1 {
		t.Fatalf("expected 1 anime, got %d", len(anime))
	}
	a := anime[0]
	if a.ID != 5114 || a.AverageScore != 91 || a.SeasonYear != 2009 || a.Source != "jikan" {
		t.Errorf("unexpected record: %+v", a)
	}
}

func TestClientFallsBackToJikan(t *testing.T) {
	anilist := &stubSearcher{err: errors.New("rate limited")}
	jikan := &stubSearcher{anime: []domain.Anime{{ID: 1, Title: "Fallback"}}}

	client := NewClient(anilist, jikan, nil, 0, quietLogger())
	anime, err := client.FetchByGenres(context.Background(), []string{"Action"}, 12)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(anime) != 1 || anime[0].Title != "Fallback" {
		t.Errorf("expected jikan fallback, got %v", anime)
	}
}

func TestClientCachesResponses(t *testing.T) {
	anilist := &stubSearcher{anime: []domain.Anime{{ID: 1}}}
	client := NewClient(anilist, &stubSearcher{}, nil, 0, quietLogger())

	for i := 0; i < 3; i++ {
		if _, err := client.FetchByGenres(context.Background(), []string{"Action"}, 12); err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
	}
	if anilist.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", anilist.calls)
	}
}

func TestClientMirrorsRemoteFetches(t *testing.T) {
	anilist := &stubSearcher{anime: []domain.Anime{
		{ID: 1, Title: "A"},
		{ID: 2, Title: "B"},
	}}
	library := &stubLibrary{}

	client := NewClient(anilist, &stubSearcher{}, library, 0, quietLogger())
	if _, err := client.FetchByGenres(context.Background(), []string{"Action"}, 12); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if len(library.upserted) != 2 {
		t.Fatalf("expected 2 records mirrored into the library, got %d", len(library.upserted))
	}
	if library.upserted[0].ID != 1 || library.upserted[1].ID != 2 {
		t.Errorf("unexpected mirrored records: %+v", library.upserted)
	}
}

func TestClientFallsBackToLibrary(t *testing.T) {
	library := &stubLibrary{anime: []domain.Anime{{ID: 9, Title: "Local"}}}
	client := NewClient(
		&stubSearcher{err: errors.New("down")},
		&stubSearcher{err: errors.New("also down")},
		library, 0, quietLogger(),
	)

	anime, err := client.FetchByGenres(context.Background(), []string{"Action"}, 12)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(anime) != 1 || anime[0].Title != "Local" {
		t.Errorf("expected library fallback, got %v", anime)
	}
	if len(library.upserted) != 0 {
		t.Errorf("library results should not be mirrored back, got %d upserts", len(library.upserted))
	}
}

func TestClientErrorWhenAllFail(t *testing.T) {
	client := NewClient(
		&stubSearcher{err: errors.New("down")},
		&stubSearcher{err: errors.New("also down")},
		nil, 0, quietLogger(),
	)
	if _, err := client.FetchByGenres(context.Background(), []string{"Action"}, 12); err == nil {
		t.Fatal("expected error when every source fails")
	}
}
