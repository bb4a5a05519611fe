package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinebase/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", srv.URL, srv.Client())
}

func TestFetchPopularDecodesAndTagsKind(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/popular" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Error("missing api key")
		}
		if r.URL.Query().Get("page") != "2" {
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
		fmt.Fprint(w, `{"results":[
			{"id":1399,"name":"Game of Thrones","first_air_date":"2011-04-17","vote_average":8.4},
			{"id":1396,"name":"Breaking Bad","first_air_date":"2008-01-20","vote_average":8.9}
		]}`)
	})

	items, err := client.FetchPopular(context.Background(), models.KindSeries, 2)
	if err != nil {
		t.Fatalf("fetch popular: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != 1399 || items[0].Name != "Game of Thrones" {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[0].Kind != models.KindSeries || items[1].Kind != models.KindSeries {
		t.Fatal("expected items tagged with the listing kind")
	}
	if items[0].VoteAverage.String() != "8.4" {
		t.Fatalf("expected vote average preserved, got %q", items[0].VoteAverage.String())
	}
}

func TestSearchMultiDiscardsNonTitles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/multi" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "fincher" {
			t.Errorf("unexpected query %q", r.URL.Query().Get("query"))
		}
		fmt.Fprint(w, `{"results":[
			{"id":550,"media_type":"movie","title":"Fight Club"},
			{"id":1223,"media_type":"person","name":"David Fincher"},
			{"id":1426,"media_type":"tv","name":"Mindhunter"}
		]}`)
	})

	items, err := client.Search(context.Background(), "fincher", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected person result discarded, got %d items", len(items))
	}
	if items[0].Kind != models.KindMovie || items[1].Kind != models.KindSeries {
		t.Fatalf("unexpected kinds %q, %q", items[0].Kind, items[1].Kind)
	}
}

func TestSearchKindUsesTypedEndpoint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"results":[{"id":550,"title":"Fight Club"}]}`)
	})

	items, err := client.Search(context.Background(), "fight club", models.KindMovie)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 1 || items[0].Kind != models.KindMovie {
		t.Fatalf("expected one movie-tagged item, got %+v", items)
	}
}

func TestFetchDetailsRequestsCredits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("append_to_response") != "credits" {
			t.Error("expected credits appended")
		}
		fmt.Fprint(w, `{
			"runtime":139,
			"genres":[{"id":18,"name":"Drama"}],
			"credits":{"cast":[{"name":"Edward Norton"},{"name":"Brad Pitt"}]}
		}`)
	})

	details, err := client.FetchDetails(context.Background(), 550, models.KindMovie)
	if err != nil {
		t.Fatalf("fetch details: %v", err)
	}
	if details.Runtime != 139 {
		t.Fatalf("expected runtime 139, got %d", details.Runtime)
	}
	if len(details.Genres) != 1 || details.Genres[0].Name != "Drama" {
		t.Fatalf("unexpected genres %+v", details.Genres)
	}
	if len(details.Credits.Cast) != 2 || details.Credits.Cast[1].Name != "Brad Pitt" {
		t.Fatalf("unexpected cast %+v", details.Credits.Cast)
	}
}

func TestFetchDetailsNotFoundIsNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"not found"}`, http.StatusNotFound)
	})

	details, err := client.FetchDetails(context.Background(), 999999, models.KindMovie)
	if err != nil {
		t.Fatalf("expected 404 to be absorbed, got %v", err)
	}
	if details != nil {
		t.Fatalf("expected nil details, got %+v", details)
	}
}

func TestServerErrorYieldsUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := client.FetchPopular(context.Background(), models.KindMovie, 1)
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", ue.Status)
	}
	if ue.Endpoint != "movie/popular" {
		t.Fatalf("unexpected endpoint %q", ue.Endpoint)
	}
}

func TestUnconfiguredKeyFailsWithoutRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	client := NewClient("", srv.URL, srv.Client())
	_, err := client.Search(context.Background(), "anything", "")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if requests != 0 {
		t.Fatalf("expected no request without an api key, got %d", requests)
	}
}
