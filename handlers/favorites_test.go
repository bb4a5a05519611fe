package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"cinebase/models"
)

type stubFavorites struct {
	added   []models.Favorite
	removed bool
	records []models.MediaRecord
	err     error
}

func (s *stubFavorites) Add(mediaID int64, kind models.MediaKind) (models.Favorite, error) {
	if s.err != nil {
		return models.Favorite{}, s.err
	}
	entry := models.Favorite{ID: int64(len(s.added) + 1), MediaID: mediaID, MediaType: kind, CreatedAt: time.Now()}
	s.added = append(s.added, entry)
	return entry, nil
}

func (s *stubFavorites) Remove(id int64) (bool, error) {
	return s.removed, s.err
}

func (s *stubFavorites) List() ([]models.MediaRecord, error) {
	return s.records, s.err
}

func TestFavoritesListReturnsRecords(t *testing.T) {
	h := NewFavoritesHandler(&stubFavorites{records: []models.MediaRecord{{ID: 1, Title: "Heat"}}})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/favorites", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []models.MediaRecord
	decodeBody(t, rec, &got)
	if len(got) != 1 || got[0].Title != "Heat" {
		t.Fatalf("unexpected body %+v", got)
	}
}

func TestFavoritesListErrorIs500(t *testing.T) {
	h := NewFavoritesHandler(&stubFavorites{err: errors.New("ledger broken")})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/favorites", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestFavoritesAdd(t *testing.T) {
	stub := &stubFavorites{}
	h := NewFavoritesHandler(stub)

	body := strings.NewReader(`{"mediaId": 7, "mediaType": "movie"}`)
	rec := httptest.NewRecorder()
	h.Add(rec, httptest.NewRequest(http.MethodPost, "/api/favorites", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got models.Favorite
	decodeBody(t, rec, &got)
	if got.MediaID != 7 || got.MediaType != models.KindMovie {
		t.Fatalf("unexpected favorite %+v", got)
	}
	if len(stub.added) != 1 {
		t.Fatalf("expected one ledger entry, got %d", len(stub.added))
	}
}

func TestFavoritesAddRejectsBadBodies(t *testing.T) {
	cases := map[string]string{
		"not json":     `{`,
		"missing id":   `{"mediaType": "movie"}`,
		"zero id":      `{"mediaId": 0, "mediaType": "movie"}`,
		"missing type": `{"mediaId": 7}`,
		"unknown type": `{"mediaId": 7, "mediaType": "album"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			stub := &stubFavorites{}
			h := NewFavoritesHandler(stub)

			rec := httptest.NewRecorder()
			h.Add(rec, httptest.NewRequest(http.MethodPost, "/api/favorites", strings.NewReader(payload)))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			var body map[string]string
			decodeBody(t, rec, &body)
			if body["message"] != "MediaId and mediaType are required" {
				t.Fatalf("unexpected message %q", body["message"])
			}
			if len(stub.added) != 0 {
				t.Fatal("expected no ledger entry")
			}
		})
	}
}

func TestFavoritesRemove(t *testing.T) {
	h := NewFavoritesHandler(&stubFavorites{removed: true})

	req := mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/api/favorites/3", nil), map[string]string{"id": "3"})
	rec := httptest.NewRecorder()
	h.Remove(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["message"] != "Removed from favorites" {
		t.Fatalf("unexpected message %q", body["message"])
	}
}

func TestFavoritesRemoveUnknownIs404(t *testing.T) {
	h := NewFavoritesHandler(&stubFavorites{removed: false})

	req := mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/api/favorites/99", nil), map[string]string{"id": "99"})
	rec := httptest.NewRecorder()
	h.Remove(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["message"] != "Favorite not found" {
		t.Fatalf("unexpected message %q", body["message"])
	}
}
