package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cinebase/models"
	"cinebase/services/catalog"
)

// minSearchLength is the boundary guard: shorter terms are answered with an
// empty list without dispatching to the catalog service.
const minSearchLength = 3

type catalogService interface {
	ListPage(ctx context.Context, page int, kind models.MediaKind) ([]models.MediaRecord, error)
	Search(ctx context.Context, term string, kind models.MediaKind) ([]models.MediaRecord, error)
	GetByID(id int64) (*models.MediaRecord, error)
	StreamURL(tmdbID int64, kind models.MediaKind) string
}

var _ catalogService = (*catalog.Service)(nil)

type CatalogHandler struct {
	Service catalogService
}

func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{Service: service}
}

// Movies lists popular titles, page by page.
func (h *CatalogHandler) Movies(w http.ResponseWriter, r *http.Request) {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil && parsed > 0 {
			page = parsed
		}
	}
	kind := parseKindParam(r, models.KindMovie)

	records, err := h.Service.ListPage(r.Context(), page, kind)
	if err != nil {
		log.Printf("[catalog] list error page=%d kind=%s: %v", page, kind, err)
		respondMessage(w, http.StatusInternalServerError, "Failed to fetch media")
		return
	}
	respondJSON(w, records)
}

// Search answers catalog searches. A missing query is a client error; terms
// too short to be useful are answered locally with an empty list.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		respondMessage(w, http.StatusBadRequest, "Search query is required")
		return
	}
	if len(term) < minSearchLength {
		respondJSON(w, []models.MediaRecord{})
		return
	}
	kind := parseKindParam(r, "")

	records, err := h.Service.Search(r.Context(), term, kind)
	if err != nil {
		log.Printf("[catalog] search error q=%q kind=%s: %v", term, kind, err)
		respondMessage(w, http.StatusInternalServerError, "Failed to search media")
		return
	}
	respondJSON(w, records)
}

// Media returns a single record by its local id. No upstream fallback.
func (h *CatalogHandler) Media(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Media not found")
		return
	}

	rec, err := h.Service.GetByID(id)
	if errors.Is(err, catalog.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, "Media not found")
		return
	}
	if err != nil {
		log.Printf("[catalog] get error id=%d: %v", id, err)
		respondMessage(w, http.StatusInternalServerError, "Failed to fetch media details")
		return
	}
	respondJSON(w, rec)
}

// StreamResponse carries the embed URL for a title.
type StreamResponse struct {
	StreamURL string `json:"streamUrl"`
}

// Stream builds the embed URL for a title. Pure string construction, no
// store or upstream interaction; the caller's mediaType goes into the URL
// verbatim, the embed provider resolves it.
func (h *CatalogHandler) Stream(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := strconv.ParseInt(mux.Vars(r)["tmdbId"], 10, 64)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	kind := models.MediaKind(strings.TrimSpace(r.URL.Query().Get("mediaType")))

	respondJSON(w, StreamResponse{StreamURL: h.Service.StreamURL(tmdbID, kind)})
}

// parseKindParam reads the mediaType query parameter, falling back to the
// given default when absent or unknown.
func parseKindParam(r *http.Request, fallback models.MediaKind) models.MediaKind {
	kind, ok := models.ParseMediaKind(strings.TrimSpace(r.URL.Query().Get("mediaType")))
	if !ok || kind == "" {
		return fallback
	}
	return kind
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
