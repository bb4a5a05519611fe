package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cinebase/models"
	"cinebase/services/favorites"
)

type favoritesService interface {
	Add(mediaID int64, kind models.MediaKind) (models.Favorite, error)
	Remove(id int64) (bool, error)
	List() ([]models.MediaRecord, error)
}

var _ favoritesService = (*favorites.Service)(nil)

type FavoritesHandler struct {
	Service favoritesService
}

func NewFavoritesHandler(service favoritesService) *FavoritesHandler {
	return &FavoritesHandler{Service: service}
}

// List returns the favorited records, resolved against the catalog.
// Favorites whose record is gone are omitted, not errors.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.List()
	if err != nil {
		log.Printf("[favorites] list error: %v", err)
		respondMessage(w, http.StatusInternalServerError, "Failed to fetch favorites")
		return
	}
	respondJSON(w, records)
}

// Add creates a favorite entry. The referenced record is not checked for
// existence, matching the catalog's non-owning reference model.
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MediaID   int64  `json:"mediaId"`
		MediaType string `json:"mediaType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondMessage(w, http.StatusBadRequest, "MediaId and mediaType are required")
		return
	}

	kind, ok := models.ParseMediaKind(body.MediaType)
	if body.MediaID == 0 || !ok || kind == "" {
		respondMessage(w, http.StatusBadRequest, "MediaId and mediaType are required")
		return
	}

	entry, err := h.Service.Add(body.MediaID, kind)
	if err != nil {
		log.Printf("[favorites] add error mediaId=%d: %v", body.MediaID, err)
		respondMessage(w, http.StatusInternalServerError, "Failed to add to favorites")
		return
	}
	respondJSON(w, entry)
}

// Remove deletes a favorite by its ledger id.
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Favorite not found")
		return
	}

	removed, err := h.Service.Remove(id)
	if err != nil {
		log.Printf("[favorites] remove error id=%d: %v", id, err)
		respondMessage(w, http.StatusInternalServerError, "Failed to remove from favorites")
		return
	}
	if !removed {
		respondMessage(w, http.StatusNotFound, "Favorite not found")
		return
	}
	respondJSON(w, map[string]string{"message": "Removed from favorites"})
}
