package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// MediaKind discriminates between the two catalog shapes. The values match
// the TMDB media_type discriminator so they can flow straight from the wire.
type MediaKind string

const (
	KindMovie  MediaKind = "movie"
	KindSeries MediaKind = "tv"
)

// ParseMediaKind normalizes a caller-supplied media type. The empty string
// is returned as-is (meaning "no filter"); anything else must be a known kind.
func ParseMediaKind(s string) (MediaKind, bool) {
	switch MediaKind(s) {
	case "", KindMovie, KindSeries:
		return MediaKind(s), true
	}
	return "", false
}

// MediaRecord is a stored catalog entry. Records are immutable once created;
// a duplicate ingest returns the existing record rather than mutating it.
type MediaRecord struct {
	ID           int64     `json:"id"`
	TMDBID       int64     `json:"tmdbId"`
	MediaType    MediaKind `json:"mediaType"`
	Title        string    `json:"title"`
	Overview     string    `json:"overview"`
	PosterPath   *string   `json:"posterPath"`
	BackdropPath *string   `json:"backdropPath"`
	ReleaseDate  string    `json:"releaseDate"`
	VoteAverage  string    `json:"voteAverage"`
	Runtime      int       `json:"runtime"`
	Genres       []string  `json:"genres"`
	Cast         []string  `json:"cast"`
}

// Score parses the vote average for sorting. The provider's formatting is
// preserved in VoteAverage; anything unparseable sorts as zero.
func (m MediaRecord) Score() float64 {
	v, err := strconv.ParseFloat(m.VoteAverage, 64)
	if err != nil {
		return 0
	}
	return v
}

// MediaCandidate is a normalized record awaiting a store-assigned ID.
type MediaCandidate struct {
	TMDBID       int64
	MediaType    MediaKind
	Title        string
	Overview     string
	PosterPath   *string
	BackdropPath *string
	ReleaseDate  string
	VoteAverage  string
	Runtime      int
	Genres       []string
	Cast         []string
}

// Favorite references a MediaRecord by ID. The ledger never owns the record;
// a favorite whose record is gone is simply skipped when listing.
type Favorite struct {
	ID        int64     `json:"id"`
	MediaID   int64     `json:"mediaId"`
	MediaType MediaKind `json:"mediaType"`
	CreatedAt time.Time `json:"createdAt"`
}

// RawItem is one entry of a TMDB listing or search response. Movie and
// series payloads populate different name/date fields; Kind says which
// shape this item is and is always set by the client (from the endpoint,
// or from the per-item media_type on multi search).
type RawItem struct {
	ID           int64       `json:"id"`
	Kind         MediaKind   `json:"media_type"`
	Title        string      `json:"title"`
	Name         string      `json:"name"`
	Overview     string      `json:"overview"`
	PosterPath   *string     `json:"poster_path"`
	BackdropPath *string     `json:"backdrop_path"`
	ReleaseDate  string      `json:"release_date"`
	FirstAirDate string      `json:"first_air_date"`
	VoteAverage  json.Number `json:"vote_average"`
}

// TitleDetails is the per-title enrichment (detail endpoint with credits).
type TitleDetails struct {
	Runtime        int   `json:"runtime"`
	EpisodeRunTime []int `json:"episode_run_time"`
	Genres         []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Credits struct {
		Cast []struct {
			Name string `json:"name"`
		} `json:"cast"`
	} `json:"credits"`
}
