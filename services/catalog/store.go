package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cinebase/models"
)

var (
	// ErrValidation marks a candidate missing a required field.
	ErrValidation = errors.New("invalid media candidate")
	// ErrNotFound marks a lookup with no fallback defined.
	ErrNotFound = errors.New("media not found")
)

// Store is the persistence abstraction behind the mediator. Lookups return
// (nil, nil) when no record exists. Implementations must keep
// (TMDBID, MediaType) unique under concurrent Create calls: creating a
// candidate whose external key already exists returns the stored record
// unchanged.
type Store interface {
	ListPage(page, pageSize int, kind models.MediaKind) ([]models.MediaRecord, error)
	GetByID(id int64) (*models.MediaRecord, error)
	GetByExternal(tmdbID int64, kind models.MediaKind) (*models.MediaRecord, error)
	Search(term string, kind models.MediaKind) ([]models.MediaRecord, error)
	Create(candidate models.MediaCandidate) (*models.MediaRecord, error)
}

// externalKey is the natural key of a record.
type externalKey struct {
	tmdbID int64
	kind   models.MediaKind
}

// MemoryStore keeps the catalog in process memory. Records are held in
// insertion order, which is what pagination and search tie-breaking are
// defined over.
type MemoryStore struct {
	mu       sync.RWMutex
	records  []models.MediaRecord
	byID     map[int64]int
	byExtern map[externalKey]int
	nextID   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[int64]int),
		byExtern: make(map[externalKey]int),
		nextID:   1,
	}
}

func (s *MemoryStore) ListPage(page, pageSize int, kind models.MediaKind) ([]models.MediaRecord, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := s.filterLocked(kind)
	start := (page - 1) * pageSize
	if start >= len(filtered) {
		return []models.MediaRecord{}, nil
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return copyRecords(filtered[start:end]), nil
}

func (s *MemoryStore) GetByID(id int64) (*models.MediaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	rec := s.records[idx]
	return &rec, nil
}

func (s *MemoryStore) GetByExternal(tmdbID int64, kind models.MediaKind) (*models.MediaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byExtern[externalKey{tmdbID: tmdbID, kind: kind}]
	if !ok {
		return nil, nil
	}
	rec := s.records[idx]
	return &rec, nil
}

func (s *MemoryStore) Search(term string, kind models.MediaKind) ([]models.MediaRecord, error) {
	s.mu.RLock()
	matches := make([]models.MediaRecord, 0)
	for _, rec := range s.records {
		if kind != "" && rec.MediaType != kind {
			continue
		}
		if RecordMatches(rec, term) {
			matches = append(matches, rec)
		}
	}
	s.mu.RUnlock()

	// Stable keeps insertion order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score() > matches[j].Score()
	})
	return matches, nil
}

func (s *MemoryStore) Create(candidate models.MediaCandidate) (*models.MediaRecord, error) {
	if err := ValidateCandidate(candidate); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := externalKey{tmdbID: candidate.TMDBID, kind: candidate.MediaType}
	if idx, ok := s.byExtern[key]; ok {
		rec := s.records[idx]
		return &rec, nil
	}

	rec := RecordFromCandidate(candidate)
	rec.ID = s.nextID
	s.nextID++

	s.records = append(s.records, rec)
	idx := len(s.records) - 1
	s.byID[rec.ID] = idx
	s.byExtern[key] = idx

	return &rec, nil
}

// filterLocked returns records of the given kind in insertion order.
// Must be called with mu held.
func (s *MemoryStore) filterLocked(kind models.MediaKind) []models.MediaRecord {
	if kind == "" {
		return s.records
	}
	filtered := make([]models.MediaRecord, 0, len(s.records))
	for _, rec := range s.records {
		if rec.MediaType == kind {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// RecordMatches reports whether a record matches a search term:
// case-insensitive substring on the title or any genre string.
func RecordMatches(rec models.MediaRecord, term string) bool {
	needle := strings.ToLower(term)
	if strings.Contains(strings.ToLower(rec.Title), needle) {
		return true
	}
	for _, genre := range rec.Genres {
		if strings.Contains(strings.ToLower(genre), needle) {
			return true
		}
	}
	return false
}

// ValidateCandidate checks the required fields of a candidate record.
func ValidateCandidate(c models.MediaCandidate) error {
	if c.TMDBID == 0 {
		return fmt.Errorf("%w: tmdbId is required", ErrValidation)
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if c.MediaType != models.KindMovie && c.MediaType != models.KindSeries {
		return fmt.Errorf("%w: mediaType must be movie or tv", ErrValidation)
	}
	return nil
}

// RecordFromCandidate applies field defaults and builds the stored shape,
// without an ID. Stores assign the ID on insert.
func RecordFromCandidate(c models.MediaCandidate) models.MediaRecord {
	rec := models.MediaRecord{
		TMDBID:       c.TMDBID,
		MediaType:    c.MediaType,
		Title:        c.Title,
		Overview:     c.Overview,
		PosterPath:   c.PosterPath,
		BackdropPath: c.BackdropPath,
		ReleaseDate:  c.ReleaseDate,
		VoteAverage:  c.VoteAverage,
		Runtime:      c.Runtime,
		Genres:       c.Genres,
		Cast:         c.Cast,
	}
	if rec.VoteAverage == "" {
		rec.VoteAverage = "0"
	}
	if rec.Genres == nil {
		rec.Genres = []string{}
	}
	if rec.Cast == nil {
		rec.Cast = []string{}
	}
	return rec
}

func copyRecords(src []models.MediaRecord) []models.MediaRecord {
	out := make([]models.MediaRecord, len(src))
	copy(out, src)
	return out
}
