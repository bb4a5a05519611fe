package favorites

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"cinebase/models"
)

var (
	ErrMediaIDRequired   = errors.New("media id is required")
	ErrMediaTypeRequired = errors.New("media type is required")
)

// recordGetter resolves favorite references against the catalog store.
type recordGetter interface {
	GetByID(id int64) (*models.MediaRecord, error)
}

// Service is the favorites ledger. It holds non-owning references into the
// catalog store; entries are never pruned when the referenced record goes
// away, they are just skipped on List. When a storage directory is given the
// ledger persists to favorites.json across restarts.
type Service struct {
	mu      sync.RWMutex
	path    string
	entries map[int64]models.Favorite
	nextID  int64

	store recordGetter
}

// NewService creates the ledger. storageDir may be blank for a purely
// in-memory ledger.
func NewService(storageDir string, store recordGetter) (*Service, error) {
	svc := &Service{
		entries: make(map[int64]models.Favorite),
		nextID:  1,
		store:   store,
	}

	if strings.TrimSpace(storageDir) != "" {
		if err := os.MkdirAll(storageDir, 0o755); err != nil {
			return nil, fmt.Errorf("create favorites dir: %w", err)
		}
		svc.path = filepath.Join(storageDir, "favorites.json")
		if err := svc.load(); err != nil {
			return nil, err
		}
	}

	return svc, nil
}

// Add records a favorite. No existence check is made against the catalog
// store; a dangling reference shows up as a gap on List, not an error.
func (s *Service) Add(mediaID int64, kind models.MediaKind) (models.Favorite, error) {
	if mediaID == 0 {
		return models.Favorite{}, ErrMediaIDRequired
	}
	if kind == "" {
		return models.Favorite{}, ErrMediaTypeRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := models.Favorite{
		ID:        s.nextID,
		MediaID:   mediaID,
		MediaType: kind,
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.entries[entry.ID] = entry
	if err := s.saveLocked(); err != nil {
		delete(s.entries, entry.ID)
		return models.Favorite{}, err
	}
	return entry, nil
}

// Remove deletes an entry by its ledger id. Returns true when an entry
// existed and was removed.
func (s *Service) Remove(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return false, nil
	}
	delete(s.entries, id)
	if err := s.saveLocked(); err != nil {
		s.entries[id] = entry
		return false, err
	}
	return true, nil
}

// List resolves every entry against the catalog store, oldest first.
// Entries whose record no longer exists are silently dropped.
func (s *Service) List() ([]models.MediaRecord, error) {
	s.mu.RLock()
	entries := make([]models.Favorite, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	sortByID(entries)

	records := make([]models.MediaRecord, 0, len(entries))
	for _, entry := range entries {
		rec, err := s.store.GetByID(entry.MediaID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

func sortByID(entries []models.Favorite) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
}

// load reads the ledger from disk, restoring the id cursor past the highest
// stored entry.
func (s *Service) load() error {
	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open favorites file: %w", err)
	}
	defer file.Close()

	var stored []models.Favorite
	if err := json.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("decode favorites: %w", err)
	}

	for _, entry := range stored {
		s.entries[entry.ID] = entry
		if entry.ID >= s.nextID {
			s.nextID = entry.ID + 1
		}
	}
	return nil
}

// saveLocked writes the ledger to disk atomically. Must be called with mu
// held.
func (s *Service) saveLocked() error {
	if s.path == "" {
		return nil
	}

	entries := make([]models.Favorite, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	sortByID(entries)

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create favorites temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close favorites temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace favorites file: %w", err)
	}
	return nil
}
