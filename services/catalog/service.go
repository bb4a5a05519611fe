package catalog

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"

	"cinebase/models"
)

const (
	// DefaultPageSize matches the provider's listing page size.
	DefaultPageSize = 20

	// maxConcurrentFetches bounds per-item detail fan-out within one query.
	maxConcurrentFetches = 8
)

// upstreamClient is the provider surface the mediator consumes.
type upstreamClient interface {
	FetchPopular(ctx context.Context, kind models.MediaKind, page int) ([]models.RawItem, error)
	Search(ctx context.Context, term string, kind models.MediaKind) ([]models.RawItem, error)
	FetchDetails(ctx context.Context, tmdbID int64, kind models.MediaKind) (*models.TitleDetails, error)
}

// Service mediates catalog queries: local store first, provider on a miss.
// Miss-path results are normalized, deduplicated against the store by
// external key, persisted, and returned as stable local records.
type Service struct {
	store     Store
	upstream  upstreamClient
	embedBase string

	// flight serializes create-or-get per external key so concurrent
	// misses for the same title observe a single record.
	flight singleflight.Group
}

func NewService(store Store, upstream upstreamClient, embedBase string) *Service {
	return &Service{
		store:     store,
		upstream:  upstream,
		embedBase: strings.TrimRight(embedBase, "/"),
	}
}

// ListPage returns one page of the catalog. A non-empty local page
// short-circuits; otherwise the provider's popular listing is ingested and
// returned in provider order.
func (s *Service) ListPage(ctx context.Context, page int, kind models.MediaKind) ([]models.MediaRecord, error) {
	stored, err := s.store.ListPage(page, DefaultPageSize, kind)
	if err != nil {
		return nil, err
	}
	if len(stored) > 0 {
		return stored, nil
	}

	raw, err := s.upstream.FetchPopular(ctx, kind, page)
	if err != nil {
		return nil, fmt.Errorf("fetch popular %s: %w", kind, err)
	}
	return s.ingest(ctx, raw), nil
}

// Search returns catalog records matching the term. Local matches
// short-circuit; provider results are ingested and sorted by vote average
// descending (stable, ties keep provider order). No minimum term length is
// imposed here.
func (s *Service) Search(ctx context.Context, term string, kind models.MediaKind) ([]models.MediaRecord, error) {
	stored, err := s.store.Search(term, kind)
	if err != nil {
		return nil, err
	}
	if len(stored) > 0 {
		return stored, nil
	}

	raw, err := s.upstream.Search(ctx, term, kind)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}
	records := s.ingest(ctx, raw)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score() > records[j].Score()
	})
	return records, nil
}

// GetByID is a pure store lookup with no upstream fallback.
func (s *Service) GetByID(id int64) (*models.MediaRecord, error) {
	rec, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// StreamURL builds the embed URL for a title. No store or provider
// interaction; an unset kind defaults to movie.
func (s *Service) StreamURL(tmdbID int64, kind models.MediaKind) string {
	if kind == "" {
		kind = models.KindMovie
	}
	return fmt.Sprintf("%s/%s/%d", s.embedBase, kind, tmdbID)
}

// ingest resolves raw provider items and returns the surviving records in
// provider order. Detail fetches fan out concurrently; the store step then
// runs sequentially in item order, so store insertion order matches provider
// order and a cached re-query returns the same page. Items whose processing
// fails are dropped, never retried, and never fail the enclosing query. The
// work runs on a detached context so an abandoned request still warms the
// store.
func (s *Service) ingest(ctx context.Context, items []models.RawItem) []models.MediaRecord {
	detached := context.WithoutCancel(ctx)

	candidates := make([]*models.MediaCandidate, len(items))

	p := pool.New().WithMaxGoroutines(maxConcurrentFetches)
	for i, item := range items {
		p.Go(func() {
			details, err := s.upstream.FetchDetails(detached, item.ID, item.Kind)
			if err != nil {
				log.Printf("[catalog] dropping item tmdbId=%d kind=%s: %v", item.ID, item.Kind, err)
				return
			}
			candidate := Normalize(item, details)
			candidates[i] = &candidate
		})
	}
	p.Wait()

	records := make([]models.MediaRecord, 0, len(items))
	for i, item := range items {
		if candidates[i] == nil {
			continue
		}
		rec, err := s.createOrGet(item, *candidates[i])
		if err != nil {
			log.Printf("[catalog] dropping item tmdbId=%d kind=%s: %v", item.ID, item.Kind, err)
			continue
		}
		records = append(records, *rec)
	}
	return records
}

// createOrGet persists a candidate, single-flighted per external key: the
// first successfully created or discovered record for a key wins, later
// attempts observe the same record.
func (s *Service) createOrGet(raw models.RawItem, candidate models.MediaCandidate) (*models.MediaRecord, error) {
	key := fmt.Sprintf("%s:%d", raw.Kind, raw.ID)
	v, err, _ := s.flight.Do(key, func() (any, error) {
		existing, err := s.store.GetByExternal(raw.ID, raw.Kind)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
		return s.store.Create(candidate)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.MediaRecord), nil
}
