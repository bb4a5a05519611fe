package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"cinebase/models"
	"cinebase/services/catalog"
)

// MediaRepository is the sqlite-backed catalog store. The UNIQUE
// (tmdb_id, media_type) constraint enforces the external-key invariant at
// the schema level; list/search semantics match the in-memory store.
type MediaRepository struct {
	db *sql.DB
}

var _ catalog.Store = (*MediaRepository)(nil)

func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

const mediaColumns = `id, tmdb_id, media_type, title, overview, poster_path,
	backdrop_path, release_date, vote_average, runtime, genres, cast_names`

func (r *MediaRepository) ListPage(page, pageSize int, kind models.MediaKind) ([]models.MediaRecord, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = catalog.DefaultPageSize
	}
	offset := (page - 1) * pageSize

	query := `SELECT ` + mediaColumns + ` FROM media`
	args := []any{}
	if kind != "" {
		query += ` WHERE media_type = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, pageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *MediaRepository) GetByID(id int64) (*models.MediaRecord, error) {
	row := r.db.QueryRow(`SELECT `+mediaColumns+` FROM media WHERE id = ?`, id)
	return scanRecord(row)
}

func (r *MediaRepository) GetByExternal(tmdbID int64, kind models.MediaKind) (*models.MediaRecord, error) {
	row := r.db.QueryRow(
		`SELECT `+mediaColumns+` FROM media WHERE tmdb_id = ? AND media_type = ?`,
		tmdbID, string(kind),
	)
	return scanRecord(row)
}

func (r *MediaRepository) Search(term string, kind models.MediaKind) ([]models.MediaRecord, error) {
	// Substring matching against individual genre strings needs the decoded
	// slices, so candidate rows are scanned and filtered here rather than
	// with LIKE over the serialized column.
	query := `SELECT ` + mediaColumns + ` FROM media`
	args := []any{}
	if kind != "" {
		query += ` WHERE media_type = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search media: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	matches := records[:0]
	for _, rec := range records {
		if catalog.RecordMatches(rec, term) {
			matches = append(matches, rec)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score() > matches[j].Score()
	})
	return matches, nil
}

func (r *MediaRepository) Create(candidate models.MediaCandidate) (*models.MediaRecord, error) {
	if err := catalog.ValidateCandidate(candidate); err != nil {
		return nil, err
	}
	rec := catalog.RecordFromCandidate(candidate)

	genres, err := json.Marshal(rec.Genres)
	if err != nil {
		return nil, fmt.Errorf("encode genres: %w", err)
	}
	cast, err := json.Marshal(rec.Cast)
	if err != nil {
		return nil, fmt.Errorf("encode cast: %w", err)
	}

	// ON CONFLICT DO NOTHING keeps the first record for an external key;
	// the follow-up select returns whichever record won.
	_, err = r.db.Exec(`
		INSERT INTO media (tmdb_id, media_type, title, overview, poster_path,
			backdrop_path, release_date, vote_average, runtime, genres, cast_names)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tmdb_id, media_type) DO NOTHING`,
		rec.TMDBID, string(rec.MediaType), rec.Title, rec.Overview, rec.PosterPath,
		rec.BackdropPath, rec.ReleaseDate, rec.VoteAverage, rec.Runtime,
		string(genres), string(cast),
	)
	if err != nil {
		return nil, fmt.Errorf("insert media: %w", err)
	}

	stored, err := r.GetByExternal(rec.TMDBID, rec.MediaType)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("media row missing after insert tmdbId=%d", rec.TMDBID)
	}
	return stored, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.MediaRecord, error) {
	var rec models.MediaRecord
	var genres, cast string
	err := row.Scan(
		&rec.ID, &rec.TMDBID, &rec.MediaType, &rec.Title, &rec.Overview,
		&rec.PosterPath, &rec.BackdropPath, &rec.ReleaseDate, &rec.VoteAverage,
		&rec.Runtime, &genres, &cast,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan media row: %w", err)
	}
	if err := json.Unmarshal([]byte(genres), &rec.Genres); err != nil {
		return nil, fmt.Errorf("decode genres: %w", err)
	}
	if err := json.Unmarshal([]byte(cast), &rec.Cast); err != nil {
		return nil, fmt.Errorf("decode cast: %w", err)
	}
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]models.MediaRecord, error) {
	records := []models.MediaRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media rows: %w", err)
	}
	return records, nil
}
