package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"vehicle-route-service/internal/platform/obs"
	"vehicle-route-service/internal/ports"
)

// SQLMatrixCache is a SQL-backed cache for raw travel matrices keyed by
// their coordinate list.
type SQLMatrixCache struct {
	DB *sql.DB
}

func NewSQLMatrixCache(db *sql.DB) *SQLMatrixCache {
	return &SQLMatrixCache{DB: db}
}

func (s *SQLMatrixCache) Get(ctx context.Context, key string) (_ ports.RawTravelMatrix, _ bool, err error) {
	defer obs.Time(ctx, "matrix.cache.Get")(&err)

	if s.DB == nil {
		return ports.RawTravelMatrix{}, false, errors.New("matrix cache: db is nil")
	}
	if key == "" {
		return ports.RawTravelMatrix{}, false, errors.New("get matrix cache: key must not be empty")
	}

	q := `
	SELECT durations, distances
	FROM matrix_cache
	WHERE cache_key = $1;
	`

	var durationsJSON, distancesJSON []byte
	row := s.DB.QueryRowContext(ctx, q, key)
	if err := row.Scan(&durationsJSON, &distancesJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ports.RawTravelMatrix{}, false, nil
		}
		return ports.RawTravelMatrix{}, false, fmt.Errorf("get matrix cache: query matrix_cache table: %w", err)
	}

	var out ports.RawTravelMatrix
	if err := json.Unmarshal(durationsJSON, &out.Durations); err != nil {
		return ports.RawTravelMatrix{}, false, fmt.Errorf("get matrix cache: parse durations: %w", err)
	}
	if err := json.Unmarshal(distancesJSON, &out.Distances); err != nil {
		return ports.RawTravelMatrix{}, false, fmt.Errorf("get matrix cache: parse distances: %w", err)
	}

	return out, true, nil
}

func (s *SQLMatrixCache) Put(ctx context.Context, key string, m ports.RawTravelMatrix) (err error) {
	defer obs.Time(ctx, "matrix.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("matrix cache: db is nil")
	}
	if key == "" {
		return errors.New("insert matrix cache: key must not be empty")
	}

	durationsJSON, err := json.Marshal(m.Durations)
	if err != nil {
		return fmt.Errorf("insert matrix cache: marshal durations: %w", err)
	}
	distancesJSON, err := json.Marshal(m.Distances)
	if err != nil {
		return fmt.Errorf("insert matrix cache: marshal distances: %w", err)
	}

	q := `
	INSERT INTO matrix_cache (cache_key, durations, distances)
	VALUES ($1, $2, $3)
	ON CONFLICT (cache_key) DO UPDATE
	SET durations = EXCLUDED.durations,
		distances = EXCLUDED.distances;
	`

	if _, err := s.DB.ExecContext(ctx, q, key, durationsJSON, distancesJSON); err != nil {
		return fmt.Errorf("insert matrix cache key=%q: %w", key, err)
	}

	return nil
}

// InitSchema creates the matrix cache table when it does not exist yet.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	q := `
	CREATE TABLE IF NOT EXISTS matrix_cache (
		cache_key TEXT PRIMARY KEY,
		durations JSONB NOT NULL,
		distances JSONB NOT NULL
	);
	`

	if _, err := db.Exec(q); err != nil {
		return fmt.Errorf("init schema: create matrix_cache: %w", err)
	}

	return nil
}
