package cache

import (
	"context"
	"database/sql"
	"delivery-insertion-planner/internal/platform/obs"
	"errors"
	"fmt"
	"strings"
)

// SQLite backed cache mapping coordinate keys to resolved addresses.
// Keys are expected to come from Coordinates.Key.
type SqliteAddressCache struct {
	DB *sql.DB
}

func NewSqliteAddressCache(db *sql.DB) *SqliteAddressCache {
	return &SqliteAddressCache{DB: db}
}

// Fetch cached addresses for the given coordinate keys.
func (s *SqliteAddressCache) GetMany(ctx context.Context, keys []string) (_ map[string]string, err error) {
	defer obs.Time(ctx, "address.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("address cache: db is nil")
	}

	uniq := uniqueKeys(keys)
	if len(uniq) == 0 {
		return map[string]string{}, nil
	}

	ph := make([]string, 0, len(uniq))
	args := make([]any, 0, len(uniq))
	for _, k := range uniq {
		ph = append(ph, "?")
		args = append(args, k)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
		coord_key,
		address
	FROM reverse_geocode_cache
	WHERE coord_key IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get address cache: query reverse_geocode_cache table: %w", err)
	}
	defer rows.Close()

	return scanAddresses(rows, len(uniq))
}

// Store coordinate key -> address mappings in the cache.
func (s *SqliteAddressCache) PutMany(ctx context.Context, addresses map[string]string) error {
	if s.DB == nil {
		return errors.New("address cache: db is nil")
	}

	if len(addresses) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert address cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO reverse_geocode_cache (
		coord_key,
		address
	)
	VALUES (?, ?);
	`)
	if err != nil {
		return fmt.Errorf("insert address cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for key, addr := range addresses {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("insert address cache: empty coordinate key")
		}

		if _, err := stmt.ExecContext(ctx, key, addr); err != nil {
			return fmt.Errorf("insert address cache key=%q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert address cache commit: %w", err)
	}

	return nil
}
