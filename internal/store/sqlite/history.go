package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/taplistapp/taplist-server/internal/domain"
	"github.com/taplistapp/taplist-server/internal/errors"
)

const historyColumns = `id, brewery, name, style, description, catalog_url,
	abv, ibu, usage_count, last_used_at`

// scanHistoryEntry scans a row into a domain.HistoryEntry.
func scanHistoryEntry(scanner interface{ Scan(dest ...any) error }) (*domain.HistoryEntry, error) {
	var e domain.HistoryEntry
	var abv, ibu sql.NullFloat64
	var lastUsed string

	err := scanner.Scan(
		&e.ID,
		&e.Brewery,
		&e.Name,
		&e.Style,
		&e.Description,
		&e.CatalogURL,
		&abv,
		&ibu,
		&e.UsageCount,
		&lastUsed,
	)
	if err != nil {
		return nil, err
	}

	e.ABV = floatPtr(abv)
	e.IBU = floatPtr(ibu)
	e.LastUsedAt, err = parseTime(lastUsed)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// RecordUsage records one use of a (brewery, name) pair. A new pair starts at
// usage_count 1; a known pair is incremented and its metadata overwritten with
// the latest values. The upsert is a single statement, so concurrent writers
// never lose an increment.
func (s *Store) RecordUsage(ctx context.Context, brewery, name string, meta domain.BeverageMetadata) error {
	if brewery == "" || name == "" {
		return errors.Validation("brewery and name must not be empty")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO beer_history (brewery, name, style, description, catalog_url, abv, ibu, usage_count, last_used_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT (brewery, name) DO UPDATE SET
			usage_count  = usage_count + 1,
			style        = excluded.style,
			description  = excluded.description,
			catalog_url  = excluded.catalog_url,
			abv          = excluded.abv,
			ibu          = excluded.ibu,
			last_used_at = excluded.last_used_at`,
		brewery, name, meta.Style, meta.Description, meta.CatalogURL,
		nullFloat(meta.ABV), nullFloat(meta.IBU), formatTime(time.Now()),
	)
	if err != nil {
		return errors.Wrapf(err, errors.CodeStoreUnavailable, "record usage of %s %s", brewery, name)
	}

	s.logger.Debug("history usage recorded", "brewery", brewery, "name", name)
	return nil
}

// TopHistory returns the most-used entries, most recent first among ties.
func (s *Store) TopHistory(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM beer_history
		ORDER BY usage_count DESC, last_used_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStoreUnavailable, "list history")
	}
	defer rows.Close()

	return collectHistory(rows)
}

// SearchHistory returns entries whose brewery or name contains term,
// case-insensitive, ordered like TopHistory.
func (s *Store) SearchHistory(ctx context.Context, term string, limit int) ([]*domain.HistoryEntry, error) {
	pattern := "%" + escapeLike(term) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM beer_history
		WHERE brewery LIKE ? ESCAPE '\' COLLATE NOCASE
		   OR name LIKE ? ESCAPE '\' COLLATE NOCASE
		ORDER BY usage_count DESC, last_used_at DESC
		LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStoreUnavailable, "search history")
	}
	defer rows.Close()

	return collectHistory(rows)
}

func collectHistory(rows *sql.Rows) ([]*domain.HistoryEntry, error) {
	var entries []*domain.HistoryEntry
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeStoreUnavailable, "scan history entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeStoreUnavailable, "read history rows")
	}
	return entries, nil
}

// GetHistoryEntry returns one entry by ID.
func (s *Store) GetHistoryEntry(ctx context.Context, id int64) (*domain.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+historyColumns+` FROM beer_history WHERE id = ?`, id)

	e, err := scanHistoryEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("history entry %d not found", id)
		}
		return nil, errors.Wrapf(err, errors.CodeStoreUnavailable, "get history entry %d", id)
	}
	return e, nil
}

// DeleteHistoryEntry removes one entry by ID.
func (s *Store) DeleteHistoryEntry(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM beer_history WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, errors.CodeStoreUnavailable, "delete history entry %d", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, errors.CodeStoreUnavailable, "delete history entry %d", id)
	}
	if affected == 0 {
		return errors.NotFoundf("history entry %d not found", id)
	}
	return nil
}

// DeleteAllHistory clears the cache and returns how many entries were removed.
func (s *Store) DeleteAllHistory(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM beer_history`)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeStoreUnavailable, "clear history")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeStoreUnavailable, "clear history")
	}

	s.logger.Info("history cleared", "deleted", affected)
	return int(affected), nil
}
