package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/taplistapp/taplist-server/internal/domain"
	"github.com/taplistapp/taplist-server/internal/errors"
)

// tapColumns is the ordered list of columns selected in tap queries.
// Must match the scan order in scanTap.
const tapColumns = `position, brewery, name, style, price_per_liter,
	description, catalog_url, abv, ibu`

// scanTap scans a sql.Row (or sql.Rows via its Scan method) into a domain.TapAssignment.
func scanTap(scanner interface{ Scan(dest ...any) error }) (*domain.TapAssignment, error) {
	var t domain.TapAssignment
	var abv, ibu sql.NullFloat64

	err := scanner.Scan(
		&t.Position,
		&t.Brewery,
		&t.Name,
		&t.Style,
		&t.PricePerLiter,
		&t.Description,
		&t.CatalogURL,
		&abv,
		&ibu,
	)
	if err != nil {
		return nil, err
	}

	t.ABV = floatPtr(abv)
	t.IBU = floatPtr(ibu)
	return &t, nil
}

// loadServingCosts loads serving costs for a tap in prompt order.
func (s *Store) loadServingCosts(ctx context.Context, position int) ([]domain.ServingCost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT volume, price
		FROM tap_serving_costs
		WHERE position = ?
		ORDER BY sort_order ASC`, position)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var costs []domain.ServingCost
	for rows.Next() {
		var sc domain.ServingCost
		if err := rows.Scan(&sc.Volume, &sc.Price); err != nil {
			return nil, err
		}
		costs = append(costs, sc)
	}
	return costs, rows.Err()
}

// validateTap rejects assignments that violate registry invariants.
// The registry fails closed: invalid values are rejected, never coerced.
func validateTap(tap *domain.TapAssignment) error {
	if tap.Position < 1 {
		return errors.Validationf("tap position must be positive, got %d", tap.Position)
	}
	if tap.Brewery == "" || tap.Name == "" || tap.Style == "" {
		return errors.Validation("brewery, name and style must not be empty")
	}
	if tap.PricePerLiter < 0 {
		return errors.Validationf("price per liter must not be negative, got %g", tap.PricePerLiter)
	}
	for _, sc := range tap.ServingCosts {
		if sc.Volume == "" {
			return errors.Validation("serving volume label must not be empty")
		}
		if sc.Price < 0 {
			return errors.Validationf("serving cost for %s must not be negative, got %g", sc.Volume, sc.Price)
		}
	}
	if tap.ABV != nil && *tap.ABV < 0 {
		return errors.Validationf("abv must not be negative, got %g", *tap.ABV)
	}
	if tap.IBU != nil && *tap.IBU < 0 {
		return errors.Validationf("ibu must not be negative, got %g", *tap.IBU)
	}
	return nil
}

// CreateTap inserts a new tap assignment. The position uniqueness check and
// the insert are a single atomic statement backed by the primary key, so two
// sessions racing for the same position get exactly one success.
func (s *Store) CreateTap(ctx context.Context, tap *domain.TapAssignment) error {
	if err := validateTap(tap); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.CodeStoreUnavailable, "begin create tap")
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	now := formatTime(time.Now())
	_, err = tx.ExecContext(ctx, `
		INSERT INTO taps (position, brewery, name, style, price_per_liter,
			description, catalog_url, abv, ibu, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tap.Position, tap.Brewery, tap.Name, tap.Style, tap.PricePerLiter,
		tap.Description, tap.CatalogURL, nullFloat(tap.ABV), nullFloat(tap.IBU),
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.DuplicatePositionf("tap %d is already assigned", tap.Position)
		}
		return errors.Wrapf(err, errors.CodeStoreUnavailable, "insert tap %d", tap.Position)
	}

	for i, sc := range tap.ServingCosts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tap_serving_costs (position, volume, price, sort_order)
			VALUES (?, ?, ?, ?)`,
			tap.Position, sc.Volume, sc.Price, i,
		)
		if err != nil {
			return errors.Wrapf(err, errors.CodeStoreUnavailable, "insert serving cost %s for tap %d", sc.Volume, tap.Position)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, errors.CodeStoreUnavailable, "commit tap %d", tap.Position)
	}

	s.logger.Debug("tap created", "position", tap.Position, "brewery", tap.Brewery, "name", tap.Name)
	return nil
}

// GetTap returns the assignment at a position.
func (s *Store) GetTap(ctx context.Context, position int) (*domain.TapAssignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tapColumns+` FROM taps WHERE position = ?`, position)

	tap, err := scanTap(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("tap %d is not assigned", position)
		}
		return nil, errors.Wrapf(err, errors.CodeStoreUnavailable, "get tap %d", position)
	}

	tap.ServingCosts, err = s.loadServingCosts(ctx, position)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeStoreUnavailable, "load serving costs for tap %d", position)
	}
	return tap, nil
}

// ListTaps returns all assignments ordered by position ascending.
func (s *Store) ListTaps(ctx context.Context) ([]*domain.TapAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tapColumns+` FROM taps ORDER BY position ASC`)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStoreUnavailable, "list taps")
	}
	defer rows.Close()

	var taps []*domain.TapAssignment
	for rows.Next() {
		tap, err := scanTap(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeStoreUnavailable, "scan tap")
		}
		taps = append(taps, tap)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeStoreUnavailable, "list taps")
	}

	for _, tap := range taps {
		tap.ServingCosts, err = s.loadServingCosts(ctx, tap.Position)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeStoreUnavailable, "load serving costs for tap %d", tap.Position)
		}
	}
	return taps, nil
}

// tapFieldColumns maps plain editable fields to their column names. Serving
// cost fields live in tap_serving_costs and are handled separately.
var tapFieldColumns = map[domain.Field]string{
	domain.FieldBrewery:     "brewery",
	domain.FieldName:        "name",
	domain.FieldStyle:       "style",
	domain.FieldPrice:       "price_per_liter",
	domain.FieldDescription: "description",
}

// UpdateTapField applies exactly one field change to an existing assignment.
// The field set is a closed enumeration; anything else fails with InvalidField.
func (s *Store) UpdateTapField(ctx context.Context, position int, field domain.Field, value any) error {
	if volume, ok := field.ServingVolume(); ok {
		price, ok := value.(float64)
		if !ok {
			return errors.Validationf("serving cost for %s requires a number", volume)
		}
		if price < 0 {
			return errors.Validationf("serving cost for %s must not be negative, got %g", volume, price)
		}
		return s.updateServingCost(ctx, position, volume, price)
	}

	column, ok := tapFieldColumns[field]
	if !ok {
		return errors.InvalidFieldf("unrecognized field %q", string(field))
	}

	switch field {
	case domain.FieldPrice:
		price, ok := value.(float64)
		if !ok {
			return errors.Validation("price requires a number")
		}
		if price < 0 {
			return errors.Validationf("price must not be negative, got %g", price)
		}
	case domain.FieldDescription:
		if _, ok := value.(string); !ok {
			return errors.Validationf("%s requires text", string(field))
		}
	default:
		text, ok := value.(string)
		if !ok || text == "" {
			return errors.Validationf("%s requires non-empty text", string(field))
		}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE taps SET `+column+` = ?, updated_at = ? WHERE position = ?`,
		value, formatTime(time.Now()), position)
	if err != nil {
		return errors.Wrapf(err, errors.CodeStoreUnavailable, "update tap %d", position)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, errors.CodeStoreUnavailable, "update tap %d", position)
	}
	if affected == 0 {
		return errors.NotFoundf("tap %d is not assigned", position)
	}

	s.logger.Debug("tap updated", "position", position, "field", string(field))
	return nil
}

// updateServingCost updates one serving price, inserting the volume row if
// the tap exists but that volume has not been priced yet.
func (s *Store) updateServingCost(ctx context.Context, position int, volume string, price float64) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM taps WHERE position = ?`, position).Scan(&exists)
	if err != nil {
		return errors.Wrapf(err, errors.CodeStoreUnavailable, "update serving cost for tap %d", position)
	}
	if exists == 0 {
		return errors.NotFoundf("tap %d is not assigned", position)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tap_serving_costs (position, volume, price, sort_order)
		VALUES (?, ?, ?, (SELECT COUNT(*) FROM tap_serving_costs WHERE position = ?))
		ON CONFLICT (position, volume) DO UPDATE SET price = excluded.price`,
		position, volume, price, position)
	if err != nil {
		return errors.Wrapf(err, errors.CodeStoreUnavailable, "update serving cost for tap %d", position)
	}

	s.logger.Debug("serving cost updated", "position", position, "volume", volume)
	return nil
}

// DeleteTap removes an assignment; serving costs cascade.
func (s *Store) DeleteTap(ctx context.Context, position int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM taps WHERE position = ?`, position)
	if err != nil {
		return errors.Wrapf(err, errors.CodeStoreUnavailable, "delete tap %d", position)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, errors.CodeStoreUnavailable, "delete tap %d", position)
	}
	if affected == 0 {
		return errors.NotFoundf("tap %d is not assigned", position)
	}

	s.logger.Debug("tap deleted", "position", position)
	return nil
}
