package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Stations returns every station ordered by id.
func (s *Store) Stations(ctx context.Context) ([]*Station, error) {
	return s.queryStations(ctx, `SELECT `+stationColumns+` FROM stations ORDER BY id`)
}

// VisibleStations returns stations not hidden from public displays.
func (s *Store) VisibleStations(ctx context.Context) ([]*Station, error) {
	return s.queryStations(ctx, `SELECT `+stationColumns+` FROM stations WHERE hidden = 0 ORDER BY id`)
}

// CanonicalStations returns the public station list: not hidden, not
// restricted, and for grouped stations only the canonical group member.
func (s *Store) CanonicalStations(ctx context.Context) ([]*Station, error) {
	return s.queryStations(ctx, `
        SELECT `+stationColumns+` FROM stations s
        WHERE s.hidden = 0 AND s.restricted = 0
          AND (
              s.queue_group_id IS NULL
              OR s.id = (SELECT MIN(id) FROM stations WHERE queue_group_id = s.queue_group_id)
          )
        ORDER BY s.id`)
}

func (s *Store) queryStations(ctx context.Context, query string, args ...any) ([]*Station, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	defer rows.Close()

	var stations []*Station
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		stations = append(stations, station)
	}
	return stations, rows.Err()
}

// StationByID fetches a station by identifier. Returns nil when absent.
func (s *Store) StationByID(ctx context.Context, id int64) (*Station, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+stationColumns+` FROM stations WHERE id = ?`, id)
	station, err := scanStation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get station: %w", err)
	}
	return station, nil
}

// StationByName resolves a station by display name using Unicode case
// folding, so operator-facing tools are forgiving about letter case.
func (s *Store) StationByName(ctx context.Context, name string) (*Station, error) {
	stations, err := s.Stations(ctx)
	if err != nil {
		return nil, err
	}
	folder := cases.Fold()
	want := folder.String(strings.TrimSpace(name))
	for _, station := range stations {
		if folder.String(station.Name) == want {
			return station, nil
		}
	}
	return nil, nil
}

// OperatorByCode fetches an operator by access code. Returns nil when absent.
func (s *Store) OperatorByCode(ctx context.Context, code string) (*Operator, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+operatorColumns+` FROM operators WHERE code = ?`, code)
	operator, err := scanOperator(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get operator: %w", err)
	}
	return operator, nil
}

func (s *Store) stationByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*Station, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+stationColumns+` FROM stations WHERE id = ?`, id)
	station, err := scanStation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get station: %w", err)
	}
	return station, nil
}

func (s *Store) stationNameTx(ctx context.Context, tx *sql.Tx, id int64) (string, error) {
	var name string
	err := tx.QueryRowContext(ctx, `SELECT name FROM stations WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Sprintf("station %d", id), nil
	}
	if err != nil {
		return "", fmt.Errorf("get station name: %w", err)
	}
	return name, nil
}

func (s *Store) setStationActiveTx(ctx context.Context, tx *sql.Tx, id int64, active bool) error {
	if _, err := tx.ExecContext(ctx, `UPDATE stations SET is_active = ? WHERE id = ?`, boolToInt(active), id); err != nil {
		return fmt.Errorf("set station active: %w", err)
	}
	return nil
}

func (s *Store) setStationHiddenTx(ctx context.Context, tx *sql.Tx, id int64, hidden bool) error {
	if _, err := tx.ExecContext(ctx, `UPDATE stations SET hidden = ? WHERE id = ?`, boolToInt(hidden), id); err != nil {
		return fmt.Errorf("set station hidden: %w", err)
	}
	return nil
}
