package queue

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"waitline/internal/config"
)

// Bootstrap seeds stations and operators from configuration. It runs exactly
// once: a store that already holds stations is left untouched, so repeated
// startups are no-ops. Returns whether seeding happened.
func (s *Store) Bootstrap(ctx context.Context, cfg *config.Config) (bool, error) {
	ctx = ensureContext(ctx)

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stations`).Scan(&count); err != nil {
		return false, fmt.Errorf("count stations: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	now := formatTime(time.Now())
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, station := range cfg.Stations {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO stations (id, name, description, queue_group_id, is_routing, is_active, hidden, restricted, created_at)
                 VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?)`,
				station.ID,
				station.Name,
				nullableString(station.Description),
				nullableString(station.QueueGroupID),
				boolToInt(station.IsRouting),
				boolToInt(station.Hidden),
				boolToInt(station.Restricted),
				now,
			); err != nil {
				return fmt.Errorf("seed station %q: %w", station.Name, err)
			}
		}
		for _, operator := range cfg.Operators {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO operators (id, code, station_id, name, finish_operator, created_at)
                 VALUES (?, ?, ?, ?, ?, ?)`,
				operator.ID,
				operator.Code,
				nullableInt64(operator.StationID),
				operator.Name,
				boolToInt(operator.FinishOperator),
				now,
			); err != nil {
				return fmt.Errorf("seed operator %q: %w", operator.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
