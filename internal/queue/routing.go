package queue

import (
	"context"
	"database/sql"
	"fmt"
)

// ResolveQueueStation returns the id of the station that actually holds the
// waiting line for the given station. Ungrouped stations hold their own line;
// grouped stations share the line owned by the lowest station id in the
// group. The choice is computed with an explicit MIN so every call site
// agrees on the canonical holder.
//
// A group id that matches no station rows is a configuration bug and is
// reported as an error rather than silently falling back to the station
// itself.
func (s *Store) ResolveQueueStation(ctx context.Context, station *Station) (int64, error) {
	if station == nil {
		return 0, errValidation("station is nil")
	}
	if !station.Grouped() {
		return station.ID, nil
	}
	var min sql.NullInt64
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT MIN(id) FROM stations WHERE queue_group_id = ?`, station.QueueGroupID,
	).Scan(&min)
	if err != nil {
		return 0, fmt.Errorf("resolve queue station: %w", err)
	}
	if !min.Valid {
		return 0, fmt.Errorf("queue group %q has no member stations", station.QueueGroupID)
	}
	return min.Int64, nil
}

func (s *Store) resolveQueueStationTx(ctx context.Context, tx *sql.Tx, station *Station) (int64, error) {
	if !station.Grouped() {
		return station.ID, nil
	}
	var min sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT MIN(id) FROM stations WHERE queue_group_id = ?`, station.QueueGroupID,
	).Scan(&min)
	if err != nil {
		return 0, fmt.Errorf("resolve queue station: %w", err)
	}
	if !min.Valid {
		return 0, fmt.Errorf("queue group %q has no member stations", station.QueueGroupID)
	}
	return min.Int64, nil
}

// groupMemberIDsTx returns the ids of every station sharing the given
// station's waiting line, or just the station itself when ungrouped.
func (s *Store) groupMemberIDsTx(ctx context.Context, tx *sql.Tx, station *Station) ([]int64, error) {
	if !station.Grouped() {
		return []int64{station.ID}, nil
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM stations WHERE queue_group_id = ? ORDER BY id`, station.QueueGroupID,
	)
	if err != nil {
		return nil, fmt.Errorf("query group members: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("queue group %q has no member stations", station.QueueGroupID)
	}
	return ids, nil
}
