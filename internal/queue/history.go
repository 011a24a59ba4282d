package queue

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"waitline/internal/logging"
)

// recordHistory appends an audit row inside the primary transaction. A
// history write failure is logged and swallowed: the audit trail must never
// roll back or block the queue operation that triggered it.
func (e *Engine) recordHistory(ctx context.Context, tx *sql.Tx, customer, stationID int64, stationName string, status Status, action string) {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO queue_entries_history (customer_number, station_id, station_name, status, action, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		customer, stationID, stationName, status, action, formatTime(time.Now()),
	)
	if err != nil {
		e.log().Warn("history write failed",
			logging.Error(err),
			slog.Int64("customer", customer),
			slog.Int64("station_id", stationID),
			slog.String("action", action),
		)
	}
}

// CustomerHistory returns the most recent history record per distinct
// station the customer touched, ordered by station then descending time.
func (s *Store) CustomerHistory(ctx context.Context, customer int64) ([]*HistoryRecord, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+historyColumns+` FROM queue_entries_history
         WHERE customer_number = ?
         ORDER BY station_id ASC, created_at DESC, id DESC`,
		customer,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	seen := make(map[int64]struct{})
	var records []*HistoryRecord
	for rows.Next() {
		record, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[record.StationID]; ok {
			continue
		}
		seen[record.StationID] = struct{}{}
		records = append(records, record)
	}
	return records, rows.Err()
}
