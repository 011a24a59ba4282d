package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const waitingOrder = ` ORDER BY position ASC, created_at ASC, id ASC`

// EntryByID fetches a queue entry by identifier. Returns nil when absent.
func (s *Store) EntryByID(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+entryColumns+` FROM queue_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// CalledAt returns the entry currently in service at a station, if any.
func (s *Store) CalledAt(ctx context.Context, stationID int64) (*Entry, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+entryColumns+` FROM queue_entries WHERE station_id = ? AND status = ? LIMIT 1`,
		stationID, StatusCalled,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get called entry: %w", err)
	}
	return entry, nil
}

// WaitingAt returns waiting entries for a station in call order. A limit of
// zero returns the whole line.
func (s *Store) WaitingAt(ctx context.Context, stationID int64, limit int) ([]*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM queue_entries WHERE station_id = ? AND status = ?` + waitingOrder
	args := []any{stationID, StatusWaiting}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryEntries(ctx, query, args...)
}

// WaitingCount returns the number of waiting entries at a station.
func (s *Store) WaitingCount(ctx context.Context, stationID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT COUNT(*) FROM queue_entries WHERE station_id = ? AND status = ?`,
		stationID, StatusWaiting,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count waiting: %w", err)
	}
	return count, nil
}

// StatusCounts aggregates entry counts per status for a station.
func (s *Store) StatusCounts(ctx context.Context, stationID int64) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT status, COUNT(*) FROM queue_entries WHERE station_id = ? GROUP BY status`,
		stationID,
	)
	if err != nil {
		return nil, fmt.Errorf("count statuses: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var statusStr string
		var count int
		if err := rows.Scan(&statusStr, &count); err != nil {
			return nil, err
		}
		counts[Status(statusStr)] = count
	}
	return counts, rows.Err()
}

// ActiveEntry returns the customer's waiting or called entry anywhere in the
// system, if one exists.
func (s *Store) ActiveEntry(ctx context.Context, customer int64) (*Entry, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+entryColumns+` FROM queue_entries WHERE customer_number = ? AND status IN (?, ?) LIMIT 1`,
		customer, StatusWaiting, StatusCalled,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active entry: %w", err)
	}
	return entry, nil
}

// FinishedEntries lists customers awaiting release, oldest finish first.
func (s *Store) FinishedEntries(ctx context.Context) ([]*EntryDetail, error) {
	return s.queryEntryDetails(ctx,
		`SELECT `+detailColumns+` FROM queue_entries qe
         JOIN stations s ON qe.station_id = s.id
         WHERE qe.status = ?
         ORDER BY qe.finished_at ASC`,
		StatusFinished,
	)
}

// Entries lists every queue entry with station context, newest first.
func (s *Store) Entries(ctx context.Context) ([]*EntryDetail, error) {
	return s.queryEntryDetails(ctx,
		`SELECT `+detailColumns+` FROM queue_entries qe
         JOIN stations s ON qe.station_id = s.id
         ORDER BY qe.created_at DESC, qe.id DESC`,
	)
}

const detailColumns = `qe.id, qe.station_id, qe.customer_number, qe.status, qe.position,
    qe.created_at, qe.called_at, qe.completed_at, qe.finished_at, qe.released_at,
    s.name, s.queue_group_id`

func (s *Store) queryEntryDetails(ctx context.Context, query string, args ...any) ([]*EntryDetail, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var details []*EntryDetail
	for rows.Next() {
		var (
			detail      EntryDetail
			statusStr   string
			createdRaw  sql.NullString
			calledRaw   sql.NullString
			completeRaw sql.NullString
			finishedRaw sql.NullString
			releasedRaw sql.NullString
			group       sql.NullString
		)
		if err := rows.Scan(
			&detail.ID,
			&detail.StationID,
			&detail.CustomerNumber,
			&statusStr,
			&detail.Position,
			&createdRaw,
			&calledRaw,
			&completeRaw,
			&finishedRaw,
			&releasedRaw,
			&detail.StationName,
			&group,
		); err != nil {
			return nil, err
		}
		detail.Status = Status(statusStr)
		detail.QueueGroupID = group.String
		if created, err := parseTimeString(createdRaw.String); err == nil {
			detail.CreatedAt = created
		}
		detail.CalledAt = parseOptionalTime(calledRaw)
		detail.CompletedAt = parseOptionalTime(completeRaw)
		detail.FinishedAt = parseOptionalTime(finishedRaw)
		detail.ReleasedAt = parseOptionalTime(releasedRaw)
		details = append(details, &detail)
	}
	return details, rows.Err()
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) activeEntryAtTx(ctx context.Context, tx *sql.Tx, stationID, customer int64) (*Entry, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM queue_entries
         WHERE station_id = ? AND customer_number = ? AND status IN (?, ?) LIMIT 1`,
		stationID, customer, StatusWaiting, StatusCalled,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active entry at station: %w", err)
	}
	return entry, nil
}

func (s *Store) activeAnywhereTx(ctx context.Context, tx *sql.Tx, customer int64) (*Entry, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM queue_entries
         WHERE customer_number = ? AND status IN (?, ?) LIMIT 1`,
		customer, StatusWaiting, StatusCalled,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active entry: %w", err)
	}
	return entry, nil
}

func (s *Store) maxWaitingPositionTx(ctx context.Context, tx *sql.Tx, stationID int64) (int, error) {
	var max int
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) FROM queue_entries WHERE station_id = ? AND status = ?`,
		stationID, StatusWaiting,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max waiting position: %w", err)
	}
	return max, nil
}

func (s *Store) insertEntryTx(ctx context.Context, tx *sql.Tx, stationID, customer int64, position int, now time.Time) (*Entry, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO queue_entries (station_id, customer_number, status, position, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		stationID, customer, StatusWaiting, position, formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &Entry{
		ID:             id,
		StationID:      stationID,
		CustomerNumber: customer,
		Status:         StatusWaiting,
		Position:       position,
		CreatedAt:      now.UTC(),
	}, nil
}

// nextWaitingTx selects the single lowest (position, created_at) waiting
// entry among the given stations. This is the call-ordering tie-break:
// position primary, creation time secondary.
func (s *Store) nextWaitingTx(ctx context.Context, tx *sql.Tx, stationIDs []int64) (*Entry, error) {
	placeholders := makePlaceholders(len(stationIDs))
	args := make([]any, 0, len(stationIDs)+1)
	args = append(args, StatusWaiting)
	for _, id := range stationIDs {
		args = append(args, id)
	}
	row := tx.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM queue_entries
         WHERE status = ? AND station_id IN (`+placeholders+`)`+waitingOrder+` LIMIT 1`,
		args...,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next waiting entry: %w", err)
	}
	return entry, nil
}

func (s *Store) waitingOrderedTx(ctx context.Context, tx *sql.Tx, stationID int64) ([]*Entry, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM queue_entries WHERE station_id = ? AND status = ?`+waitingOrder,
		stationID, StatusWaiting,
	)
	if err != nil {
		return nil, fmt.Errorf("query waiting entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) setPositionTx(ctx context.Context, tx *sql.Tx, entryID int64, position int) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE queue_entries SET position = ? WHERE id = ?`, position, entryID,
	); err != nil {
		return fmt.Errorf("set position: %w", err)
	}
	return nil
}

// completeCalledAtTx closes out whichever entry is currently in service at a
// station when the next customer is called.
func (s *Store) completeCalledAtTx(ctx context.Context, tx *sql.Tx, stationID int64, now time.Time) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE queue_entries SET status = ?, completed_at = ? WHERE station_id = ? AND status = ?`,
		StatusCompleted, formatTime(now), stationID, StatusCalled,
	); err != nil {
		return fmt.Errorf("complete called entry: %w", err)
	}
	return nil
}

// markCalledTx moves an entry into service at the calling station. The
// customer follows the call across the group, so station_id is reassigned.
func (s *Store) markCalledTx(ctx context.Context, tx *sql.Tx, entryID, stationID int64, now time.Time) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE queue_entries SET status = ?, called_at = ?, station_id = ? WHERE id = ?`,
		StatusCalled, formatTime(now), stationID, entryID,
	); err != nil {
		return fmt.Errorf("mark called: %w", err)
	}
	return nil
}

// transitionEntryTx advances one entry from one status to the next, stamping
// the transition timestamp exactly once. The from guard means a concurrent
// or repeated call moves zero rows instead of skipping a state.
func (s *Store) transitionEntryTx(ctx context.Context, tx *sql.Tx, entryID int64, from, to Status, now time.Time) (int64, error) {
	if !CanTransition(from, to) {
		return 0, fmt.Errorf("illegal transition %s to %s", from, to)
	}
	column, ok := statusTimestampColumn[to]
	if !ok {
		return 0, fmt.Errorf("status %q has no transition timestamp", to)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE queue_entries SET status = ?, `+column+` = ? WHERE id = ? AND status = ?`,
		to, formatTime(now), entryID, from,
	)
	if err != nil {
		return 0, fmt.Errorf("transition %s to %s: %w", from, to, err)
	}
	return res.RowsAffected()
}

var statusTimestampColumn = map[Status]string{
	StatusCalled:    "called_at",
	StatusCompleted: "completed_at",
	StatusFinished:  "finished_at",
	StatusReleased:  "released_at",
}

func (s *Store) deleteWaitingElsewhereTx(ctx context.Context, tx *sql.Tx, customer, keepStationID int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM queue_entries WHERE customer_number = ? AND station_id != ? AND status = ?`,
		customer, keepStationID, StatusWaiting,
	); err != nil {
		return fmt.Errorf("delete waiting duplicates: %w", err)
	}
	return nil
}

// deleteActiveAtTx removes a customer's entries at one station as part of a
// transfer. Completed entries stay for the daily report.
func (s *Store) deleteActiveAtTx(ctx context.Context, tx *sql.Tx, customer, stationID int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM queue_entries WHERE customer_number = ? AND station_id = ? AND status != ?`,
		customer, stationID, StatusCompleted,
	); err != nil {
		return fmt.Errorf("delete entries for transfer: %w", err)
	}
	return nil
}

func (s *Store) deleteActiveEverywhereTx(ctx context.Context, tx *sql.Tx, customer int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM queue_entries WHERE customer_number = ? AND status IN (?, ?)`,
		customer, StatusWaiting, StatusCalled,
	); err != nil {
		return fmt.Errorf("delete active entries: %w", err)
	}
	return nil
}

func (s *Store) entryByCustomerStatusTx(ctx context.Context, tx *sql.Tx, customer int64, status Status) (*Entry, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM queue_entries WHERE customer_number = ? AND status = ? LIMIT 1`,
		customer, status,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry by status: %w", err)
	}
	return entry, nil
}

func (s *Store) entryByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*Entry, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM queue_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

func (s *Store) deleteEntryTx(ctx context.Context, tx *sql.Tx, id int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM queue_entries WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete entry: %w", err)
	}
	return res.RowsAffected()
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*3)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',', ' ')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
