package queue

import (
	"database/sql"
	"time"
)

const stationColumns = "id, name, description, queue_group_id, is_routing, is_active, hidden, restricted, created_at"

const operatorColumns = "id, code, station_id, name, finish_operator, created_at"

const entryColumns = "id, station_id, customer_number, status, position, created_at, called_at, completed_at, finished_at, released_at"

const historyColumns = "id, customer_number, station_id, station_name, status, action, created_at"

type rowScanner interface{ Scan(dest ...any) error }

func scanStation(scanner rowScanner) (*Station, error) {
	var (
		station    Station
		desc       sql.NullString
		group      sql.NullString
		isRouting  sql.NullInt64
		isActive   sql.NullInt64
		hidden     sql.NullInt64
		restricted sql.NullInt64
		createdRaw sql.NullString
	)
	if err := scanner.Scan(
		&station.ID,
		&station.Name,
		&desc,
		&group,
		&isRouting,
		&isActive,
		&hidden,
		&restricted,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	station.Description = desc.String
	station.QueueGroupID = group.String
	station.IsRouting = isRouting.Int64 != 0
	station.IsActive = isActive.Int64 != 0
	station.Hidden = hidden.Int64 != 0
	station.Restricted = restricted.Int64 != 0
	if created, err := parseTimeString(createdRaw.String); err == nil {
		station.CreatedAt = created
	}
	return &station, nil
}

func scanOperator(scanner rowScanner) (*Operator, error) {
	var (
		operator   Operator
		stationID  sql.NullInt64
		finish     sql.NullInt64
		createdRaw sql.NullString
	)
	if err := scanner.Scan(
		&operator.ID,
		&operator.Code,
		&stationID,
		&operator.Name,
		&finish,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	operator.StationID = stationID.Int64
	operator.FinishOperator = finish.Int64 != 0
	if created, err := parseTimeString(createdRaw.String); err == nil {
		operator.CreatedAt = created
	}
	return &operator, nil
}

func scanEntry(scanner rowScanner) (*Entry, error) {
	var (
		entry       Entry
		statusStr   string
		createdRaw  sql.NullString
		calledRaw   sql.NullString
		completeRaw sql.NullString
		finishedRaw sql.NullString
		releasedRaw sql.NullString
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.StationID,
		&entry.CustomerNumber,
		&statusStr,
		&entry.Position,
		&createdRaw,
		&calledRaw,
		&completeRaw,
		&finishedRaw,
		&releasedRaw,
	); err != nil {
		return nil, err
	}
	entry.Status = Status(statusStr)
	if created, err := parseTimeString(createdRaw.String); err == nil {
		entry.CreatedAt = created
	}
	entry.CalledAt = parseOptionalTime(calledRaw)
	entry.CompletedAt = parseOptionalTime(completeRaw)
	entry.FinishedAt = parseOptionalTime(finishedRaw)
	entry.ReleasedAt = parseOptionalTime(releasedRaw)
	return &entry, nil
}

func scanHistory(scanner rowScanner) (*HistoryRecord, error) {
	var (
		record     HistoryRecord
		statusStr  string
		action     sql.NullString
		createdRaw sql.NullString
	)
	if err := scanner.Scan(
		&record.ID,
		&record.CustomerNumber,
		&record.StationID,
		&record.StationName,
		&statusStr,
		&action,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	record.Status = Status(statusStr)
	record.Action = action.String
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	return &record, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, sql.ErrNoRows
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func parseOptionalTime(value sql.NullString) *time.Time {
	if !value.Valid || value.String == "" {
		return nil
	}
	t, err := parseTimeString(value.String)
	if err != nil {
		return nil
	}
	return &t
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt64(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
