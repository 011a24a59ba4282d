package api

import (
	"time"

	"waitline/internal/queue"
)

// FromEntry converts a queue entry to its API representation.
func FromEntry(entry *queue.Entry) EntryItem {
	if entry == nil {
		return EntryItem{}
	}
	dto := EntryItem{
		ID:             entry.ID,
		StationID:      entry.StationID,
		CustomerNumber: entry.CustomerNumber,
		Status:         string(entry.Status),
		Position:       entry.Position,
	}
	if !entry.CreatedAt.IsZero() {
		dto.CreatedAt = formatStamp(entry.CreatedAt)
	}
	dto.CalledAt = formatOptionalStamp(entry.CalledAt)
	dto.CompletedAt = formatOptionalStamp(entry.CompletedAt)
	dto.FinishedAt = formatOptionalStamp(entry.FinishedAt)
	dto.ReleasedAt = formatOptionalStamp(entry.ReleasedAt)
	return dto
}

// FromEntryDetail converts an entry joined with its station.
func FromEntryDetail(detail *queue.EntryDetail) EntryItem {
	if detail == nil {
		return EntryItem{}
	}
	dto := FromEntry(&detail.Entry)
	dto.StationName = detail.StationName
	return dto
}

// FromEntryDetails converts a slice of entry details into API DTOs.
func FromEntryDetails(details []*queue.EntryDetail) []EntryItem {
	if len(details) == 0 {
		return nil
	}
	out := make([]EntryItem, 0, len(details))
	for _, detail := range details {
		out = append(out, FromEntryDetail(detail))
	}
	return out
}

// FromHistoryRecord converts an audit row into its API representation.
func FromHistoryRecord(record *queue.HistoryRecord) HistoryItem {
	if record == nil {
		return HistoryItem{}
	}
	dto := HistoryItem{
		CustomerNumber: record.CustomerNumber,
		StationID:      record.StationID,
		StationName:    record.StationName,
		Status:         string(record.Status),
		Action:         record.Action,
	}
	if !record.CreatedAt.IsZero() {
		dto.CreatedAt = formatStamp(record.CreatedAt)
	}
	return dto
}

// FromStation converts a station record for admin listings.
func FromStation(station *queue.Station) StationItem {
	if station == nil {
		return StationItem{}
	}
	return StationItem{
		ID:           station.ID,
		Name:         station.Name,
		Description:  station.Description,
		QueueGroupID: station.QueueGroupID,
		IsActive:     station.IsActive,
		Hidden:       station.Hidden,
		Restricted:   station.Restricted,
	}
}

// FromOperator converts an operator record for verification responses.
func FromOperator(op *queue.Operator) OperatorItem {
	if op == nil {
		return OperatorItem{}
	}
	return OperatorItem{
		ID:             op.ID,
		Code:           op.Code,
		Name:           op.Name,
		StationID:      op.StationID,
		FinishOperator: op.FinishOperator,
	}
}

func formatStamp(ts time.Time) string {
	return ts.UTC().Format(dateTimeFormat)
}

func formatOptionalStamp(ts *time.Time) string {
	if ts == nil || ts.IsZero() {
		return ""
	}
	return formatStamp(*ts)
}
