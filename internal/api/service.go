package api

import (
	"context"

	"waitline/internal/queue"
)

// waitingListLimit caps how many upcoming numbers a station board shows.
const waitingListLimit = 10

// Reader abstracts the queue store interactions needed for API queries.
type Reader interface {
	Stations(ctx context.Context) ([]*queue.Station, error)
	VisibleStations(ctx context.Context) ([]*queue.Station, error)
	CanonicalStations(ctx context.Context) ([]*queue.Station, error)
	ResolveQueueStation(ctx context.Context, station *queue.Station) (int64, error)
	CalledAt(ctx context.Context, stationID int64) (*queue.Entry, error)
	WaitingAt(ctx context.Context, stationID int64, limit int) ([]*queue.Entry, error)
	WaitingCount(ctx context.Context, stationID int64) (int, error)
	StatusCounts(ctx context.Context, stationID int64) (map[queue.Status]int, error)
	FinishedEntries(ctx context.Context) ([]*queue.EntryDetail, error)
	Entries(ctx context.Context) ([]*queue.EntryDetail, error)
	CustomerHistory(ctx context.Context, customer int64) ([]*queue.HistoryRecord, error)
	OperatorByCode(ctx context.Context, code string) (*queue.Operator, error)
}

// Service exposes read-only queue aggregates returning API DTOs.
type Service struct {
	store Reader
}

// NewService constructs a Service around the provided reader.
func NewService(store Reader) *Service {
	if store == nil {
		return nil
	}
	return &Service{store: store}
}

// CenterView assembles the display board for every visible station. Grouped
// stations share a waiting line held by the group's canonical member, but a
// called customer belongs to the member that called it, so each board reads
// the current number at the station itself.
func (s *Service) CenterView(ctx context.Context) (*CenterView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stations, err := s.store.VisibleStations(ctx)
	if err != nil {
		return nil, err
	}
	view := &CenterView{Stations: make([]StationBoard, 0, len(stations))}
	for _, station := range stations {
		board, err := s.stationBoard(ctx, station)
		if err != nil {
			return nil, err
		}
		view.Stations = append(view.Stations, board)
	}
	return view, nil
}

// StationBoardByID assembles a single station's display board.
func (s *Service) StationBoardByID(ctx context.Context, station *queue.Station) (*StationBoard, error) {
	if s == nil || s.store == nil || station == nil {
		return nil, nil
	}
	board, err := s.stationBoard(ctx, station)
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *Service) stationBoard(ctx context.Context, station *queue.Station) (StationBoard, error) {
	queueID, err := s.store.ResolveQueueStation(ctx, station)
	if err != nil {
		return StationBoard{}, err
	}
	board := StationBoard{
		ID:           station.ID,
		Name:         station.Name,
		Description:  station.Description,
		QueueGroupID: station.QueueGroupID,
		IsActive:     station.IsActive,
	}
	called, err := s.store.CalledAt(ctx, station.ID)
	if err != nil {
		return StationBoard{}, err
	}
	if called != nil {
		number := called.CustomerNumber
		board.CurrentNumber = &number
	}
	waiting, err := s.store.WaitingAt(ctx, queueID, waitingListLimit)
	if err != nil {
		return StationBoard{}, err
	}
	board.Waiting = make([]int64, 0, len(waiting))
	for _, entry := range waiting {
		board.Waiting = append(board.Waiting, entry.CustomerNumber)
	}
	count, err := s.store.WaitingCount(ctx, queueID)
	if err != nil {
		return StationBoard{}, err
	}
	board.WaitingCount = count
	return board, nil
}

// StationsList returns the stations customers can join, one per queue group.
func (s *Service) StationsList(ctx context.Context) ([]StationSummary, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stations, err := s.store.CanonicalStations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StationSummary, 0, len(stations))
	for _, station := range stations {
		count, err := s.store.WaitingCount(ctx, station.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, StationSummary{
			ID:           station.ID,
			Name:         station.Name,
			Description:  station.Description,
			QueueGroupID: station.QueueGroupID,
			WaitingCount: count,
			IsActive:     station.IsActive,
		})
	}
	return out, nil
}

// DailyReport tallies entry counts by status for every station. Grouped
// members report against their shared line, so each member of a group shows
// the canonical holder's numbers.
func (s *Service) DailyReport(ctx context.Context) (*ReportView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stations, err := s.store.Stations(ctx)
	if err != nil {
		return nil, err
	}
	report := &ReportView{Stations: make([]StationReport, 0, len(stations))}
	for _, station := range stations {
		queueID, err := s.store.ResolveQueueStation(ctx, station)
		if err != nil {
			return nil, err
		}
		counts, err := s.store.StatusCounts(ctx, queueID)
		if err != nil {
			return nil, err
		}
		row := StationReport{
			ID:        station.ID,
			Name:      station.Name,
			Waiting:   counts[queue.StatusWaiting],
			Called:    counts[queue.StatusCalled],
			Completed: counts[queue.StatusCompleted],
			Finished:  counts[queue.StatusFinished],
			Released:  counts[queue.StatusReleased],
		}
		for _, count := range counts {
			row.Total += count
		}
		called, err := s.store.CalledAt(ctx, queueID)
		if err != nil {
			return nil, err
		}
		if called != nil {
			number := called.CustomerNumber
			row.CurrentNumber = &number
		}
		report.Stations = append(report.Stations, row)
	}
	return report, nil
}

// CustomerHistory returns the audit trail for one customer number, newest
// per station first.
func (s *Service) CustomerHistory(ctx context.Context, customer int64) (*HistoryResponse, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	records, err := s.store.CustomerHistory(ctx, customer)
	if err != nil {
		return nil, err
	}
	resp := &HistoryResponse{CustomerNumber: customer, Items: make([]HistoryItem, 0, len(records))}
	for _, record := range records {
		resp.Items = append(resp.Items, FromHistoryRecord(record))
	}
	return resp, nil
}

// FinishedList returns finished entries awaiting release.
func (s *Service) FinishedList(ctx context.Context) ([]FinishedItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	details, err := s.store.FinishedEntries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]FinishedItem, 0, len(details))
	for _, detail := range details {
		item := FinishedItem{
			CustomerNumber: detail.CustomerNumber,
			StationID:      detail.StationID,
			StationName:    detail.StationName,
		}
		item.FinishedAt = formatOptionalStamp(detail.FinishedAt)
		out = append(out, item)
	}
	return out, nil
}

// Entries returns every queue entry for admin listings.
func (s *Service) Entries(ctx context.Context) ([]EntryItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	details, err := s.store.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return FromEntryDetails(details), nil
}

// AllStations returns every station including hidden and inactive ones.
func (s *Service) AllStations(ctx context.Context) ([]StationItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stations, err := s.store.Stations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StationItem, 0, len(stations))
	for _, station := range stations {
		out = append(out, FromStation(station))
	}
	return out, nil
}

// VerifyOperator looks up an operator by code. A nil result means the code
// is unknown.
func (s *Service) VerifyOperator(ctx context.Context, code string) (*OperatorItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	op, err := s.store.OperatorByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, nil
	}
	item := FromOperator(op)
	return &item, nil
}
