package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// StationBoard is one station's slice of the center display: the number
// currently being served plus the head of the waiting line.
type StationBoard struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	QueueGroupID  string  `json:"queueGroupId,omitempty"`
	CurrentNumber *int64  `json:"currentNumber"`
	Waiting       []int64 `json:"waiting"`
	WaitingCount  int     `json:"waitingCount"`
	IsActive      bool    `json:"isActive"`
}

// CenterView aggregates every visible station's board into one payload.
type CenterView struct {
	Stations []StationBoard `json:"stations"`
}

// StationSummary lists a station for selection screens. Grouped stations
// collapse to their canonical holder, so WaitingCount covers the whole group.
type StationSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	QueueGroupID string `json:"queueGroupId,omitempty"`
	WaitingCount int    `json:"waitingCount"`
	IsActive     bool   `json:"isActive"`
}

// StationReport is one row of the daily report: per-station counts by status.
type StationReport struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	CurrentNumber *int64 `json:"currentNumber"`
	Waiting       int    `json:"waiting"`
	Called        int    `json:"called"`
	Completed     int    `json:"completed"`
	Finished      int    `json:"finished"`
	Released      int    `json:"released"`
	Total         int    `json:"total"`
}

// ReportView wraps the daily report rows.
type ReportView struct {
	Stations []StationReport `json:"stations"`
}

// HistoryItem is one audit trail row for a customer.
type HistoryItem struct {
	CustomerNumber int64  `json:"customerNumber"`
	StationID      int64  `json:"stationId"`
	StationName    string `json:"stationName"`
	Status         string `json:"status"`
	Action         string `json:"action"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// FinishedItem is one finished entry awaiting release.
type FinishedItem struct {
	CustomerNumber int64  `json:"customerNumber"`
	StationID      int64  `json:"stationId"`
	StationName    string `json:"stationName"`
	FinishedAt     string `json:"finishedAt,omitempty"`
}

// EntryItem describes a queue entry in a transport-friendly format. All
// lifecycle timestamps are included so admin listings can show the full
// progression of an entry.
type EntryItem struct {
	ID             int64  `json:"id"`
	StationID      int64  `json:"stationId"`
	StationName    string `json:"stationName,omitempty"`
	CustomerNumber int64  `json:"customerNumber"`
	Status         string `json:"status"`
	Position       int    `json:"position"`
	CreatedAt      string `json:"createdAt,omitempty"`
	CalledAt       string `json:"calledAt,omitempty"`
	CompletedAt    string `json:"completedAt,omitempty"`
	FinishedAt     string `json:"finishedAt,omitempty"`
	ReleasedAt     string `json:"releasedAt,omitempty"`
}

// StationItem describes a station for admin listings, hidden ones included.
type StationItem struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	QueueGroupID string `json:"queueGroupId,omitempty"`
	IsActive     bool   `json:"isActive"`
	Hidden       bool   `json:"hidden"`
	Restricted   bool   `json:"restricted"`
}

// OperatorItem describes an operator binding for verification responses.
type OperatorItem struct {
	ID             int64  `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name,omitempty"`
	StationID      int64  `json:"stationId,omitempty"`
	FinishOperator bool   `json:"finishOperator"`
}

// EntryListResponse wraps a collection of entries for API responses.
type EntryListResponse struct {
	Entries []EntryItem `json:"entries"`
}

// HistoryResponse wraps a customer's audit trail.
type HistoryResponse struct {
	CustomerNumber int64         `json:"customerNumber"`
	Items          []HistoryItem `json:"items"`
}
