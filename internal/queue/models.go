package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue entry.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusCalled    Status = "called"
	StatusCompleted Status = "completed"
	StatusFinished  Status = "finished"
	StatusReleased  Status = "released"
)

var allStatuses = []Status{
	StatusWaiting,
	StatusCalled,
	StatusCompleted,
	StatusFinished,
	StatusReleased,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// nextStatus is the only legal forward transition from each state.
var nextStatus = map[Status]Status{
	StatusWaiting:   StatusCalled,
	StatusCalled:    StatusCompleted,
	StatusCompleted: StatusFinished,
	StatusFinished:  StatusReleased,
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// CanTransition reports whether from → to is a legal lifecycle step.
// Entries never skip a state or move backward.
func CanTransition(from, to Status) bool {
	return nextStatus[from] == to
}

// IsActive reports whether the status occupies a queue slot.
func (s Status) IsActive() bool {
	return s == StatusWaiting || s == StatusCalled
}

// Station is a physical or logical service counter customers queue for.
type Station struct {
	ID           int64
	Name         string
	Description  string
	QueueGroupID string
	IsRouting    bool
	IsActive     bool
	Hidden       bool
	Restricted   bool
	CreatedAt    time.Time
}

// Grouped reports whether the station shares a waiting line with others.
func (s Station) Grouped() bool {
	return strings.TrimSpace(s.QueueGroupID) != ""
}

// Operator is an authenticated staff actor, usually bound to one station.
type Operator struct {
	ID             int64
	Code           string
	StationID      int64 // zero when the operator is not bound to a station
	Name           string
	FinishOperator bool
	CreatedAt      time.Time
}

// Entry represents one customer's presence in one queue.
//
// StationID is the current holder and may change when the customer is called
// across a queue group. Position orders waiting entries within a station;
// ties break by creation time.
type Entry struct {
	ID             int64
	StationID      int64
	CustomerNumber int64
	Status         Status
	Position       int
	CreatedAt      time.Time
	CalledAt       *time.Time
	CompletedAt    *time.Time
	FinishedAt     *time.Time
	ReleasedAt     *time.Time
}

// EntryDetail is an entry joined with its station for admin listings.
type EntryDetail struct {
	Entry
	StationName  string
	QueueGroupID string
}

// HistoryRecord is one immutable audit row: a customer reached a status at a
// station. StationName is a snapshot, not a live reference.
type HistoryRecord struct {
	ID             int64
	CustomerNumber int64
	StationID      int64
	StationName    string
	Status         Status
	Action         string
	CreatedAt      time.Time
}

// History action labels written by the engine.
const (
	actionAdded       = "added"
	actionCalled      = "called"
	actionCompleted   = "completed"
	actionFinished    = "finished"
	actionReleased    = "released"
	actionTransferred = "transferred"
)
