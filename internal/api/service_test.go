package api_test

import (
	"context"
	"testing"

	"waitline/internal/api"
	"waitline/internal/queue"
	"waitline/internal/testsupport"
)

func newServiceWithEngine(t *testing.T) (*api.Service, *queue.Engine) {
	t.Helper()
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	return api.NewService(engine.Store()), engine
}

func TestCenterViewShowsServingAndWaiting(t *testing.T) {
	svc, engine := newServiceWithEngine(t)
	ctx := context.Background()

	for _, customer := range []int64{21, 22} {
		if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: customer}); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}
	if _, err := engine.CallNext(ctx, queue.CallNextRequest{StationID: 1, OperatorCode: "op-1"}); err != nil {
		t.Fatalf("CallNext failed: %v", err)
	}

	view, err := svc.CenterView(ctx)
	if err != nil {
		t.Fatalf("CenterView failed: %v", err)
	}
	if len(view.Stations) != 3 {
		t.Fatalf("expected 3 visible stations, got %d", len(view.Stations))
	}

	board := view.Stations[0]
	if board.ID != 1 {
		t.Fatalf("expected station 1 first, got %d", board.ID)
	}
	if board.CurrentNumber == nil || *board.CurrentNumber != 21 {
		t.Fatalf("expected serving 21, got %v", board.CurrentNumber)
	}
	if len(board.Waiting) != 1 || board.Waiting[0] != 22 {
		t.Fatalf("expected waiting [22], got %v", board.Waiting)
	}
	if board.WaitingCount != 1 {
		t.Fatalf("expected waiting count 1, got %d", board.WaitingCount)
	}
}

func TestCenterViewGroupMembersShareBoard(t *testing.T) {
	svc, engine := newServiceWithEngine(t)
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 3, CustomerNumber: 30}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	view, err := svc.CenterView(ctx)
	if err != nil {
		t.Fatalf("CenterView failed: %v", err)
	}
	var stationTwo, stationThree *api.StationBoard
	for i := range view.Stations {
		switch view.Stations[i].ID {
		case 2:
			stationTwo = &view.Stations[i]
		case 3:
			stationThree = &view.Stations[i]
		}
	}
	if stationTwo == nil || stationThree == nil {
		t.Fatalf("expected both group members on the board, got %#v", view.Stations)
	}
	if stationTwo.WaitingCount != 1 || stationThree.WaitingCount != 1 {
		t.Fatalf("group members should share the waiting line: %d vs %d", stationTwo.WaitingCount, stationThree.WaitingCount)
	}
}

func TestCenterViewShowsCalledAtGroupMember(t *testing.T) {
	svc, engine := newServiceWithEngine(t)
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 2, CustomerNumber: 555}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := engine.CallNext(ctx, queue.CallNextRequest{StationID: 3, OperatorCode: "op-3"}); err != nil {
		t.Fatalf("CallNext failed: %v", err)
	}

	view, err := svc.CenterView(ctx)
	if err != nil {
		t.Fatalf("CenterView failed: %v", err)
	}
	var stationTwo, stationThree *api.StationBoard
	for i := range view.Stations {
		switch view.Stations[i].ID {
		case 2:
			stationTwo = &view.Stations[i]
		case 3:
			stationThree = &view.Stations[i]
		}
	}
	if stationThree == nil || stationThree.CurrentNumber == nil || *stationThree.CurrentNumber != 555 {
		t.Fatalf("station 3 called 555, board shows %#v", stationThree)
	}
	if stationTwo == nil || stationTwo.CurrentNumber != nil {
		t.Fatalf("station 2 called nobody, board shows %#v", stationTwo)
	}
}

func TestStationsListCollapsesGroups(t *testing.T) {
	svc, engine := newServiceWithEngine(t)
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 2, CustomerNumber: 40}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	stations, err := svc.StationsList(ctx)
	if err != nil {
		t.Fatalf("StationsList failed: %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("expected 2 joinable stations, got %d", len(stations))
	}
	if stations[1].ID != 2 || stations[1].WaitingCount != 1 {
		t.Fatalf("unexpected group summary %#v", stations[1])
	}
}

func TestDailyReportCountsByStatus(t *testing.T) {
	svc, engine := newServiceWithEngine(t)
	ctx := context.Background()

	for _, customer := range []int64{51, 52} {
		if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: customer}); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}
	if _, err := engine.CallNext(ctx, queue.CallNextRequest{StationID: 1, OperatorCode: "op-1"}); err != nil {
		t.Fatalf("CallNext failed: %v", err)
	}
	if err := engine.FinishCustomer(ctx, 51); err != nil {
		t.Fatalf("FinishCustomer failed: %v", err)
	}

	report, err := svc.DailyReport(ctx)
	if err != nil {
		t.Fatalf("DailyReport failed: %v", err)
	}
	row := report.Stations[0]
	if row.ID != 1 {
		t.Fatalf("expected station 1 first, got %d", row.ID)
	}
	if row.Waiting != 1 || row.Finished != 1 || row.Total != 2 {
		t.Fatalf("unexpected report row %#v", row)
	}
	if row.CurrentNumber != nil {
		t.Fatalf("no customer should be in service, got %v", *row.CurrentNumber)
	}
}

func TestDailyReportGroupMembersShareCounts(t *testing.T) {
	svc, engine := newServiceWithEngine(t)
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 3, CustomerNumber: 80}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	report, err := svc.DailyReport(ctx)
	if err != nil {
		t.Fatalf("DailyReport failed: %v", err)
	}
	var stationTwo, stationThree *api.StationReport
	for i := range report.Stations {
		switch report.Stations[i].ID {
		case 2:
			stationTwo = &report.Stations[i]
		case 3:
			stationThree = &report.Stations[i]
		}
	}
	if stationTwo == nil || stationThree == nil {
		t.Fatalf("expected both group members in the report, got %#v", report.Stations)
	}
	if stationTwo.Waiting != 1 || stationTwo.Total != 1 {
		t.Fatalf("unexpected canonical member row %#v", stationTwo)
	}
	if stationThree.Waiting != 1 || stationThree.Total != 1 {
		t.Fatalf("group member should report the shared line, got %#v", stationThree)
	}
}

func TestFinishedListAndEntries(t *testing.T) {
	svc, engine := newServiceWithEngine(t)
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 61}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := engine.CallNext(ctx, queue.CallNextRequest{StationID: 1, OperatorCode: "op-1"}); err != nil {
		t.Fatalf("CallNext failed: %v", err)
	}
	if err := engine.FinishCustomer(ctx, 61); err != nil {
		t.Fatalf("FinishCustomer failed: %v", err)
	}

	finished, err := svc.FinishedList(ctx)
	if err != nil {
		t.Fatalf("FinishedList failed: %v", err)
	}
	if len(finished) != 1 || finished[0].CustomerNumber != 61 || finished[0].StationName != "Registration" {
		t.Fatalf("unexpected finished list %#v", finished)
	}
	if finished[0].FinishedAt == "" {
		t.Fatal("expected finished timestamp")
	}

	entries, err := svc.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != "finished" {
		t.Fatalf("unexpected entries %#v", entries)
	}
}

func TestAllStationsIncludesHidden(t *testing.T) {
	svc, engine := newServiceWithEngine(t)
	ctx := context.Background()

	if _, err := engine.ToggleStationHidden(ctx, 1); err != nil {
		t.Fatalf("ToggleStationHidden failed: %v", err)
	}

	stations, err := svc.AllStations(ctx)
	if err != nil {
		t.Fatalf("AllStations failed: %v", err)
	}
	if len(stations) != 3 {
		t.Fatalf("expected every station, got %d", len(stations))
	}
	if !stations[0].Hidden {
		t.Fatal("expected station 1 to be reported hidden")
	}
}

func TestVerifyOperator(t *testing.T) {
	svc, _ := newServiceWithEngine(t)
	ctx := context.Background()

	operator, err := svc.VerifyOperator(ctx, "op-exit")
	if err != nil {
		t.Fatalf("VerifyOperator failed: %v", err)
	}
	if operator == nil || !operator.FinishOperator {
		t.Fatalf("expected finish operator, got %#v", operator)
	}

	unknown, err := svc.VerifyOperator(ctx, "nope")
	if err != nil {
		t.Fatalf("VerifyOperator failed: %v", err)
	}
	if unknown != nil {
		t.Fatalf("expected nil for unknown code, got %#v", unknown)
	}
}

func TestCustomerHistoryResponse(t *testing.T) {
	svc, engine := newServiceWithEngine(t)
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 71}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	history, err := svc.CustomerHistory(ctx, 71)
	if err != nil {
		t.Fatalf("CustomerHistory failed: %v", err)
	}
	if history.CustomerNumber != 71 || len(history.Items) != 1 {
		t.Fatalf("unexpected history %#v", history)
	}
	if history.Items[0].Action != "added" || history.Items[0].Status != "waiting" {
		t.Fatalf("unexpected history item %#v", history.Items[0])
	}
}
