package queue_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"waitline/internal/queue"
	"waitline/internal/testsupport"
)

func TestEnqueueAssignsTailPositions(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 100})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	second, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 101})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if first.Position != 1 || second.Position != 2 {
		t.Fatalf("expected positions 1 and 2, got %d and %d", first.Position, second.Position)
	}
	if first.Status != queue.StatusWaiting {
		t.Fatalf("expected waiting status, got %s", first.Status)
	}
}

func TestEnqueueRejectsUnknownStation(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))

	_, err := engine.Enqueue(context.Background(), queue.EnqueueRequest{StationID: 99, CustomerNumber: 100})
	if queue.KindOf(err) != queue.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestEnqueueRejectsDuplicateInSharedQueue(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 2, CustomerNumber: 200}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	// Stations 2 and 3 share one waiting line; joining via either member is
	// the same queue.
	_, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 3, CustomerNumber: 200})
	if queue.KindOf(err) != queue.KindDuplicate {
		t.Fatalf("expected duplicate_in_queue, got %v", err)
	}
}

func TestEnqueueConflictAcrossQueues(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 300}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	_, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 2, CustomerNumber: 300})
	if queue.KindOf(err) != queue.KindConflict {
		t.Fatalf("expected conflict_across_queues, got %v", err)
	}
	var qerr *queue.Error
	if !errors.As(err, &qerr) {
		t.Fatalf("expected *queue.Error, got %T", err)
	}
	if qerr.ExistingStation != "Registration" || qerr.NewStation != "Service A" {
		t.Fatalf("unexpected conflict stations: existing=%q new=%q", qerr.ExistingStation, qerr.NewStation)
	}
}

func TestEnqueueAllowTransferMovesCustomer(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 300}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	entry, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 2, CustomerNumber: 300, AllowTransfer: true})
	if err != nil {
		t.Fatalf("Enqueue with transfer failed: %v", err)
	}
	if entry.StationID != 2 {
		t.Fatalf("expected entry at station 2, got %d", entry.StationID)
	}

	active, err := engine.Store().ActiveEntry(ctx, 300)
	if err != nil {
		t.Fatalf("ActiveEntry failed: %v", err)
	}
	if active == nil || active.StationID != 2 {
		t.Fatalf("expected single active entry at station 2, got %#v", active)
	}
}

func TestCallNextOrdersByPositionThenArrival(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	for _, customer := range []int64{10, 11, 12} {
		if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: customer}); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	first, err := engine.CallNext(ctx, queue.CallNextRequest{StationID: 1, OperatorCode: "op-1"})
	if err != nil {
		t.Fatalf("CallNext failed: %v", err)
	}
	if first.CustomerNumber != 10 {
		t.Fatalf("expected customer 10 called first, got %d", first.CustomerNumber)
	}

	second, err := engine.CallNext(ctx, queue.CallNextRequest{StationID: 1, OperatorCode: "op-1"})
	if err != nil {
		t.Fatalf("CallNext failed: %v", err)
	}
	if second.CustomerNumber != 11 {
		t.Fatalf("expected customer 11 called second, got %d", second.CustomerNumber)
	}

	// Calling the next customer ends the previous interaction.
	previous, err := engine.Store().ActiveEntry(ctx, 10)
	if err != nil {
		t.Fatalf("ActiveEntry failed: %v", err)
	}
	if previous != nil {
		t.Fatalf("expected customer 10 to leave the active set, got %#v", previous)
	}
}

func TestCallNextRequiresStationOperator(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 10}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	_, err := engine.CallNext(ctx, queue.CallNextRequest{StationID: 1, OperatorCode: "op-2"})
	if queue.KindOf(err) != queue.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCallNextEmptyQueueLeavesStateUntouched(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	_, err := engine.CallNext(ctx, queue.CallNextRequest{StationID: 1, OperatorCode: "op-1"})
	if queue.KindOf(err) != queue.KindQueueEmpty {
		t.Fatalf("expected queue_empty, got %v", err)
	}

	entries, err := engine.Store().Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestCallNextAcrossGroupReassignsStation(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 2, CustomerNumber: 555}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	called, err := engine.CallNext(ctx, queue.CallNextRequest{StationID: 3, OperatorCode: "op-3"})
	if err != nil {
		t.Fatalf("CallNext failed: %v", err)
	}
	if called.CustomerNumber != 555 {
		t.Fatalf("expected customer 555, got %d", called.CustomerNumber)
	}
	if called.StationID != 3 {
		t.Fatalf("expected entry reassigned to station 3, got %d", called.StationID)
	}

	serving, err := engine.Store().CalledAt(ctx, 3)
	if err != nil {
		t.Fatalf("CalledAt failed: %v", err)
	}
	if serving == nil || serving.CustomerNumber != 555 {
		t.Fatalf("expected station 3 to be serving 555, got %#v", serving)
	}
}

func TestInsertAtPositionShiftsLine(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	for _, customer := range []int64{10, 11, 12} {
		if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: customer}); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	inserted, err := engine.InsertAtPosition(ctx, queue.InsertRequest{StationID: 1, CustomerNumber: 99, Position: 1})
	if err != nil {
		t.Fatalf("InsertAtPosition failed: %v", err)
	}
	if inserted.Position != 1 {
		t.Fatalf("expected position 1, got %d", inserted.Position)
	}

	waiting, err := engine.Store().WaitingAt(ctx, 1, 0)
	if err != nil {
		t.Fatalf("WaitingAt failed: %v", err)
	}
	want := []int64{99, 10, 11, 12}
	if len(waiting) != len(want) {
		t.Fatalf("expected %d waiting entries, got %d", len(want), len(waiting))
	}
	for i, entry := range waiting {
		if entry.CustomerNumber != want[i] {
			t.Fatalf("waiting[%d]: expected customer %d, got %d", i, want[i], entry.CustomerNumber)
		}
		if entry.Position != i+1 {
			t.Fatalf("waiting[%d]: expected position %d, got %d", i, i+1, entry.Position)
		}
	}
}

func TestInsertAtPositionRejectsInvalidPosition(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))

	_, err := engine.InsertAtPosition(context.Background(), queue.InsertRequest{StationID: 1, CustomerNumber: 99, Position: 0})
	if queue.KindOf(err) != queue.KindInvalidPosition {
		t.Fatalf("expected invalid_position, got %v", err)
	}
}

func TestInsertAtPositionMovesExistingActiveEntry(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 42}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := engine.InsertAtPosition(ctx, queue.InsertRequest{StationID: 3, CustomerNumber: 42, Position: 1}); err != nil {
		t.Fatalf("InsertAtPosition failed: %v", err)
	}

	active, err := engine.Store().ActiveEntry(ctx, 42)
	if err != nil {
		t.Fatalf("ActiveEntry failed: %v", err)
	}
	// Station 3 routes to the group's shared line held by station 2.
	if active == nil || active.StationID != 2 {
		t.Fatalf("expected one active entry at station 2, got %#v", active)
	}
}

func TestFinishRequiresCalledEntry(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 50}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	err := engine.FinishCustomer(ctx, 50)
	if queue.KindOf(err) != queue.KindNotInService {
		t.Fatalf("expected not_in_service, got %v", err)
	}
}

func TestFinishStampsBothTransitions(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 50}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := engine.CallNext(ctx, queue.CallNextRequest{StationID: 1, OperatorCode: "op-1"}); err != nil {
		t.Fatalf("CallNext failed: %v", err)
	}
	if err := engine.FinishCustomer(ctx, 50); err != nil {
		t.Fatalf("FinishCustomer failed: %v", err)
	}

	details, err := engine.Store().FinishedEntries(ctx)
	if err != nil {
		t.Fatalf("FinishedEntries failed: %v", err)
	}
	if len(details) != 1 || details[0].CustomerNumber != 50 {
		t.Fatalf("expected one finished entry for 50, got %#v", details)
	}
	if details[0].CompletedAt == nil || details[0].FinishedAt == nil {
		t.Fatalf("expected completed and finished timestamps, got %#v", details[0])
	}
}

func TestReleaseRequiresFinishedEntry(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 60}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	err := engine.ReleaseCustomer(ctx, queue.ReleaseRequest{CustomerNumber: 60, OperatorCode: "op-exit"})
	if queue.KindOf(err) != queue.KindNotFinished {
		t.Fatalf("expected not_finished, got %v", err)
	}
}

func TestReleaseRejectsUnknownOperator(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))

	err := engine.ReleaseCustomer(context.Background(), queue.ReleaseRequest{CustomerNumber: 60, OperatorCode: "nobody"})
	if queue.KindOf(err) != queue.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestFullLifecycleTimestampsMonotonic(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	created, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 70})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := engine.CallNext(ctx, queue.CallNextRequest{StationID: 1, OperatorCode: "op-1"}); err != nil {
		t.Fatalf("CallNext failed: %v", err)
	}
	if err := engine.FinishCustomer(ctx, 70); err != nil {
		t.Fatalf("FinishCustomer failed: %v", err)
	}
	if err := engine.ReleaseCustomer(ctx, queue.ReleaseRequest{CustomerNumber: 70, OperatorCode: "op-exit"}); err != nil {
		t.Fatalf("ReleaseCustomer failed: %v", err)
	}

	entry, err := engine.Store().EntryByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("EntryByID failed: %v", err)
	}
	if entry == nil || entry.Status != queue.StatusReleased {
		t.Fatalf("expected released entry, got %#v", entry)
	}
	if entry.CalledAt == nil || entry.CompletedAt == nil || entry.FinishedAt == nil || entry.ReleasedAt == nil {
		t.Fatalf("expected all lifecycle timestamps, got %#v", entry)
	}
	if entry.CalledAt.Before(entry.CreatedAt) {
		t.Fatal("called_at precedes created_at")
	}
	if entry.CompletedAt.Before(*entry.CalledAt) {
		t.Fatal("completed_at precedes called_at")
	}
	if entry.FinishedAt.Before(*entry.CompletedAt) {
		t.Fatal("finished_at precedes completed_at")
	}
	if entry.ReleasedAt.Before(*entry.FinishedAt) {
		t.Fatal("released_at precedes finished_at")
	}
}

func TestTransferLeavesSingleActiveEntry(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 80}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	entry, err := engine.TransferToStation(ctx, queue.TransferRequest{CustomerNumber: 80, StationName: "Service A"})
	if err != nil {
		t.Fatalf("TransferToStation failed: %v", err)
	}
	if entry.StationID != 2 {
		t.Fatalf("expected transfer target station 2, got %d", entry.StationID)
	}

	active, err := engine.Store().ActiveEntry(ctx, 80)
	if err != nil {
		t.Fatalf("ActiveEntry failed: %v", err)
	}
	if active == nil || active.ID != entry.ID {
		t.Fatalf("expected the transferred entry to be the only active one, got %#v", active)
	}
}

func TestTransferToUnknownStation(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))

	_, err := engine.TransferToStation(context.Background(), queue.TransferRequest{CustomerNumber: 80, StationName: "Lost And Found"})
	if queue.KindOf(err) != queue.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestToggleStationActive(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	active, err := engine.ToggleStationActive(ctx, queue.ToggleStationRequest{StationID: 1, OperatorCode: "op-1"})
	if err != nil {
		t.Fatalf("ToggleStationActive failed: %v", err)
	}
	if active {
		t.Fatal("expected station to become inactive")
	}

	if _, err := engine.ToggleStationActive(ctx, queue.ToggleStationRequest{StationID: 1, OperatorCode: "op-2"}); queue.KindOf(err) != queue.KindUnauthorized {
		t.Fatalf("expected unauthorized for wrong operator, got %v", err)
	}
}

func TestToggleStationHiddenAffectsVisibility(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	hidden, err := engine.ToggleStationHidden(ctx, 1)
	if err != nil {
		t.Fatalf("ToggleStationHidden failed: %v", err)
	}
	if !hidden {
		t.Fatal("expected station to become hidden")
	}

	visible, err := engine.Store().VisibleStations(ctx)
	if err != nil {
		t.Fatalf("VisibleStations failed: %v", err)
	}
	for _, station := range visible {
		if station.ID == 1 {
			t.Fatal("hidden station still listed as visible")
		}
	}
}

func TestEditEntryPartialUpdate(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	created, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 90})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	number := int64(91)
	if err := engine.EditEntry(ctx, queue.EditEntryRequest{ID: created.ID, CustomerNumber: &number}); err != nil {
		t.Fatalf("EditEntry failed: %v", err)
	}

	entry, err := engine.Store().EntryByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("EntryByID failed: %v", err)
	}
	if entry.CustomerNumber != 91 {
		t.Fatalf("expected customer number 91, got %d", entry.CustomerNumber)
	}
	if entry.Status != queue.StatusWaiting {
		t.Fatalf("expected untouched status, got %s", entry.Status)
	}
}

func TestEditEntryRequiresFields(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))

	err := engine.EditEntry(context.Background(), queue.EditEntryRequest{ID: 1})
	if queue.KindOf(err) != queue.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteEntryUnknownID(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))

	err := engine.DeleteEntry(context.Background(), 12345)
	if queue.KindOf(err) != queue.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestConcurrentCallNextNeverDoubleCalls(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	const customers = 8
	for i := int64(1); i <= customers; i++ {
		if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 1000 + i}); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	results := make(chan int64, customers)
	for i := 0; i < customers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, err := engine.CallNext(ctx, queue.CallNextRequest{StationID: 1, OperatorCode: "op-1"})
			if err != nil {
				t.Errorf("CallNext failed: %v", err)
				return
			}
			results <- entry.CustomerNumber
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool, customers)
	for customer := range results {
		if seen[customer] {
			t.Fatalf("customer %d called twice", customer)
		}
		seen[customer] = true
	}
	if len(seen) != customers {
		t.Fatalf("expected %d distinct called customers, got %d", customers, len(seen))
	}
}
