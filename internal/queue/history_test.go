package queue_test

import (
	"context"
	"testing"

	"waitline/internal/queue"
	"waitline/internal/testsupport"
)

func TestCustomerHistoryKeepsNewestPerStation(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 500}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := engine.CallNext(ctx, queue.CallNextRequest{StationID: 1, OperatorCode: "op-1"}); err != nil {
		t.Fatalf("CallNext failed: %v", err)
	}
	if err := engine.FinishCustomer(ctx, 500); err != nil {
		t.Fatalf("FinishCustomer failed: %v", err)
	}

	records, err := engine.Store().CustomerHistory(ctx, 500)
	if err != nil {
		t.Fatalf("CustomerHistory failed: %v", err)
	}
	// added, called, completed, finished all happened at station 1; only the
	// newest row per station survives.
	if len(records) != 1 {
		t.Fatalf("expected one record per station, got %d", len(records))
	}
	if records[0].Status != queue.StatusFinished {
		t.Fatalf("expected newest status finished, got %s", records[0].Status)
	}
	if records[0].StationName != "Registration" {
		t.Fatalf("expected snapshot station name, got %q", records[0].StationName)
	}
}

func TestCustomerHistorySpansStations(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := engine.Enqueue(ctx, queue.EnqueueRequest{StationID: 1, CustomerNumber: 501}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := engine.TransferToStation(ctx, queue.TransferRequest{CustomerNumber: 501, StationName: "Service A"}); err != nil {
		t.Fatalf("TransferToStation failed: %v", err)
	}

	records, err := engine.Store().CustomerHistory(ctx, 501)
	if err != nil {
		t.Fatalf("CustomerHistory failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected two stations in history, got %d", len(records))
	}
	if records[0].StationID != 1 || records[1].StationID != 2 {
		t.Fatalf("expected stations [1 2], got [%d %d]", records[0].StationID, records[1].StationID)
	}
	if records[1].Action != "transferred" {
		t.Fatalf("expected transferred action, got %q", records[1].Action)
	}
}

func TestCustomerHistoryEmptyForUnknownCustomer(t *testing.T) {
	engine := testsupport.NewEngine(t, testsupport.NewConfig(t))

	records, err := engine.Store().CustomerHistory(context.Background(), 999)
	if err != nil {
		t.Fatalf("CustomerHistory failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no history, got %d records", len(records))
	}
}
