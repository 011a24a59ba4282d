package queue

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"waitline/internal/logging"
)

// Engine executes the transactional queue operations. A single process-wide
// mutex serializes every mutation; this is intentionally coarse (one global
// critical section rather than per-station locks) because not double-calling
// a customer matters more than parallel write throughput at counter scale.
// Reads never take the gate.
type Engine struct {
	mu     sync.Mutex
	store  *Store
	logger *slog.Logger
}

// NewEngine wraps a store with the mutation gate.
func NewEngine(store *Store, logger *slog.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// Store exposes the underlying store for read-side consumers.
func (e *Engine) Store() *Store {
	return e.store
}

func (e *Engine) log() *slog.Logger {
	if e.logger != nil {
		return e.logger.With(logging.String(logging.FieldComponent, "queue-engine"))
	}
	return logging.NewNop()
}

// run executes one mutation under the gate. Classified errors pass through;
// anything else is a storage failure after full rollback.
func (e *Engine) run(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.store.withTx(ctx, fn)
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	return errStorage(err, "%s failed", op)
}

// EnqueueRequest adds a customer to the tail of a station's waiting line.
type EnqueueRequest struct {
	StationID      int64
	CustomerNumber int64
	// AllowTransfer pulls the customer out of any other queue instead of
	// failing with a cross-queue conflict.
	AllowTransfer bool
}

// Enqueue registers a customer at the station's shared waiting line and
// appends an "added" history record.
func (e *Engine) Enqueue(ctx context.Context, req EnqueueRequest) (*Entry, error) {
	if req.CustomerNumber <= 0 {
		return nil, errValidation("customer number must be positive")
	}

	var created *Entry
	err := e.run(ctx, "enqueue", func(tx *sql.Tx) error {
		station, err := e.store.stationByIDTx(ctx, tx, req.StationID)
		if err != nil {
			return err
		}
		if station == nil {
			return errNotFound("station %d not found", req.StationID)
		}

		queueStationID, err := e.store.resolveQueueStationTx(ctx, tx, station)
		if err != nil {
			return err
		}

		if existing, err := e.store.activeEntryAtTx(ctx, tx, queueStationID, req.CustomerNumber); err != nil {
			return err
		} else if existing != nil {
			return errDuplicate(req.CustomerNumber, station.Name)
		}

		elsewhere, err := e.store.activeAnywhereTx(ctx, tx, req.CustomerNumber)
		if err != nil {
			return err
		}
		if elsewhere != nil {
			otherName, err := e.store.stationNameTx(ctx, tx, elsewhere.StationID)
			if err != nil {
				return err
			}
			if !req.AllowTransfer {
				return errConflict(req.CustomerNumber, otherName, station.Name)
			}
			if err := e.store.deleteActiveAtTx(ctx, tx, req.CustomerNumber, elsewhere.StationID); err != nil {
				return err
			}
		}

		maxPos, err := e.store.maxWaitingPositionTx(ctx, tx, queueStationID)
		if err != nil {
			return err
		}
		created, err = e.store.insertEntryTx(ctx, tx, queueStationID, req.CustomerNumber, maxPos+1, time.Now())
		if err != nil {
			return err
		}

		queueName, err := e.store.stationNameTx(ctx, tx, queueStationID)
		if err != nil {
			return err
		}
		e.recordHistory(ctx, tx, req.CustomerNumber, queueStationID, queueName, StatusWaiting, actionAdded)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log().Info("customer added",
		slog.Int64("customer", req.CustomerNumber),
		slog.Int64("station_id", created.StationID),
		slog.Int("position", created.Position),
	)
	return created, nil
}

// CallNextRequest calls the next waiting customer to a station.
type CallNextRequest struct {
	StationID    int64
	OperatorCode string
}

// CallNext selects the lowest (position, created_at) waiting entry across the
// station's queue group, reassigns it to the calling station, completes
// whichever customer that station was serving, and removes waiting
// duplicates left elsewhere in the group.
//
// The finish-operator capability does not bypass the station check here:
// only the station's own operator may call its queue.
func (e *Engine) CallNext(ctx context.Context, req CallNextRequest) (*Entry, error) {
	if req.OperatorCode == "" {
		return nil, errValidation("operator code is required")
	}

	var called *Entry
	err := e.run(ctx, "call next", func(tx *sql.Tx) error {
		if _, err := e.operatorForStationTx(ctx, tx, req.OperatorCode, req.StationID); err != nil {
			return err
		}

		station, err := e.store.stationByIDTx(ctx, tx, req.StationID)
		if err != nil {
			return err
		}
		if station == nil {
			return errNotFound("station %d not found", req.StationID)
		}

		memberIDs, err := e.store.groupMemberIDsTx(ctx, tx, station)
		if err != nil {
			return err
		}

		next, err := e.store.nextWaitingTx(ctx, tx, memberIDs)
		if err != nil {
			return err
		}
		if next == nil {
			return errQueueEmpty(station.Name)
		}

		now := time.Now()
		if err := e.store.completeCalledAtTx(ctx, tx, station.ID, now); err != nil {
			return err
		}
		if err := e.store.markCalledTx(ctx, tx, next.ID, station.ID, now); err != nil {
			return err
		}

		e.recordHistory(ctx, tx, next.CustomerNumber, station.ID, station.Name, StatusCalled, actionCalled)

		if station.Grouped() {
			if err := e.store.deleteWaitingElsewhereTx(ctx, tx, next.CustomerNumber, station.ID); err != nil {
				return err
			}
		}

		calledAt := now.UTC()
		called = next
		called.Status = StatusCalled
		called.StationID = station.ID
		called.CalledAt = &calledAt
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log().Info("customer called",
		slog.Int64("customer", called.CustomerNumber),
		slog.Int64("station_id", called.StationID),
	)
	return called, nil
}

// InsertRequest places a customer at an explicit position in a waiting line.
type InsertRequest struct {
	StationID      int64
	CustomerNumber int64
	Position       int
}

// InsertAtPosition is an operator override: any active entry for the
// customer is removed without a conflict prompt, the waiting line is
// renumbered to open a gap, and the customer takes the requested slot.
func (e *Engine) InsertAtPosition(ctx context.Context, req InsertRequest) (*Entry, error) {
	if req.CustomerNumber <= 0 {
		return nil, errValidation("customer number must be positive")
	}
	if req.Position < 1 {
		return nil, errInvalidPosition(req.Position)
	}

	var created *Entry
	err := e.run(ctx, "insert at position", func(tx *sql.Tx) error {
		station, err := e.store.stationByIDTx(ctx, tx, req.StationID)
		if err != nil {
			return err
		}
		if station == nil {
			return errNotFound("station %d not found", req.StationID)
		}

		queueStationID, err := e.store.resolveQueueStationTx(ctx, tx, station)
		if err != nil {
			return err
		}

		existing, err := e.store.activeAnywhereTx(ctx, tx, req.CustomerNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := e.store.deleteActiveAtTx(ctx, tx, req.CustomerNumber, existing.StationID); err != nil {
				return err
			}
		}

		waiting, err := e.store.waitingOrderedTx(ctx, tx, queueStationID)
		if err != nil {
			return err
		}
		// Entries before the slot keep their rank; the slot and everything
		// after shift down by one, leaving a gap at req.Position.
		for i, entry := range waiting {
			newPosition := i + 1
			if i >= req.Position-1 {
				newPosition = i + 2
			}
			if err := e.store.setPositionTx(ctx, tx, entry.ID, newPosition); err != nil {
				return err
			}
		}

		created, err = e.store.insertEntryTx(ctx, tx, queueStationID, req.CustomerNumber, req.Position, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log().Info("customer inserted",
		slog.Int64("customer", req.CustomerNumber),
		slog.Int64("station_id", created.StationID),
		slog.Int("position", req.Position),
	)
	return created, nil
}

// FinishCustomer ends the current service interaction and marks the customer
// ready for final release: called → completed → finished, with a history
// record for each step.
func (e *Engine) FinishCustomer(ctx context.Context, customer int64) error {
	if customer <= 0 {
		return errValidation("customer number must be positive")
	}

	var stationID int64
	err := e.run(ctx, "finish customer", func(tx *sql.Tx) error {
		entry, err := e.store.entryByCustomerStatusTx(ctx, tx, customer, StatusCalled)
		if err != nil {
			return err
		}
		if entry == nil {
			return errNotInService(customer)
		}
		stationID = entry.StationID

		stationName, err := e.store.stationNameTx(ctx, tx, entry.StationID)
		if err != nil {
			return err
		}

		now := time.Now()
		if _, err := e.store.transitionEntryTx(ctx, tx, entry.ID, StatusCalled, StatusCompleted, now); err != nil {
			return err
		}
		e.recordHistory(ctx, tx, customer, entry.StationID, stationName, StatusCompleted, actionCompleted)

		if _, err := e.store.transitionEntryTx(ctx, tx, entry.ID, StatusCompleted, StatusFinished, now); err != nil {
			return err
		}
		e.recordHistory(ctx, tx, customer, entry.StationID, stationName, StatusFinished, actionFinished)
		return nil
	})
	if err != nil {
		return err
	}

	e.log().Info("customer finished",
		slog.Int64("customer", customer),
		slog.Int64("station_id", stationID),
	)
	return nil
}

// ReleaseRequest moves a finished customer out of the building.
type ReleaseRequest struct {
	CustomerNumber int64
	OperatorCode   string
}

// ReleaseCustomer transitions the customer's finished entry to released. Any
// valid operator may release; the operation is not station-scoped.
func (e *Engine) ReleaseCustomer(ctx context.Context, req ReleaseRequest) error {
	if req.CustomerNumber <= 0 {
		return errValidation("customer number must be positive")
	}
	if req.OperatorCode == "" {
		return errValidation("operator code is required")
	}

	operator, err := e.store.OperatorByCode(ctx, req.OperatorCode)
	if err != nil {
		return errStorage(err, "look up operator")
	}
	if operator == nil {
		return errUnauthorized("operator code not recognized")
	}

	err = e.run(ctx, "release customer", func(tx *sql.Tx) error {
		entry, err := e.store.entryByCustomerStatusTx(ctx, tx, req.CustomerNumber, StatusFinished)
		if err != nil {
			return err
		}
		if entry == nil {
			return errNotFinished(req.CustomerNumber)
		}

		stationName, err := e.store.stationNameTx(ctx, tx, entry.StationID)
		if err != nil {
			return err
		}
		if _, err := e.store.transitionEntryTx(ctx, tx, entry.ID, StatusFinished, StatusReleased, time.Now()); err != nil {
			return err
		}
		e.recordHistory(ctx, tx, req.CustomerNumber, entry.StationID, stationName, StatusReleased, actionReleased)
		return nil
	})
	if err != nil {
		return err
	}

	e.log().Info("customer released", slog.Int64("customer", req.CustomerNumber))
	return nil
}

// TransferRequest reroutes a customer to a specific named station.
type TransferRequest struct {
	CustomerNumber int64
	StationName    string
}

// TransferToStation deletes any active entry for the customer anywhere and
// enqueues them fresh at the named station, recording a "transferred"
// history row. Used for overflow and escalation stations.
func (e *Engine) TransferToStation(ctx context.Context, req TransferRequest) (*Entry, error) {
	if req.CustomerNumber <= 0 {
		return nil, errValidation("customer number must be positive")
	}

	target, err := e.store.StationByName(ctx, req.StationName)
	if err != nil {
		return nil, errStorage(err, "look up station")
	}
	if target == nil {
		return nil, errNotFound("station %q not found", req.StationName)
	}

	var created *Entry
	err = e.run(ctx, "transfer customer", func(tx *sql.Tx) error {
		if err := e.store.deleteActiveEverywhereTx(ctx, tx, req.CustomerNumber); err != nil {
			return err
		}
		maxPos, err := e.store.maxWaitingPositionTx(ctx, tx, target.ID)
		if err != nil {
			return err
		}
		created, err = e.store.insertEntryTx(ctx, tx, target.ID, req.CustomerNumber, maxPos+1, time.Now())
		if err != nil {
			return err
		}
		e.recordHistory(ctx, tx, req.CustomerNumber, target.ID, target.Name, StatusWaiting, actionTransferred)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log().Info("customer transferred",
		slog.Int64("customer", req.CustomerNumber),
		slog.String("station", target.Name),
	)
	return created, nil
}

// ToggleStationRequest flips a station's active flag.
type ToggleStationRequest struct {
	StationID    int64
	OperatorCode string
}

// ToggleStationActive flips is_active for the operator's own station. No
// queue entries are touched.
func (e *Engine) ToggleStationActive(ctx context.Context, req ToggleStationRequest) (bool, error) {
	if req.OperatorCode == "" {
		return false, errValidation("operator code is required")
	}

	var active bool
	err := e.run(ctx, "toggle station active", func(tx *sql.Tx) error {
		if _, err := e.operatorForStationTx(ctx, tx, req.OperatorCode, req.StationID); err != nil {
			return err
		}
		station, err := e.store.stationByIDTx(ctx, tx, req.StationID)
		if err != nil {
			return err
		}
		if station == nil {
			return errNotFound("station %d not found", req.StationID)
		}
		active = !station.IsActive
		return e.store.setStationActiveTx(ctx, tx, station.ID, active)
	})
	if err != nil {
		return false, err
	}

	e.log().Info("station active toggled",
		slog.Int64("station_id", req.StationID),
		slog.Bool("is_active", active),
	)
	return active, nil
}

// ToggleStationHidden flips a station's visibility on public displays.
// Admin-only; authorization happens at the boundary.
func (e *Engine) ToggleStationHidden(ctx context.Context, stationID int64) (bool, error) {
	var hidden bool
	err := e.run(ctx, "toggle station hidden", func(tx *sql.Tx) error {
		station, err := e.store.stationByIDTx(ctx, tx, stationID)
		if err != nil {
			return err
		}
		if station == nil {
			return errNotFound("station %d not found", stationID)
		}
		hidden = !station.Hidden
		return e.store.setStationHiddenTx(ctx, tx, station.ID, hidden)
	})
	if err != nil {
		return false, err
	}

	e.log().Info("station visibility toggled",
		slog.Int64("station_id", stationID),
		slog.Bool("hidden", hidden),
	)
	return hidden, nil
}

// EditEntryRequest is a partial admin update of one entry. Nil fields are
// left untouched.
type EditEntryRequest struct {
	ID             int64
	CustomerNumber *int64
	Status         *Status
	StationID      *int64
}

// EditEntry mutates entry fields directly, bypassing the state machine. For
// operator error-correction; no history record is written.
func (e *Engine) EditEntry(ctx context.Context, req EditEntryRequest) error {
	if req.CustomerNumber == nil && req.Status == nil && req.StationID == nil {
		return errValidation("no fields to update")
	}
	if req.Status != nil {
		if _, ok := ParseStatus(string(*req.Status)); !ok {
			return errValidation("unknown status %q", *req.Status)
		}
	}

	return e.run(ctx, "edit entry", func(tx *sql.Tx) error {
		entry, err := e.store.entryByIDTx(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if entry == nil {
			return errNotFound("entry %d not found", req.ID)
		}

		if req.CustomerNumber != nil {
			if *req.CustomerNumber <= 0 {
				return errValidation("customer number must be positive")
			}
			if _, err := tx.ExecContext(ctx, `UPDATE queue_entries SET customer_number = ? WHERE id = ?`, *req.CustomerNumber, req.ID); err != nil {
				return err
			}
		}
		if req.Status != nil {
			if _, err := tx.ExecContext(ctx, `UPDATE queue_entries SET status = ? WHERE id = ?`, *req.Status, req.ID); err != nil {
				return err
			}
		}
		if req.StationID != nil {
			station, err := e.store.stationByIDTx(ctx, tx, *req.StationID)
			if err != nil {
				return err
			}
			if station == nil {
				return errNotFound("station %d not found", *req.StationID)
			}
			if _, err := tx.ExecContext(ctx, `UPDATE queue_entries SET station_id = ? WHERE id = ?`, *req.StationID, req.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteEntry removes an entry outright. Admin-only override; no history
// record is written.
func (e *Engine) DeleteEntry(ctx context.Context, id int64) error {
	err := e.run(ctx, "delete entry", func(tx *sql.Tx) error {
		affected, err := e.store.deleteEntryTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return errNotFound("entry %d not found", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.log().Info("entry deleted", slog.Int64("entry_id", id))
	return nil
}

// operatorForStationTx authorizes an operator code against a specific
// station.
func (e *Engine) operatorForStationTx(ctx context.Context, tx *sql.Tx, code string, stationID int64) (*Operator, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+operatorColumns+` FROM operators WHERE code = ? AND station_id = ?`,
		code, stationID,
	)
	operator, err := scanOperator(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errUnauthorized("operator not assigned to station %d", stationID)
	}
	if err != nil {
		return nil, err
	}
	return operator, nil
}
