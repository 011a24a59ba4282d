package queue

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures so callers and the HTTP boundary can map
// them without string matching.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindUnauthorized    Kind = "unauthorized"
	KindDuplicate       Kind = "duplicate_in_queue"
	KindConflict        Kind = "conflict_across_queues"
	KindQueueEmpty      Kind = "queue_empty"
	KindInvalidPosition Kind = "invalid_position"
	KindNotInService    Kind = "not_in_service"
	KindNotFinished     Kind = "not_finished"
	KindValidation      Kind = "validation"
	KindStorage         Kind = "storage"
)

// Error is a classified engine failure. Validation and lookup failures are
// produced before any mutation; KindStorage wraps transaction-level I/O
// errors after a full rollback.
type Error struct {
	kind Kind
	msg  string
	err  error

	// ExistingStation and NewStation are set for KindConflict so the caller
	// can offer a transfer.
	ExistingStation string
	NewStation      string
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// ErrorKind returns the classification of the failure.
func (e *Error) ErrorKind() Kind { return e.kind }

// KindOf extracts the classification from an error chain. Unclassified
// errors report KindStorage.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.kind
	}
	return KindStorage
}

func errNotFound(format string, args ...any) *Error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

func errUnauthorized(format string, args ...any) *Error {
	return &Error{kind: KindUnauthorized, msg: fmt.Sprintf(format, args...)}
}

func errValidation(format string, args ...any) *Error {
	return &Error{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

func errDuplicate(customer int64, station string) *Error {
	return &Error{
		kind: KindDuplicate,
		msg:  fmt.Sprintf("customer %d is already in the queue at %s", customer, station),
	}
}

func errConflict(customer int64, existing, next string) *Error {
	return &Error{
		kind:            KindConflict,
		msg:             fmt.Sprintf("customer %d is already queued at %s", customer, existing),
		ExistingStation: existing,
		NewStation:      next,
	}
}

func errQueueEmpty(station string) *Error {
	return &Error{kind: KindQueueEmpty, msg: fmt.Sprintf("no customers waiting at %s", station)}
}

func errInvalidPosition(position int) *Error {
	return &Error{kind: KindInvalidPosition, msg: fmt.Sprintf("position must be >= 1, got %d", position)}
}

func errNotInService(customer int64) *Error {
	return &Error{kind: KindNotInService, msg: fmt.Sprintf("customer %d is not in service", customer)}
}

func errNotFinished(customer int64) *Error {
	return &Error{kind: KindNotFinished, msg: fmt.Sprintf("customer %d has no finished entry", customer)}
}

func errStorage(err error, format string, args ...any) *Error {
	return &Error{kind: KindStorage, msg: fmt.Sprintf(format, args...), err: err}
}
