// Package server exposes the queue engine and read aggregates over HTTP.
//
// The public surface splits in three: display reads (center board, station
// list, report, history), operator actions (enqueue, call-next, finish,
// release, transfer, toggles) authenticated per-request by operator code,
// and an admin surface gated by a bearer token. When no admin token is
// configured the admin routes are not registered at all.
//
// A file lock guards the bind so two instances never serve the same store.
package server
