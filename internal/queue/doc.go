// Package queue persists stations, operators, and customer queue entries in
// SQLite and exposes the transactional engine that drives the customer
// lifecycle.
//
// The Store manages database connections, schema initialization, and typed
// accessors for the four record kinds. The Engine owns the process-wide write
// gate: every mutating operation (enqueue, call-next, insert, finish, release,
// transfer, admin edits) runs inside a single transaction while the gate is
// held, so concurrent stations can never double-call or double-count a
// customer. Reads bypass the gate entirely.
//
// Stations may share a waiting line through queue_group_id; the canonical
// holder of a shared line is always the lowest station id in the group. Treat
// this package as the single source of truth for queue semantics; when you add
// new statuses or columns, update schema.sql and bump schemaVersion.
package queue
