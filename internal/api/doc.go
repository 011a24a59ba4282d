// Package api exposes read-only aggregate views over the queue store as
// transport-friendly DTOs: the center display board, station summaries, the
// daily report, and customer history. Aggregates are point-in-time snapshots;
// they never take the engine's write gate, so concurrent mutations may be
// reflected partially between successive queries inside one response. That
// is acceptable for display-oriented consumers.
package api
