package flightrecorder

import (
	"context"
	"time"
)

// MaxEventLimit is the hard cap EventFilter.Limit is clamped to (§4.4).
const MaxEventLimit = 10000

// DefaultEventLimit is applied when EventFilter.Limit is zero.
const DefaultEventLimit = 1000

// EventFilter narrows a Query call. A zero value matches every event,
// subject to DefaultEventLimit.
type EventFilter struct {
	TraceID   string
	JobID     string
	SessionID string
	EventKind EventKind
	Severity  Level
	Source    string
	FromTS    *time.Time
	ToTS      *time.Time
	Limit     int
}

// Normalize clamps Limit to [1, MaxEventLimit], defaulting to
// DefaultEventLimit, and validates the timestamp bounds.
func (f EventFilter) Normalize() (EventFilter, error) {
	if f.FromTS != nil && f.ToTS != nil && f.FromTS.After(*f.ToTS) {
		return f, NewInvalidFilter("from_ts is after to_ts")
	}
	if f.Limit <= 0 {
		f.Limit = DefaultEventLimit
	}
	if f.Limit > MaxEventLimit {
		f.Limit = MaxEventLimit
	}
	return f, nil
}

// MinSeverity bounds a ListProblems query by the least severe level to
// include.
type MinSeverity Level

// Diagnostic is recorded alongside an FR-EVT-003 event in the same
// logical append; see Store.RecordViolation.
type Diagnostic struct {
	DiagnosticID string
	Fingerprint  string
	Code         string
	Source       string
	Surface      string
	MessageTemplate string
	Message      string
	Severity     Level
	TraceID      string
	JobID        string
	TsUTC        time.Time
}

// ProblemGroup aggregates every Diagnostic sharing a Fingerprint.
type ProblemGroup struct {
	Fingerprint string
	Code        string
	Source      string
	Surface     string
	Count       int
	FirstSeen   time.Time
	LastSeen    time.Time
	Sample      Diagnostic
}

// Store is the append-only ledger contract. Implementations: memstore
// (in-process) and mongostore (durable), each with its own tests.
type Store interface {
	// Append validates ev against its per-kind schema, assigns EventID and
	// a strictly increasing Seq, and persists it. Events never mutate.
	Append(ctx context.Context, ev Event) (Event, error)

	// Query returns events matching filter in Seq-ascending order.
	Query(ctx context.Context, filter EventFilter) ([]Event, error)

	// RecordViolation appends an FR-EVT-003 diagnostic event and persists
	// its Diagnostic row as one logical, non-partial operation (§4.4).
	RecordViolation(ctx context.Context, diag Diagnostic) (Event, error)

	// ListProblems groups recorded diagnostics by fingerprint, bounded by
	// minSeverity.
	ListProblems(ctx context.Context, minSeverity MinSeverity) ([]ProblemGroup, error)
}
