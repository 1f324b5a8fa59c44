// Package memstore is the in-memory flightrecorder.Store implementation
// used in tests and any caller that has not wired a durable backend.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Nuntissura/Handshake-sub002/flightrecorder"
)

// Store is a mutex-guarded, in-process flightrecorder.Store. A single
// exclusive writer path (Append/RecordViolation both take the write lock)
// mirrors §5's "single exclusive writer per underlying connection"; reads
// take a read lock and never block each other.
type Store struct {
	mu          sync.RWMutex
	events      []flightrecorder.Event
	diagnostics []flightrecorder.Diagnostic
	nextSeq     int64
	schemas     *flightrecorder.SchemaRegistry
	newUUID     func() uuid.UUID
}

// Option customizes a Store built by New.
type Option func(*Store)

// WithSchemaRegistry wires per-event-kind schema validation into Append.
func WithSchemaRegistry(r *flightrecorder.SchemaRegistry) Option {
	return func(s *Store) { s.schemas = r }
}

// WithUUIDSource overrides the default uuid.New for deterministic tests.
func WithUUIDSource(f func() uuid.UUID) Option {
	return func(s *Store) { s.newUUID = f }
}

// New builds an empty Store.
func New(opts ...Option) *Store {
	s := &Store{newUUID: uuid.New}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append implements flightrecorder.Store.
func (s *Store) Append(_ context.Context, ev flightrecorder.Event) (flightrecorder.Event, error) {
	if s.schemas != nil {
		if err := s.schemas.Validate(ev.EventKind, ev.Payload); err != nil {
			return flightrecorder.Event{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	ev.Seq = s.nextSeq
	if ev.EventID == uuid.Nil {
		ev.EventID = s.newUUID()
	}
	if ev.SchemaVersion == "" {
		ev.SchemaVersion = flightrecorder.EventSchemaVersion
	}
	s.events = append(s.events, ev)
	return ev, nil
}

// Query implements flightrecorder.Store.
func (s *Store) Query(_ context.Context, filter flightrecorder.EventFilter) ([]flightrecorder.Event, error) {
	filter, err := filter.Normalize()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]flightrecorder.Event, 0, len(s.events))
	for _, ev := range s.events {
		if !matches(ev, filter) {
			continue
		}
		out = append(out, ev)
		if len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func matches(ev flightrecorder.Event, f flightrecorder.EventFilter) bool {
	if f.TraceID != "" && ev.TraceID.String() != f.TraceID {
		return false
	}
	if f.JobID != "" && ev.JobID != f.JobID {
		return false
	}
	if f.SessionID != "" && ev.SessionID != f.SessionID {
		return false
	}
	if f.EventKind != "" && ev.EventKind != f.EventKind {
		return false
	}
	if f.Severity != "" && ev.Level != f.Severity {
		return false
	}
	if f.Source != "" && ev.Source != f.Source {
		return false
	}
	if f.FromTS != nil && ev.TsUTC.Before(*f.FromTS) {
		return false
	}
	if f.ToTS != nil && ev.TsUTC.After(*f.ToTS) {
		return false
	}
	return true
}

// RecordViolation implements flightrecorder.Store. The diagnostic row and
// its FR-EVT-003 event are appended under the same write lock acquisition,
// so no reader can observe one without the other (§4.4 "partial failure is
// impossible").
func (s *Store) RecordViolation(_ context.Context, diag flightrecorder.Diagnostic) (flightrecorder.Event, error) {
	traceID, _ := uuid.Parse(diag.TraceID)
	ev := flightrecorder.Event{
		TsUTC:     diag.TsUTC,
		TraceID:   traceID,
		JobID:     diag.JobID,
		Actor:     flightrecorder.ActorSystem,
		EventKind: flightrecorder.KindDiagnostic,
		Source:    diag.Source,
		Level:     diag.Severity,
		Message:   diag.Message,
	}
	if s.schemas != nil {
		if err := s.schemas.Validate(ev.EventKind, ev.Payload); err != nil {
			return flightrecorder.Event{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if diag.DiagnosticID == "" {
		diag.DiagnosticID = s.newUUID().String()
	}
	s.diagnostics = append(s.diagnostics, diag)
	s.nextSeq++
	ev.Seq = s.nextSeq
	ev.EventID = s.newUUID()
	ev.SchemaVersion = flightrecorder.EventSchemaVersion
	s.events = append(s.events, ev)
	return ev, nil
}

// ListProblems implements flightrecorder.Store.
func (s *Store) ListProblems(_ context.Context, minSeverity flightrecorder.MinSeverity) ([]flightrecorder.ProblemGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := map[string]*flightrecorder.ProblemGroup{}
	var order []string
	for _, d := range s.diagnostics {
		if !flightrecorder.MeetsMinSeverity(d.Severity, minSeverity) {
			continue
		}
		g, ok := groups[d.Fingerprint]
		if !ok {
			g = &flightrecorder.ProblemGroup{
				Fingerprint: d.Fingerprint,
				Code:        d.Code,
				Source:      d.Source,
				Surface:     d.Surface,
				FirstSeen:   d.TsUTC,
				LastSeen:    d.TsUTC,
				Sample:      d,
			}
			groups[d.Fingerprint] = g
			order = append(order, d.Fingerprint)
		}
		g.Count++
		if d.TsUTC.Before(g.FirstSeen) {
			g.FirstSeen = d.TsUTC
		}
		if d.TsUTC.After(g.LastSeen) {
			g.LastSeen = d.TsUTC
		}
	}

	sort.Strings(order)
	out := make([]flightrecorder.ProblemGroup, 0, len(order))
	for _, fp := range order {
		out = append(out, *groups[fp])
	}
	return out, nil
}
